// ABOUTME: Request log and statistics endpoints.
// ABOUTME: Filters mirror the request log query of the store.

package api

import (
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/logging"
	"github.com/2389/qreader/internal/store"
)

// groupWindow is the period covered by per-group request counts and error rates.
const groupWindow = 24 * time.Hour

func (s *Server) groupStats() ([]store.GroupStats, error) {
	return s.store.GetGroupStats(logging.Groups, time.Now().Add(-groupWindow))
}

func logQuery(r *http.Request) *store.RequestLogQuery {
	q := r.URL.Query()
	statusCode, _ := strconv.Atoi(q.Get("status"))
	limit := queryInt(q.Get("limit"), 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return &store.RequestLogQuery{
		Limit:      limit,
		Offset:     max(queryInt(q.Get("offset"), 0), 0),
		RouteGroup: q.Get("group"),
		Method:     q.Get("method"),
		PathPrefix: q.Get("path"),
		StatusCode: statusCode,
		DeviceID:   q.Get("device"),
	}
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.GetRequestLogs(logQuery(r))
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to list request logs", err.Error())
		return
	}
	if logs == nil {
		logs = []*store.RequestLog{}
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.GetRequestLogStats()
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to load request stats", err.Error())
		return
	}
	top, err := s.store.GetTopEndpoints(10)
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to load top endpoints", err.Error())
		return
	}
	groups, err := s.groupStats()
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to load group stats", err.Error())
		return
	}
	scans, err := s.store.GetScanStats(r.Context())
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to load scan stats", err.Error())
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"requests":      requests,
		"top_endpoints": top,
		"groups":        groups,
		"scans":         scans,
	})
}
