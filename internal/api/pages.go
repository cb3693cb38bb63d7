// ABOUTME: HTML pages: dashboard, single scan and request log.
// ABOUTME: Pages share the embedded layout and read from the same store as the JSON API.

package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
	"github.com/go-chi/chi/v5"
)

const recentScans = 25

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetScanStats(r.Context())
	if err != nil {
		http.Error(w, "Failed to load scan stats", http.StatusInternalServerError)
		return
	}
	scans, err := s.store.ListScans(r.Context(), &store.ScanQuery{Limit: recentScans})
	if err != nil {
		http.Error(w, "Failed to load scans", http.StatusInternalServerError)
		return
	}

	var packages []packageJSON
	if installed, err := s.installer.List(); err == nil {
		for _, p := range installed {
			packages = append(packages, newPackageJSON(p))
		}
	} else {
		logger.With("api").Warn("listing packages for dashboard", "error", err)
	}

	data := map[string]any{
		"Stats":    stats,
		"Scans":    scans,
		"Decoders": s.decoderListing(),
		"Packages": packages,
	}
	s.render(w, "dashboard", data)
}

func (s *Server) scanPage(w http.ResponseWriter, r *http.Request) {
	scan, err := s.store.GetScan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Failed to load scan", http.StatusInternalServerError)
		return
	}
	if scan == nil {
		http.Error(w, "Scan not found", http.StatusNotFound)
		return
	}

	data := map[string]any{"Scan": scan}

	var raw bytes.Buffer
	view.RenderRaw(&raw, scan.Payload)
	data["Raw"] = raw.String()

	if code := codeFor(scan); code != nil {
		var card bytes.Buffer
		if err := s.views.Render(&card, code, view.CapabilityHTML); err == nil {
			// views escape their own output
			data["View"] = template.HTML(card.String())
		} else {
			logger.With("api").Debug("no html view for scan", "id", scan.ID, "error", err)
		}
		data["Capabilities"] = s.views.Capabilities(code)
	}

	s.render(w, "scan", data)
}

func (s *Server) logsPage(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.GetRequestLogs(logQuery(r))
	if err != nil {
		http.Error(w, "Failed to load logs", http.StatusInternalServerError)
		return
	}
	stats, err := s.store.GetRequestLogStats()
	if err != nil {
		http.Error(w, "Failed to load log stats", http.StatusInternalServerError)
		return
	}
	groups, err := s.groupStats()
	if err != nil {
		http.Error(w, "Failed to load group stats", http.StatusInternalServerError)
		return
	}

	s.render(w, "logs", map[string]any{
		"Logs":   logs,
		"Stats":  stats,
		"Groups": groups,
		"Group":  r.URL.Query().Get("group"),
	})
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	var buf bytes.Buffer
	if err := renderPage(&buf, page, data); err != nil {
		logger.With("api").Error("rendering page", "page", page, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
