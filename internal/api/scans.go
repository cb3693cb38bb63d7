// ABOUTME: Scan history endpoints: list, fetch, delete and render stored scans.
// ABOUTME: Views are rebuilt from stored fields; undecoded scans render as a raw dump.

package api

import (
	"bytes"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
	"github.com/go-chi/chi/v5"
)

const (
	defaultScanLimit = 50
	maxScanLimit     = 500
)

// scanJSON adds a printable and a hex copy of the payload to a stored scan.
type scanJSON struct {
	*store.Scan
	Payload    string `json:"payload"`
	PayloadHex string `json:"payload_hex"`
}

func newScanJSON(s *store.Scan) scanJSON {
	return scanJSON{Scan: s, Payload: view.PrintableText(s.Payload), PayloadHex: hex.EncodeToString(s.Payload)}
}

func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), defaultScanLimit)
	if limit <= 0 || limit > maxScanLimit {
		limit = defaultScanLimit
	}

	scans, err := s.store.ListScans(r.Context(), &store.ScanQuery{
		Limit:    limit,
		Offset:   max(queryInt(q.Get("offset"), 0), 0),
		DeviceID: q.Get("device"),
		Kind:     q.Get("kind"),
		Search:   q.Get("q"),
		Failed:   q.Get("failed") == "true",
	})
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to list scans", err.Error())
		return
	}

	out := make([]scanJSON, 0, len(scans))
	for _, scan := range scans {
		out = append(out, newScanJSON(scan))
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"scans": out, "limit": limit})
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.loadScan(w, r)
	if !ok {
		return
	}

	resp := map[string]any{"scan": newScanJSON(scan)}
	if code := codeFor(scan); code != nil {
		resp["actions"] = view.Actions(code)
		resp["capabilities"] = s.views.Capabilities(code)
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteScan(w http.ResponseWriter, r *http.Request) {
	found, err := s.store.DeleteScan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to delete scan", err.Error())
		return
	}
	if !found {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "scan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// viewScan renders a scan in the requested capability (default html). A scan
// nothing can render falls back to the raw dump.
func (s *Server) viewScan(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.loadScan(w, r)
	if !ok {
		return
	}

	capability := view.Capability(r.URL.Query().Get("capability"))
	if capability == "" {
		capability = view.CapabilityHTML
	}

	code := codeFor(scan)
	if code == nil || capability == "raw" {
		writeRaw(w, scan.Payload)
		return
	}

	var buf bytes.Buffer
	if err := s.views.Render(&buf, code, capability); err != nil {
		if errors.Is(err, view.ErrNoView) {
			writeRaw(w, scan.Payload)
			return
		}
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrInternal, "failed to render view", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(capability, buf.Bytes()))
	w.Header().Set("X-View-Capability", string(capability))
	w.Write(buf.Bytes())
}

func (s *Server) loadScan(w http.ResponseWriter, r *http.Request) (*store.Scan, bool) {
	scan, err := s.store.GetScan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to load scan", err.Error())
		return nil, false
	}
	if scan == nil {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "scan not found")
		return nil, false
	}
	return scan, true
}

// codeFor rebuilds the typed code of a decoded scan.
func codeFor(scan *store.Scan) qrcode.QrCode {
	if !scan.Decoded() {
		return nil
	}
	code, err := qrcode.FromFields(qrcode.Kind(scan.Kind), scan.Fields)
	if err != nil {
		return nil
	}
	return code
}

func writeRaw(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-View-Capability", "raw")
	view.RenderRaw(w, payload)
}

func contentType(capability view.Capability, body []byte) string {
	switch capability {
	case view.CapabilityHTML:
		return "text/html; charset=utf-8"
	case view.CapabilityText:
		return "text/plain; charset=utf-8"
	case view.CapabilityVCF:
		return "text/vcard; charset=utf-8"
	}
	return http.DetectContentType(body)
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
