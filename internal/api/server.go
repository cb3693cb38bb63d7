// ABOUTME: HTTP server: JSON API, HTML pages and the websocket scan stream.
// ABOUTME: Routes are mounted on chi with access logging, device auth and request recording.

package api

import (
	"net/http"

	"github.com/2389/qreader/internal/app"
	"github.com/2389/qreader/internal/auth"
	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/install"
	"github.com/2389/qreader/internal/logging"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxPayload bounds request payloads when no limit is configured.
const DefaultMaxPayload = 64 * 1024

// maxPackageUpload bounds multipart package uploads.
const maxPackageUpload = 32 << 20

type Server struct {
	store      *store.Store
	scanner    *app.Scanner
	catalog    *install.Catalog
	installer  *install.Manager
	views      *view.Resolver
	token      string
	maxPayload int64
}

// NewServer builds the HTTP layer over an assembled dependency graph.
func NewServer(w *app.Wire) *Server {
	s := &Server{
		store:      w.Store,
		scanner:    w.Scanner,
		catalog:    w.Catalog,
		installer:  w.Installer,
		views:      w.Views,
		maxPayload: DefaultMaxPayload,
	}
	if w.Config != nil {
		s.token = w.Config.Token
		if w.Config.MaxPayloadBytes > 0 {
			s.maxPayload = w.Config.MaxPayloadBytes
		}
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.token))
		r.Use(logging.Middleware(s.store))

		r.Route("/api", func(r chi.Router) {
			r.Post("/decode", s.decode)

			r.Get("/scans", s.listScans)
			r.Get("/scans/{id}", s.getScan)
			r.Delete("/scans/{id}", s.deleteScan)
			r.Get("/scans/{id}/view", s.viewScan)

			r.Get("/decoders", s.listDecoders)
			r.Get("/views", s.listViews)

			r.Get("/packages", s.listPackages)
			r.Post("/packages", s.installPackage)
			r.Get("/packages/{name}", s.getPackage)
			r.Delete("/packages/{name}", s.removePackage)

			r.Get("/logs", s.listLogs)
			r.Get("/stats", s.stats)
		})

		r.Get("/ws/scan", s.scanStream)

		r.Get("/", s.dashboard)
		r.Get("/scans/{id}", s.scanPage)
		r.Get("/logs", s.logsPage)
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	type pluginHealth struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}

	var plugins []pluginHealth
	for _, p := range s.catalog.Plugins() {
		plugins = append(plugins, pluginHealth{Name: p.Name(), Status: p.Health().Status})
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "plugins": plugins})
}
