// ABOUTME: Lists the live decoder set and the available views.
// ABOUTME: Decoders appear in dispatch order: built-ins by priority, then installed packages.

package api

import (
	"net/http"

	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/plugins/core"
)

type decoderJSON struct {
	Name     string            `json:"name"`
	Plugin   string            `json:"plugin"`
	Priority int               `json:"priority"`
	Schemes  []string          `json:"schemes"`
	Health   core.HealthStatus `json:"health"`
}

func (s *Server) decoderListing() []decoderJSON {
	var out []decoderJSON
	for _, p := range s.catalog.Plugins() {
		health := p.Health()
		for _, d := range p.Decoders() {
			out = append(out, decoderJSON{
				Name:     d.Name(),
				Plugin:   p.Name(),
				Priority: p.Priority(),
				Schemes:  d.Schemes(),
				Health:   health,
			})
		}
	}
	return out
}

func (s *Server) listDecoders(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"decoders": s.decoderListing(),
		// compiled class names a package's classes.xml may reference
		"classes": core.Classes(),
	})
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"views": s.views.Views()})
}
