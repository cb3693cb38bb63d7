// ABOUTME: Package management endpoints: list, get, upload-install and remove.
// ABOUTME: Install failures map to typed JSON errors.

package api

import (
	"errors"
	"net/http"
	"time"

	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/install"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
	"github.com/go-chi/chi/v5"
)

type packageJSON struct {
	Name        string            `json:"name"`
	Brief       string            `json:"brief"`
	Version     string            `json:"version"`
	Digest      string            `json:"digest"`
	Size        int64             `json:"size"`
	InstalledAt time.Time         `json:"installed_at"`
	Decoders    []decoderJSON     `json:"decoders"`
	Views       []view.Listing    `json:"views"`
	Health      core.HealthStatus `json:"health"`
}

func newPackageJSON(p *install.Package) packageJSON {
	out := packageJSON{
		Name:        p.Name(),
		Brief:       p.Brief(),
		Version:     p.Version,
		Digest:      p.Digest,
		Size:        p.Size,
		InstalledAt: p.InstalledAt.UTC(),
		Decoders:    []decoderJSON{},
		Views:       []view.Listing{},
		Health:      p.Health(),
	}
	for _, d := range p.Decoders() {
		out.Decoders = append(out.Decoders, decoderJSON{
			Name:     d.Name(),
			Plugin:   p.Name(),
			Priority: p.Priority(),
			Schemes:  d.Schemes(),
			Health:   out.Health,
		})
	}
	for _, b := range p.Views() {
		out.Views = append(out.Views, view.Listing{Kind: b.Kind, Capability: b.Capability, Origin: view.OriginPlugin})
	}
	return out
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := s.installer.List()
	if err != nil {
		writeInstallError(w, err)
		return
	}

	out := make([]packageJSON, 0, len(packages))
	for _, p := range packages {
		out = append(out, newPackageJSON(p))
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"packages": out})
}

func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	p, err := s.installer.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeInstallError(w, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newPackageJSON(p))
}

func (s *Server) installPackage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPackageUpload)
	file, header, err := r.FormFile("package")
	if err != nil {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrMissingField, "multipart field 'package' is required", "package")
		return
	}
	defer file.Close()

	p, err := s.installer.InstallReader(r.Context(), header.Filename, file)
	if err != nil {
		writeInstallError(w, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, newPackageJSON(p))
}

func (s *Server) removePackage(w http.ResponseWriter, r *http.Request) {
	if err := s.installer.Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeInstallError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeInstallError(w http.ResponseWriter, err error) {
	var ioErr *install.IOError
	switch {
	case errors.Is(err, install.ErrNotFound):
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrPackageNotFound, err.Error())
	case errors.Is(err, install.ErrCorrupted):
		apierrors.WriteError(w, http.StatusUnprocessableEntity, apierrors.ErrPackageCorrupted, err.Error())
	case errors.Is(err, install.ErrOutdated):
		apierrors.WriteError(w, http.StatusConflict, apierrors.ErrPackageOutdated, err.Error())
	case errors.As(err, &ioErr):
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrIOError, "package storage failed", err.Error())
	default:
		apierrors.WriteErrorWithDetails(w, http.StatusInternalServerError, apierrors.ErrInternal, "package operation failed", err.Error())
	}
}
