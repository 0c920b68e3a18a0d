package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/middleware"
	"github.com/mkrawczyk/volleypanel/services"
)

// maxLogoBytes caps sponsor logo uploads at 5MB.
const maxLogoBytes = 5 << 20

type SponsorHandler struct {
	sponsors services.SponsorService
	logger   *slog.Logger
}

func NewSponsorHandler(sponsors services.SponsorService, logger *slog.Logger) *SponsorHandler {
	return &SponsorHandler{sponsors: sponsors, logger: logger}
}

func (h *SponsorHandler) Add(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		Name   string `json:"name"`
		Weight int    `json:"weight"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.sponsors.AddSponsor(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.Name, input.Weight)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *SponsorHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sponsorID := chi.URLParam(r, "sponsorId")
	var input struct {
		Name   *string `json:"name"`
		Weight *int    `json:"weight"`
		Active *bool   `json:"active"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.sponsors.UpdateSponsor(r.Context(), slug, middleware.CredentialFromContext(r.Context()), sponsorID, input.Name, input.Weight, input.Active)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SponsorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sponsorID := chi.URLParam(r, "sponsorId")

	snap, err := h.sponsors.RemoveSponsor(r.Context(), slug, middleware.CredentialFromContext(r.Context()), sponsorID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UploadLogo accepts a multipart form with the image under the "logo" field.
func (h *SponsorHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sponsorID := chi.URLParam(r, "sponsorId")

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		badRequest(w, err)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequest(w, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	snap, err := h.sponsors.UploadLogo(r.Context(), slug, middleware.CredentialFromContext(r.Context()), sponsorID, contentType, file)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
