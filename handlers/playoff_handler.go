package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/middleware"
	"github.com/mkrawczyk/volleypanel/services"
)

type PlayoffHandler struct {
	playoffs services.PlayoffService
	views    services.ViewService
	logger   *slog.Logger
}

func NewPlayoffHandler(playoffs services.PlayoffService, views services.ViewService, logger *slog.Logger) *PlayoffHandler {
	return &PlayoffHandler{playoffs: playoffs, views: views, logger: logger}
}

func (h *PlayoffHandler) Generate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	force := r.URL.Query().Get("force") == "true"

	snap, err := h.playoffs.Generate(r.Context(), slug, middleware.CredentialFromContext(r.Context()), force)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *PlayoffHandler) Reprogress(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	snap, err := h.playoffs.Reprogress(r.Context(), slug, middleware.CredentialFromContext(r.Context()))
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *PlayoffHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	view, version, err := h.views.Bracket(r.Context(), slug)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"version": version, "bracket": view})
}

func (h *PlayoffHandler) Standings(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	groups, version, err := h.views.Standings(r.Context(), slug)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"version": version, "groups": groups})
}
