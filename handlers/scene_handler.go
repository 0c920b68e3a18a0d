package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/middleware"
	"github.com/mkrawczyk/volleypanel/models"
	"github.com/mkrawczyk/volleypanel/services"
)

type SceneHandler struct {
	scenes services.SceneService
	logger *slog.Logger
}

func NewSceneHandler(scenes services.SceneService, logger *slog.Logger) *SceneHandler {
	return &SceneHandler{scenes: scenes, logger: logger}
}

func (h *SceneHandler) SetScene(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		Scene string `json:"scene"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.scenes.SetScene(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.Scene)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) SetProgramMatch(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		MatchID *string `json:"matchId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.scenes.SetProgramMatch(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.MatchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) SetLocked(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		Locked bool `json:"locked"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.scenes.SetLocked(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.Locked)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) SetRotation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input models.SceneRotation
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.scenes.SetRotation(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) QueueAdd(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		MatchID string `json:"matchId"`
		Note    string `json:"note"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.scenes.QueueAdd(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.MatchID, input.Note)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) QueuePromote(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.scenes.QueuePromote(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SceneHandler) QueueRemove(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.scenes.QueueRemove(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
