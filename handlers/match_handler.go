package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/middleware"
	"github.com/mkrawczyk/volleypanel/models"
	"github.com/mkrawczyk/volleypanel/services"
)

type MatchHandler struct {
	matches services.MatchService
	logger  *slog.Logger
}

func NewMatchHandler(matches services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.matches.CreateMatch(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.matches.DeleteMatch(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) Claim(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")
	var input struct {
		DeviceID string `json:"deviceId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.matches.Claim(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID, input.DeviceID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) Release(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")
	var input struct {
		DeviceID string `json:"deviceId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.matches.Release(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID, input.DeviceID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// AddPoint adjusts one side's score in the current set. Delta defaults to +1;
// courtside remotes send -1 to undo a misattributed point.
func (h *MatchHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")
	var input struct {
		Side     models.Side `json:"side"`
		Delta    int         `json:"delta"`
		DeviceID string      `json:"deviceId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}
	if input.Delta == 0 {
		input.Delta = 1
	}

	snap, err := h.matches.AddPoint(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID, input.DeviceID, input.Side, input.Delta)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) ResetSet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")
	var input struct {
		DeviceID string `json:"deviceId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.matches.ResetCurrentSet(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID, input.DeviceID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) MarkLive(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.matches.MarkLive(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.matches.Confirm(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")

	snap, err := h.matches.Reopen(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *MatchHandler) SetResult(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	matchID := chi.URLParam(r, "matchId")
	var input struct {
		Sets []models.SetScore `json:"sets"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.matches.SetResult(r.Context(), slug, middleware.CredentialFromContext(r.Context()), matchID, input.Sets)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
