package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/services"
)

type AuthHandler struct {
	auth   services.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// IssueToken exchanges the tournament PIN for a short-lived session token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		Pin string `json:"pin"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	token, expiresAt, err := h.auth.IssueToken(r.Context(), slug, input.Pin)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"token": token, "expiresAt": expiresAt})
}

func (h *AuthHandler) ChangePin(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		OldPin string `json:"oldPin"`
		NewPin string `json:"newPin"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	if err := h.auth.ChangePin(r.Context(), slug, input.OldPin, input.NewPin); err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ok": true})
}
