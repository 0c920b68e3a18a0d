package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/middleware"
	"github.com/mkrawczyk/volleypanel/services"
)

type TeamHandler struct {
	teams  services.TeamService
	logger *slog.Logger
}

func NewTeamHandler(teams services.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var input struct {
		Name  string `json:"name"`
		Group string `json:"group"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.teams.AddTeam(r.Context(), slug, middleware.CredentialFromContext(r.Context()), input.Name, input.Group)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	teamID := chi.URLParam(r, "teamId")
	var input struct {
		Name  *string `json:"name"`
		Group *string `json:"group"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	snap, err := h.teams.UpdateTeam(r.Context(), slug, middleware.CredentialFromContext(r.Context()), teamID, input.Name, input.Group)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	teamID := chi.URLParam(r, "teamId")

	snap, err := h.teams.DeleteTeam(r.Context(), slug, middleware.CredentialFromContext(r.Context()), teamID)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
