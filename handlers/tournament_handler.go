package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrawczyk/volleypanel/services"
)

type TournamentHandler struct {
	tournaments services.TournamentService
	state       services.StateService
	logger      *slog.Logger
}

func NewTournamentHandler(tournaments services.TournamentService, state services.StateService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments, state: state, logger: logger}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
		Pin  string `json:"pin"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	id, err := h.tournaments.Create(r.Context(), input.Slug, input.Name, input.Pin)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"id": id, "slug": input.Slug})
}

// GetState returns the full document with its version; clients use the
// version for optimistic writes and as a low-water mark for the feed.
func (h *TournamentHandler) GetState(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	snap, err := h.state.Fetch(r.Context(), slug)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
