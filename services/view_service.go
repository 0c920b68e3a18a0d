package services

import (
	"context"

	"github.com/mkrawczyk/volleypanel/engine"
	"github.com/mkrawczyk/volleypanel/models"
)

// BracketRound is one column of the rendered bracket view.
type BracketRound struct {
	Title   string         `json:"title"`
	Matches []models.Match `json:"matches"`
}

// BracketView is the playoff stage resolved into full match objects, ready
// for break screens and the bracket page.
type BracketView struct {
	Generated   bool           `json:"generated"`
	GeneratedAt *string        `json:"generatedAt,omitempty"`
	Seeds       []models.Seed  `json:"seeds,omitempty"`
	Rounds      []BracketRound `json:"rounds"`
}

// ViewService assembles read-only projections for display surfaces. All
// views are derived from a single fetched snapshot; nothing here mutates.
type ViewService interface {
	Standings(ctx context.Context, slug string) (map[string][]engine.StandingsRow, int64, error)
	Bracket(ctx context.Context, slug string) (*BracketView, int64, error)
}

type viewService struct {
	state StateService
}

func NewViewService(state StateService) ViewService {
	return &viewService{state: state}
}

func (s *viewService) Standings(ctx context.Context, slug string) (map[string][]engine.StandingsRow, int64, error) {
	snap, err := s.state.Fetch(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	return engine.ComputeStandings(snap.State), snap.Version, nil
}

func (s *viewService) Bracket(ctx context.Context, slug string) (*BracketView, int64, error) {
	snap, err := s.state.Fetch(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	st := snap.State

	view := &BracketView{Generated: st.Playoffs.Generated, Seeds: st.Playoffs.Seeds}
	if !st.Playoffs.Generated || st.Playoffs.Bracket == nil {
		return view, snap.Version, nil
	}
	if st.Playoffs.GeneratedAt != nil {
		formatted := st.Playoffs.GeneratedAt.Format("2006-01-02 15:04")
		view.GeneratedAt = &formatted
	}

	br := st.Playoffs.Bracket
	resolve := func(ids ...string) []models.Match {
		out := make([]models.Match, 0, len(ids))
		for _, id := range ids {
			if i := st.MatchIndex(id); i >= 0 {
				out = append(out, engine.Normalize(st.Matches[i]))
			}
		}
		return out
	}

	view.Rounds = []BracketRound{
		{Title: "Quarterfinals", Matches: resolve(br.QF...)},
		{Title: "Semifinals", Matches: resolve(br.SF...)},
		{Title: "Final", Matches: resolve(br.Final)},
		{Title: "Third place", Matches: resolve(br.Third)},
		{Title: "Places 9-12", Matches: resolve(br.Place9...)},
	}
	return view, snap.Version, nil
}
