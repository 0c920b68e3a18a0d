package services

import (
	"context"

	"github.com/mkrawczyk/volleypanel/engine"
	"github.com/mkrawczyk/volleypanel/models"
)

type PlayoffService interface {
	// Generate builds the elimination bracket from current standings.
	// Idempotent unless force is set; force tears down the previously
	// generated bracket matches first and leaves group matches alone.
	Generate(ctx context.Context, slug string, cred Credential, force bool) (*Snapshot, error)
	// Reprogress re-runs slot propagation. Normally unnecessary (Confirm
	// already does it) but safe, and useful after document repairs.
	Reprogress(ctx context.Context, slug string, cred Credential) (*Snapshot, error)
}

type playoffService struct {
	state StateService
}

func NewPlayoffService(state StateService) PlayoffService {
	return &playoffService{state: state}
}

func (s *playoffService) Generate(ctx context.Context, slug string, cred Credential, force bool) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		return engine.GeneratePlayoffs(st, force)
	})
}

func (s *playoffService) Reprogress(ctx context.Context, slug string, cred Credential) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		engine.ApplyPlayoffsProgression(st)
		return nil
	})
}
