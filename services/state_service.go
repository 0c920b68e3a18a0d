package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkrawczyk/volleypanel/models"
	"github.com/mkrawczyk/volleypanel/repositories"
)

// DefaultMaxRetries bounds how often a mutation is replayed after losing the
// optimistic-lock race before the conflict is surfaced to the caller.
const DefaultMaxRetries = 3

// Mutator is a pure state transition applied to a private copy of the
// document. It must be safe to re-apply to a fresher base: when the
// conditional write loses the race the coordinator refetches and runs the
// mutator again against the new snapshot.
type Mutator func(st *models.TournamentState) error

// Snapshot is one committed version of the document as seen by callers.
type Snapshot struct {
	Version   int64                   `json:"version"`
	State     *models.TournamentState `json:"state"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// StateService is the single blessed way to change tournament state: every
// operator action is one Mutator run through Mutate.
type StateService interface {
	Fetch(ctx context.Context, slug string) (*Snapshot, error)
	Mutate(ctx context.Context, slug string, cred Credential, fn Mutator) (*Snapshot, error)
}

type stateService struct {
	repo       repositories.TournamentRepository
	auth       AuthService
	maxRetries int
	logger     *slog.Logger
}

func NewStateService(repo repositories.TournamentRepository, auth AuthService, maxRetries int, logger *slog.Logger) StateService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &stateService{
		repo:       repo,
		auth:       auth,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (s *stateService) Fetch(ctx context.Context, slug string) (*Snapshot, error) {
	snap, err := s.repo.FetchState(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Version: snap.Version, State: snap.State, UpdatedAt: snap.UpdatedAt}, nil
}

// Mutate runs the read-modify-write cycle: fetch the current version, apply
// fn to a deep copy, attempt a write conditioned on that version, and on
// conflict refetch and re-apply up to the retry budget. Authorization
// failures and mutator errors (missing entities and the like) abort the
// attempt immediately; only version conflicts are retried.
func (s *stateService) Mutate(ctx context.Context, slug string, cred Credential, fn Mutator) (*Snapshot, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if err := s.auth.Authorize(ctx, slug, cred); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		snap, err := s.repo.FetchState(ctx, slug)
		if err != nil {
			return nil, err
		}

		next, err := snap.State.Clone()
		if err != nil {
			return nil, err
		}
		if err := fn(next); err != nil {
			return nil, err
		}

		committed, err := s.repo.UpdateState(ctx, slug, snap.Version, next)
		if err == nil {
			return &Snapshot{Version: committed.Version, State: committed.State, UpdatedAt: committed.UpdatedAt}, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, err
		}
		if attempt >= s.maxRetries {
			return nil, fmt.Errorf("mutation lost the write race %d times: %w", attempt+1, err)
		}
		s.logger.Debug("state version conflict, retrying",
			slog.String("slug", slug),
			slog.Int64("expected_version", snap.Version),
			slog.Int("attempt", attempt+1),
		)
	}
}
