package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkrawczyk/volleypanel/engine"
	"github.com/mkrawczyk/volleypanel/models"
)

// CreateMatchInput describes an operator-created match. Team ids may be nil
// for bracket-style placeholders.
type CreateMatchInput struct {
	Stage   models.MatchStage `json:"stage"`
	Group   string            `json:"group,omitempty"`
	Label   string            `json:"label,omitempty"`
	TeamAID *string           `json:"teamAId"`
	TeamBID *string           `json:"teamBId"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, slug string, cred Credential, in CreateMatchInput) (*Snapshot, error)
	DeleteMatch(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)

	Claim(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error)
	Release(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error)

	AddPoint(ctx context.Context, slug string, cred Credential, matchID, deviceID string, side models.Side, delta int) (*Snapshot, error)
	ResetCurrentSet(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error)

	MarkLive(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)
	Confirm(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)
	Reopen(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)
	SetResult(ctx context.Context, slug string, cred Credential, matchID string, sets []models.SetScore) (*Snapshot, error)
}

type matchService struct {
	state StateService
}

func NewMatchService(state StateService) MatchService {
	return &matchService{state: state}
}

func (s *matchService) CreateMatch(ctx context.Context, slug string, cred Credential, in CreateMatchInput) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		for _, id := range []*string{in.TeamAID, in.TeamBID} {
			if id != nil {
				if _, ok := st.TeamByID(*id); !ok {
					return ErrTeamNotFound
				}
			}
		}
		m := engine.Normalize(models.Match{
			ID:        uuid.NewString(),
			Stage:     in.Stage,
			Group:     in.Group,
			Label:     in.Label,
			TeamAID:   in.TeamAID,
			TeamBID:   in.TeamBID,
			Status:    models.StatusPending,
			UpdatedAt: time.Now().UTC(),
		})
		st.Matches = append(st.Matches, m)
		return nil
	})
}

func (s *matchService) DeleteMatch(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		st.Matches = append(st.Matches[:i], st.Matches[i+1:]...)

		if st.Meta.ProgramMatchID != nil && *st.Meta.ProgramMatchID == matchID {
			st.Meta.ProgramMatchID = nil
		}
		if st.Meta.LiveMatchID != nil && *st.Meta.LiveMatchID == matchID {
			st.Meta.LiveMatchID = nil
		}
		if len(st.Meta.Queue) > 0 {
			queue := st.Meta.Queue[:0]
			for _, q := range st.Meta.Queue {
				if q.MatchID != matchID {
					queue = append(queue, q)
				}
			}
			st.Meta.Queue = queue
		}
		return nil
	})
}

// Claim takes the advisory device lock on a match. A device claiming a new
// match implicitly releases any other match it held, and claiming a pending
// match marks it live. Claiming fails only when a different device already
// holds the lock; the claim is a UI hint, not mutual exclusion.
func (s *matchService) Claim(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		m := engine.Normalize(st.Matches[i])
		if m.ClaimedBy != nil && *m.ClaimedBy != deviceID {
			return ErrMatchClaimed
		}

		for j := range st.Matches {
			other := &st.Matches[j]
			if other.ID != matchID && other.ClaimedBy != nil && *other.ClaimedBy == deviceID {
				other.ClaimedBy = nil
				other.ClaimedAt = nil
			}
		}

		now := time.Now().UTC()
		m.ClaimedBy = &deviceID
		m.ClaimedAt = &now
		m = engine.MarkLive(m)
		st.Matches[i] = m
		st.Meta.LiveMatchID = &m.ID
		return nil
	})
}

func (s *matchService) Release(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		m := &st.Matches[i]
		if m.ClaimedBy != nil && *m.ClaimedBy == deviceID {
			m.ClaimedBy = nil
			m.ClaimedAt = nil
		}
		return nil
	})
}

// mutateMatch applies an engine transition to one match, honoring the
// advisory claim when the caller identifies as a device.
func (s *matchService) mutateMatch(ctx context.Context, slug string, cred Credential, matchID, deviceID string, fn func(models.Match) models.Match) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		m := engine.Normalize(st.Matches[i])
		if deviceID != "" && m.ClaimedBy != nil && *m.ClaimedBy != deviceID {
			return ErrMatchClaimed
		}
		st.Matches[i] = fn(m)
		return nil
	})
}

func (s *matchService) AddPoint(ctx context.Context, slug string, cred Credential, matchID, deviceID string, side models.Side, delta int) (*Snapshot, error) {
	return s.mutateMatch(ctx, slug, cred, matchID, deviceID, func(m models.Match) models.Match {
		return engine.AddPoint(m, side, delta)
	})
}

func (s *matchService) ResetCurrentSet(ctx context.Context, slug string, cred Credential, matchID, deviceID string) (*Snapshot, error) {
	return s.mutateMatch(ctx, slug, cred, matchID, deviceID, func(m models.Match) models.Match {
		return engine.ResetCurrentSet(m)
	})
}

func (s *matchService) MarkLive(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.mutateMatch(ctx, slug, cred, matchID, "", engine.MarkLive)
}

// Confirm ratifies a finished match and immediately propagates bracket
// progression inside the same mutation, so subscribers always observe a
// consistent document.
func (s *matchService) Confirm(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		st.Matches[i] = engine.Confirm(engine.Normalize(st.Matches[i]))
		engine.ApplyPlayoffsProgression(st)
		return nil
	})
}

// Reopen is the operator escape hatch for correcting a finished or already
// confirmed result: the match drops back to live, winner and claim are
// cleared, and it stops counting toward standings until re-confirmed.
func (s *matchService) Reopen(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		m := engine.Normalize(st.Matches[i])
		if m.Status != models.StatusFinished && m.Status != models.StatusConfirmed {
			return nil
		}
		m.Status = models.StatusLive
		m.Winner = nil
		m.ClaimedBy = nil
		m.ClaimedAt = nil
		m.UpdatedAt = time.Now().UTC()
		st.Matches[i] = m
		return nil
	})
}

// SetResult records an operator-entered final score. A decided result is
// confirmed in one step (manual entry doubles as ratification), so bracket
// progression runs here as well.
func (s *matchService) SetResult(ctx context.Context, slug string, cred Credential, matchID string, sets []models.SetScore) (*Snapshot, error) {
	if len(sets) == 0 || len(sets) > 3 {
		return nil, ErrInvalidSets
	}
	for _, set := range sets {
		if set.A < 0 || set.B < 0 {
			return nil, ErrInvalidSets
		}
	}
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.MatchIndex(matchID)
		if i < 0 {
			return ErrMatchNotFound
		}
		st.Matches[i] = engine.SetResult(engine.Normalize(st.Matches[i]), sets)
		engine.ApplyPlayoffsProgression(st)
		return nil
	})
}
