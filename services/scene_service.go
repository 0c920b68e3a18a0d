package services

import (
	"context"

	"github.com/mkrawczyk/volleypanel/models"
)

// SceneService manages the display metadata: which scene the overlay shows,
// the featured ("program") match, the operator queue and the lock flag that
// freezes scene changes during a rotation.
type SceneService interface {
	SetScene(ctx context.Context, slug string, cred Credential, scene string) (*Snapshot, error)
	SetProgramMatch(ctx context.Context, slug string, cred Credential, matchID *string) (*Snapshot, error)
	SetLocked(ctx context.Context, slug string, cred Credential, locked bool) (*Snapshot, error)
	SetRotation(ctx context.Context, slug string, cred Credential, rotation models.SceneRotation) (*Snapshot, error)
	QueueAdd(ctx context.Context, slug string, cred Credential, matchID, note string) (*Snapshot, error)
	QueueRemove(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)
	// QueuePromote makes a queued match the program match and drops it from
	// the queue.
	QueuePromote(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error)
}

type sceneService struct {
	state StateService
}

func NewSceneService(state StateService) SceneService {
	return &sceneService{state: state}
}

func (s *sceneService) SetScene(ctx context.Context, slug string, cred Credential, scene string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		st.Meta.Scene = scene
		return nil
	})
}

func (s *sceneService) SetProgramMatch(ctx context.Context, slug string, cred Credential, matchID *string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		if matchID != nil && st.MatchIndex(*matchID) < 0 {
			return ErrMatchNotFound
		}
		st.Meta.ProgramMatchID = matchID
		return nil
	})
}

func (s *sceneService) SetLocked(ctx context.Context, slug string, cred Credential, locked bool) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		st.Meta.Locked = locked
		return nil
	})
}

func (s *sceneService) SetRotation(ctx context.Context, slug string, cred Credential, rotation models.SceneRotation) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		st.Meta.SceneRotation = rotation
		return nil
	})
}

func (s *sceneService) QueueAdd(ctx context.Context, slug string, cred Credential, matchID, note string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		if st.MatchIndex(matchID) < 0 {
			return ErrMatchNotFound
		}
		for _, q := range st.Meta.Queue {
			if q.MatchID == matchID {
				return nil // already queued
			}
		}
		st.Meta.Queue = append(st.Meta.Queue, models.QueueEntry{MatchID: matchID, Note: note})
		return nil
	})
}

func (s *sceneService) QueueRemove(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		dropFromQueue(st, matchID)
		return nil
	})
}

func (s *sceneService) QueuePromote(ctx context.Context, slug string, cred Credential, matchID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		if st.MatchIndex(matchID) < 0 {
			return ErrMatchNotFound
		}
		id := matchID
		st.Meta.ProgramMatchID = &id
		dropFromQueue(st, matchID)
		return nil
	})
}

func dropFromQueue(st *models.TournamentState, matchID string) {
	queue := st.Meta.Queue[:0]
	for _, q := range st.Meta.Queue {
		if q.MatchID != matchID {
			queue = append(queue, q)
		}
	}
	st.Meta.Queue = queue
}
