package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mkrawczyk/volleypanel/models"
)

type TeamService interface {
	AddTeam(ctx context.Context, slug string, cred Credential, name, group string) (*Snapshot, error)
	UpdateTeam(ctx context.Context, slug string, cred Credential, teamID string, name, group *string) (*Snapshot, error)
	DeleteTeam(ctx context.Context, slug string, cred Credential, teamID string) (*Snapshot, error)
}

type teamService struct {
	state StateService
}

func NewTeamService(state StateService) TeamService {
	return &teamService{state: state}
}

func (s *teamService) AddTeam(ctx context.Context, slug string, cred Credential, name, group string) (*Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		st.Teams = append(st.Teams, models.Team{
			ID:    uuid.NewString(),
			Name:  name,
			Group: strings.ToUpper(strings.TrimSpace(group)),
		})
		return nil
	})
}

func (s *teamService) UpdateTeam(ctx context.Context, slug string, cred Credential, teamID string, name, group *string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.TeamIndex(teamID)
		if i < 0 {
			return ErrTeamNotFound
		}
		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return ErrTeamNameRequired
			}
			st.Teams[i].Name = trimmed
		}
		if group != nil {
			st.Teams[i].Group = strings.ToUpper(strings.TrimSpace(*group))
		}
		return nil
	})
}

// DeleteTeam removes a team and cascades: every match the team appears in is
// deleted, meta pointers at those matches are cleared, queue entries for
// them dropped, and a generated bracket is invalidated so the operator has
// to regenerate it from the surviving standings.
func (s *teamService) DeleteTeam(ctx context.Context, slug string, cred Credential, teamID string) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		i := st.TeamIndex(teamID)
		if i < 0 {
			return ErrTeamNotFound
		}
		st.Teams = append(st.Teams[:i], st.Teams[i+1:]...)

		removed := make(map[string]bool)
		kept := st.Matches[:0]
		for _, m := range st.Matches {
			if m.References(teamID) {
				removed[m.ID] = true
				continue
			}
			kept = append(kept, m)
		}
		st.Matches = kept

		if st.Meta.ProgramMatchID != nil && removed[*st.Meta.ProgramMatchID] {
			st.Meta.ProgramMatchID = nil
		}
		if st.Meta.LiveMatchID != nil && removed[*st.Meta.LiveMatchID] {
			st.Meta.LiveMatchID = nil
		}
		if len(st.Meta.Queue) > 0 {
			queue := st.Meta.Queue[:0]
			for _, q := range st.Meta.Queue {
				if !removed[q.MatchID] {
					queue = append(queue, q)
				}
			}
			st.Meta.Queue = queue
		}

		// Seeds may reference the deleted team even when no match did.
		st.Playoffs.Generated = false
		return nil
	})
}
