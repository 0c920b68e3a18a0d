package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrawczyk/volleypanel/models"
)

func TestAddTeamTrimsAndUppercasesGroup(t *testing.T) {
	repo := newFakeRepo()
	svc := NewTeamService(newTestStateService(repo, &fakeAuth{}))

	snap, err := svc.AddTeam(context.Background(), "cup", Credential{Pin: "123"}, "  Orły  ", " a ")
	require.NoError(t, err)
	require.Len(t, snap.State.Teams, 1)
	assert.Equal(t, "Orły", snap.State.Teams[0].Name)
	assert.Equal(t, "A", snap.State.Teams[0].Group)
	assert.NotEmpty(t, snap.State.Teams[0].ID)
}

func TestAddTeamRequiresName(t *testing.T) {
	svc := NewTeamService(newTestStateService(newFakeRepo(), &fakeAuth{}))
	_, err := svc.AddTeam(context.Background(), "cup", Credential{Pin: "123"}, "   ", "A")
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}

func TestUpdateTeamPartialFields(t *testing.T) {
	repo := newFakeRepo()
	repo.state.Teams = []models.Team{{ID: "t1", Name: "Orły", Group: "A"}}
	svc := NewTeamService(newTestStateService(repo, &fakeAuth{}))

	group := "b"
	snap, err := svc.UpdateTeam(context.Background(), "cup", Credential{Pin: "123"}, "t1", nil, &group)
	require.NoError(t, err)
	assert.Equal(t, "Orły", snap.State.Teams[0].Name)
	assert.Equal(t, "B", snap.State.Teams[0].Group)

	_, err = svc.UpdateTeam(context.Background(), "cup", Credential{Pin: "123"}, "missing", nil, &group)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestDeleteTeamCascades(t *testing.T) {
	repo := newFakeRepo()
	t1, t2, t3 := "t1", "t2", "t3"
	m1 := "m1"
	repo.state.Teams = []models.Team{
		{ID: t1, Name: "Orły", Group: "A"},
		{ID: t2, Name: "Sokoły", Group: "A"},
		{ID: t3, Name: "Wilki", Group: "B"},
	}
	repo.state.Matches = []models.Match{
		{ID: m1, Stage: models.StageGroup, TeamAID: &t1, TeamBID: &t2, Status: models.StatusLive},
		{ID: "m2", Stage: models.StageGroup, TeamAID: &t2, TeamBID: &t3, Status: models.StatusPending},
	}
	repo.state.Meta.ProgramMatchID = &m1
	repo.state.Meta.LiveMatchID = &m1
	repo.state.Meta.Queue = []models.QueueEntry{{MatchID: "m1"}, {MatchID: "m2"}}
	repo.state.Playoffs.Generated = true

	svc := NewTeamService(newTestStateService(repo, &fakeAuth{}))
	snap, err := svc.DeleteTeam(context.Background(), "cup", Credential{Pin: "123"}, t1)
	require.NoError(t, err)

	st := snap.State
	assert.Equal(t, -1, st.TeamIndex(t1))
	assert.Equal(t, -1, st.MatchIndex("m1"))
	assert.GreaterOrEqual(t, st.MatchIndex("m2"), 0)
	assert.Nil(t, st.Meta.ProgramMatchID)
	assert.Nil(t, st.Meta.LiveMatchID)
	require.Len(t, st.Meta.Queue, 1)
	assert.Equal(t, "m2", st.Meta.Queue[0].MatchID)
	assert.False(t, st.Playoffs.Generated)
}
