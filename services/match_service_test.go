package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrawczyk/volleypanel/models"
)

func matchTestSetup() (*fakeRepo, MatchService) {
	repo := newFakeRepo()
	t1, t2 := "t1", "t2"
	repo.state.Teams = []models.Team{
		{ID: t1, Name: "Orły", Group: "A"},
		{ID: t2, Name: "Sokoły", Group: "A"},
	}
	repo.state.Matches = []models.Match{
		{ID: "m1", Stage: models.StageGroup, TeamAID: &t1, TeamBID: &t2, Status: models.StatusPending},
	}
	return repo, NewMatchService(newTestStateService(repo, &fakeAuth{}))
}

var operatorCred = Credential{Pin: "123"}

func TestCreateMatchValidatesTeams(t *testing.T) {
	repo, svc := matchTestSetup()

	missing := "nope"
	_, err := svc.CreateMatch(context.Background(), "cup", operatorCred, CreateMatchInput{
		Stage:   models.StageGroup,
		TeamAID: &missing,
	})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	t1 := repo.state.Teams[0].ID
	snap, err := svc.CreateMatch(context.Background(), "cup", operatorCred, CreateMatchInput{
		Stage:   models.StageGroup,
		Group:   "A",
		TeamAID: &t1,
	})
	require.NoError(t, err)
	require.Len(t, snap.State.Matches, 2)
	created := snap.State.Matches[1]
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Len(t, created.Sets, 3)
	assert.Nil(t, created.TeamBID)
}

func TestClaimTakesLockAndMarksLive(t *testing.T) {
	_, svc := matchTestSetup()

	snap, err := svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-1")
	require.NoError(t, err)
	m := snap.State.Matches[0]
	require.NotNil(t, m.ClaimedBy)
	assert.Equal(t, "tablet-1", *m.ClaimedBy)
	assert.NotNil(t, m.ClaimedAt)
	assert.Equal(t, models.StatusLive, m.Status)
	require.NotNil(t, snap.State.Meta.LiveMatchID)
	assert.Equal(t, "m1", *snap.State.Meta.LiveMatchID)
}

func TestClaimRejectsOtherDevice(t *testing.T) {
	_, svc := matchTestSetup()

	_, err := svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-1")
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-2")
	assert.ErrorIs(t, err, ErrMatchClaimed)

	// Re-claim by the holder is fine.
	_, err = svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-1")
	assert.NoError(t, err)
}

func TestClaimReleasesDevicesOtherMatches(t *testing.T) {
	repo, svc := matchTestSetup()
	t1 := repo.state.Teams[0].ID
	t2 := repo.state.Teams[1].ID
	repo.state.Matches = append(repo.state.Matches, models.Match{
		ID: "m2", Stage: models.StageGroup, TeamAID: &t2, TeamBID: &t1, Status: models.StatusPending,
	})

	_, err := svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-1")
	require.NoError(t, err)
	snap, err := svc.Claim(context.Background(), "cup", operatorCred, "m2", "tablet-1")
	require.NoError(t, err)

	first := snap.State.Matches[snap.State.MatchIndex("m1")]
	assert.Nil(t, first.ClaimedBy)
	second := snap.State.Matches[snap.State.MatchIndex("m2")]
	require.NotNil(t, second.ClaimedBy)
	assert.Equal(t, "tablet-1", *second.ClaimedBy)
}

func TestAddPointHonorsClaim(t *testing.T) {
	_, svc := matchTestSetup()

	_, err := svc.Claim(context.Background(), "cup", operatorCred, "m1", "tablet-1")
	require.NoError(t, err)

	_, err = svc.AddPoint(context.Background(), "cup", operatorCred, "m1", "tablet-2", models.SideA, 1)
	assert.ErrorIs(t, err, ErrMatchClaimed)

	snap, err := svc.AddPoint(context.Background(), "cup", operatorCred, "m1", "tablet-1", models.SideA, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Matches[0].Sets[0].A)

	// The operator console sends no device id and bypasses the claim.
	snap, err = svc.AddPoint(context.Background(), "cup", operatorCred, "m1", "", models.SideA, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Matches[0].Sets[0].A)
}

func TestSetResultValidation(t *testing.T) {
	_, svc := matchTestSetup()

	_, err := svc.SetResult(context.Background(), "cup", operatorCred, "m1", nil)
	assert.ErrorIs(t, err, ErrInvalidSets)

	_, err = svc.SetResult(context.Background(), "cup", operatorCred, "m1", []models.SetScore{{A: -1, B: 0}})
	assert.ErrorIs(t, err, ErrInvalidSets)

	snap, err := svc.SetResult(context.Background(), "cup", operatorCred, "m1", []models.SetScore{{A: 25, B: 20}, {A: 25, B: 21}})
	require.NoError(t, err)
	m := snap.State.Matches[0]
	assert.Equal(t, models.StatusConfirmed, m.Status)
	require.NotNil(t, m.Winner)
	assert.Equal(t, models.SideA, *m.Winner)
}

func TestReopenClearsOutcomeAndClaim(t *testing.T) {
	_, svc := matchTestSetup()

	_, err := svc.SetResult(context.Background(), "cup", operatorCred, "m1", []models.SetScore{{A: 25, B: 20}, {A: 25, B: 21}})
	require.NoError(t, err)

	snap, err := svc.Reopen(context.Background(), "cup", operatorCred, "m1")
	require.NoError(t, err)
	m := snap.State.Matches[0]
	assert.Equal(t, models.StatusLive, m.Status)
	assert.Nil(t, m.Winner)
	assert.Nil(t, m.ClaimedBy)

	// Reopening a match that never finished is a no-op, not an error.
	snap, err = svc.Reopen(context.Background(), "cup", operatorCred, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, snap.State.Matches[0].Status)
}

func TestDeleteMatchClearsMetaReferences(t *testing.T) {
	repo, svc := matchTestSetup()
	m1 := "m1"
	repo.state.Meta.ProgramMatchID = &m1
	repo.state.Meta.Queue = []models.QueueEntry{{MatchID: "m1"}}

	snap, err := svc.DeleteMatch(context.Background(), "cup", operatorCred, "m1")
	require.NoError(t, err)
	assert.Equal(t, -1, snap.State.MatchIndex("m1"))
	assert.Nil(t, snap.State.Meta.ProgramMatchID)
	assert.Empty(t, snap.State.Meta.Queue)

	_, err = svc.DeleteMatch(context.Background(), "cup", operatorCred, "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
