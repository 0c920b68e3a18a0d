package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrawczyk/volleypanel/models"
)

func confirmedGroupMatch(id, teamA, teamB string, sets ...models.SetScore) models.Match {
	return models.Match{
		ID:      id,
		Stage:   models.StageGroup,
		TeamAID: &teamA,
		TeamBID: &teamB,
		Sets:    sets,
		Status:  models.StatusConfirmed,
	}
}

func TestComputeStandingsCountsOnlyConfirmedGroupMatches(t *testing.T) {
	st := models.NewTournamentState()
	st.Teams = []models.Team{
		{ID: "t1", Name: "Orły", Group: "A"},
		{ID: "t2", Name: "Sokoły", Group: "A"},
	}

	finished := confirmedGroupMatch("m1", "t1", "t2", models.SetScore{A: 25, B: 20}, models.SetScore{A: 25, B: 20})
	finished.Status = models.StatusFinished
	playoff := confirmedGroupMatch("m2", "t1", "t2", models.SetScore{A: 25, B: 20}, models.SetScore{A: 25, B: 20})
	playoff.Stage = models.StageQuarterfinal
	st.Matches = []models.Match{finished, playoff}

	groups := ComputeStandings(st)
	require.Len(t, groups["A"], 2)
	for _, row := range groups["A"] {
		assert.Zero(t, row.Played)
		assert.Zero(t, row.TablePoints)
	}
}

func TestComputeStandingsTablePoints(t *testing.T) {
	st := models.NewTournamentState()
	st.Teams = []models.Team{
		{ID: "t1", Name: "Orły", Group: "A"},
		{ID: "t2", Name: "Sokoły", Group: "A"},
		{ID: "t3", Name: "Wilki", Group: "A"},
	}
	st.Matches = []models.Match{
		// t1 beats t2 2-0: 3 points vs 0.
		confirmedGroupMatch("m1", "t1", "t2", models.SetScore{A: 25, B: 20}, models.SetScore{A: 25, B: 18}),
		// t3 beats t2 2-1: 2 points vs 1.
		confirmedGroupMatch("m2", "t2", "t3", models.SetScore{A: 25, B: 22}, models.SetScore{A: 20, B: 25}, models.SetScore{A: 10, B: 15}),
	}

	rows := ComputeStandings(st)["A"]
	require.Len(t, rows, 3)

	byID := map[string]StandingsRow{}
	for _, r := range rows {
		byID[r.TeamID] = r
	}
	assert.Equal(t, 3, byID["t1"].TablePoints)
	assert.Equal(t, 1, byID["t2"].TablePoints)
	assert.Equal(t, 2, byID["t3"].TablePoints)
	assert.Equal(t, 2, byID["t2"].Played)
	assert.Equal(t, 2, byID["t2"].Losses)
	assert.Equal(t, 1, byID["t1"].Wins)
}

func TestComputeStandingsTiebreakOrder(t *testing.T) {
	st := models.NewTournamentState()
	st.Teams = []models.Team{
		{ID: "t1", Name: "Żubry", Group: "A"},
		{ID: "t2", Name: "Łosie", Group: "A"},
	}
	// No matches: equal records everywhere, collation decides. Under Polish
	// collation Ł sorts before Ż.
	rows := ComputeStandings(st)["A"]
	require.Len(t, rows, 2)
	assert.Equal(t, "Łosie", rows[0].Name)
	assert.Equal(t, "Żubry", rows[1].Name)
}

func TestComputeStandingsSetDiffBeforeRatio(t *testing.T) {
	st := models.NewTournamentState()
	st.Teams = []models.Team{
		{ID: "a", Name: "Alfa", Group: "B"},
		{ID: "b", Name: "Beta", Group: "B"},
		{ID: "c", Name: "Gamma", Group: "B"},
		{ID: "d", Name: "Delta", Group: "B"},
	}
	st.Matches = []models.Match{
		// a: 2-0 win plus 1-2 loss, 4 table points, set diff +1.
		confirmedGroupMatch("m1", "a", "c", models.SetScore{A: 25, B: 20}, models.SetScore{A: 25, B: 18}),
		confirmedGroupMatch("m2", "d", "a", models.SetScore{A: 25, B: 20}, models.SetScore{A: 20, B: 25}, models.SetScore{A: 15, B: 12}),
		// b: two 2-1 wins, also 4 table points but set diff +2.
		confirmedGroupMatch("m3", "b", "c", models.SetScore{A: 25, B: 20}, models.SetScore{A: 20, B: 25}, models.SetScore{A: 15, B: 12}),
		confirmedGroupMatch("m4", "b", "d", models.SetScore{A: 25, B: 20}, models.SetScore{A: 20, B: 25}, models.SetScore{A: 15, B: 12}),
	}

	rows := ComputeStandings(st)["B"]
	require.Len(t, rows, 4)
	assert.Equal(t, "b", rows[0].TeamID)
	assert.Equal(t, "a", rows[1].TeamID)
	assert.Equal(t, "d", rows[2].TeamID)
	assert.Equal(t, "c", rows[3].TeamID)
}

func TestComputeStandingsSkipsUndecidedConfirmed(t *testing.T) {
	st := models.NewTournamentState()
	st.Teams = []models.Team{
		{ID: "t1", Name: "Orły", Group: "A"},
		{ID: "t2", Name: "Sokoły", Group: "A"},
	}
	st.Matches = []models.Match{
		confirmedGroupMatch("m1", "t1", "t2", models.SetScore{A: 10, B: 8}),
	}

	rows := ComputeStandings(st)["A"]
	for _, r := range rows {
		assert.Zero(t, r.Played)
	}
}

func TestMatchTablePoints(t *testing.T) {
	assert.Equal(t, 3, matchTablePoints(2, 0))
	assert.Equal(t, 2, matchTablePoints(2, 1))
	assert.Equal(t, 1, matchTablePoints(1, 2))
	assert.Equal(t, 0, matchTablePoints(0, 2))
}
