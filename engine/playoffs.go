package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkrawczyk/volleypanel/models"
)

// ErrNeedFourGroups is returned when playoff generation is attempted with
// fewer than four groups in the standings. The bracket layout is a fixed
// special case for four groups of up to four teams; anything else is
// rejected instead of guessed at.
var ErrNeedFourGroups = errors.New("playoff generation requires four groups")

// GeneratePlayoffs builds the elimination stage from the current group
// standings and records it on the document. Without force it is idempotent:
// an already-generated bracket is left untouched. With force the previously
// generated bracket matches are removed first; group-stage matches are never
// touched.
//
// Quarterfinals cross the groups so same-group teams meet as late as
// possible: QF1 A1-C2, QF2 B1-D2, QF3 C1-A2, QF4 D1-B2. Semifinals, final
// and the third-place match start with empty slots and are filled by
// ApplyPlayoffsProgression. Places 9-12 are seeded directly from the
// third-place finishers (B3-D3 and A3-C3); their winners finish 9th-10th
// and losers 11th-12th with no further playoff between them.
//
// A group with fewer than three ranked teams simply leaves the matching
// seed slots nil; downstream renderers show them as TBD.
func GeneratePlayoffs(st *models.TournamentState, force bool) error {
	if st.Playoffs.Generated && !force {
		return nil
	}

	groups := ComputeStandings(st)
	keys := make([]string, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool {
		return nameCollator.CompareString(keys[i], keys[j]) < 0
	})
	if len(keys) < 4 {
		return ErrNeedFourGroups
	}
	// The four alphabetically-first labels take the A-D positions.
	keys = keys[:4]

	seedOf := func(group string, place int) *string {
		rs := groups[group]
		if place-1 >= len(rs) {
			return nil
		}
		id := rs[place-1].TeamID
		return &id
	}

	if st.Playoffs.Generated && st.Playoffs.Bracket != nil {
		removePreviousBracket(st)
	}

	now := time.Now().UTC()
	mk := func(stage models.MatchStage, a, b *string, label string) models.Match {
		return Normalize(models.Match{
			ID:        uuid.NewString(),
			Stage:     stage,
			Label:     label,
			TeamAID:   a,
			TeamBID:   b,
			Status:    models.StatusPending,
			UpdatedAt: now,
		})
	}

	gA, gB, gC, gD := keys[0], keys[1], keys[2], keys[3]

	qf1 := mk(models.StageQuarterfinal, seedOf(gA, 1), seedOf(gC, 2), "QF1: A1 vs C2")
	qf2 := mk(models.StageQuarterfinal, seedOf(gB, 1), seedOf(gD, 2), "QF2: B1 vs D2")
	qf3 := mk(models.StageQuarterfinal, seedOf(gC, 1), seedOf(gA, 2), "QF3: C1 vs A2")
	qf4 := mk(models.StageQuarterfinal, seedOf(gD, 1), seedOf(gB, 2), "QF4: D1 vs B2")

	sf1 := mk(models.StageSemifinal, nil, nil, "SF1: winner QF1 vs winner QF2")
	sf2 := mk(models.StageSemifinal, nil, nil, "SF2: winner QF3 vs winner QF4")

	fin := mk(models.StageFinal, nil, nil, "Final")
	third := mk(models.StageThirdPlace, nil, nil, "Third place")

	p9a := mk(models.StagePlace9, seedOf(gB, 3), seedOf(gD, 3), "Places 9-12: B3 vs D3")
	p9b := mk(models.StagePlace9, seedOf(gA, 3), seedOf(gC, 3), "Places 9-12: A3 vs C3")

	st.Matches = append(st.Matches, qf1, qf2, qf3, qf4, sf1, sf2, fin, third, p9a, p9b)

	seeds := make([]models.Seed, 0, 12)
	for _, g := range keys {
		for place := 1; place <= 3; place++ {
			if id := seedOf(g, place); id != nil {
				seeds = append(seeds, models.Seed{
					Key:    fmt.Sprintf("%s%d", g, place),
					TeamID: *id,
					Group:  g,
					Place:  place,
				})
			}
		}
	}

	st.Playoffs = models.Playoffs{
		Generated:   true,
		GeneratedAt: &now,
		Seeds:       seeds,
		Bracket: &models.Bracket{
			QF:     []string{qf1.ID, qf2.ID, qf3.ID, qf4.ID},
			SF:     []string{sf1.ID, sf2.ID},
			Final:  fin.ID,
			Third:  third.ID,
			Place9: []string{p9a.ID, p9b.ID},
		},
	}
	return nil
}

// removePreviousBracket drops every match the previous bracket referenced.
func removePreviousBracket(st *models.TournamentState) {
	old := make(map[string]bool)
	for _, id := range st.Playoffs.Bracket.MatchIDs() {
		old[id] = true
	}
	kept := st.Matches[:0]
	for _, m := range st.Matches {
		if !old[m.ID] {
			kept = append(kept, m)
		}
	}
	st.Matches = kept
}

// ApplyPlayoffsProgression fills downstream bracket slots from decided
// source matches: quarterfinal winners feed the semifinals, semifinal
// winners the final and semifinal losers the third-place match. A slot is
// only ever filled, never cleared or replaced, and an undecided source
// simply leaves its slot for a later pass. The function is idempotent and
// safe to run after every confirmation.
func ApplyPlayoffsProgression(st *models.TournamentState) {
	if !st.Playoffs.Generated || st.Playoffs.Bracket == nil {
		return
	}
	br := st.Playoffs.Bracket

	byID := make(map[string]int, len(st.Matches))
	for i := range st.Matches {
		byID[st.Matches[i].ID] = i
	}

	// Only a confirmed source feeds a slot; a finished-but-unratified result
	// can still be corrected and must not advance anyone yet.
	winner := func(id string) *string {
		if i, ok := byID[id]; ok && st.Matches[i].Status == models.StatusConfirmed {
			return WinnerTeamID(st.Matches[i])
		}
		return nil
	}
	loser := func(id string) *string {
		if i, ok := byID[id]; ok && st.Matches[i].Status == models.StatusConfirmed {
			return LoserTeamID(st.Matches[i])
		}
		return nil
	}
	fill := func(id string, a, b *string) {
		i, ok := byID[id]
		if !ok {
			return
		}
		m := &st.Matches[i]
		changed := false
		if m.TeamAID == nil && a != nil {
			m.TeamAID = a
			changed = true
		}
		if m.TeamBID == nil && b != nil {
			m.TeamBID = b
			changed = true
		}
		if changed {
			m.UpdatedAt = time.Now().UTC()
		}
	}

	if len(br.QF) >= 4 && len(br.SF) >= 2 {
		fill(br.SF[0], winner(br.QF[0]), winner(br.QF[1]))
		fill(br.SF[1], winner(br.QF[2]), winner(br.QF[3]))
	}
	if len(br.SF) >= 2 && br.Final != "" && br.Third != "" {
		fill(br.Final, winner(br.SF[0]), winner(br.SF[1]))
		fill(br.Third, loser(br.SF[0]), loser(br.SF[1]))
	}
}
