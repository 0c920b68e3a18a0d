package engine

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mkrawczyk/volleypanel/models"
)

// pointRatioSentinel ranks a team that has not lost a single point above any
// finite ratio.
const pointRatioSentinel = 1e9

// StandingsRow is one team's aggregated group-stage record. Table points use
// the standard volleyball 3-2-1-0 scheme: 3 for a 2-0 win, 2 for a 2-1 win,
// 1 for a 1-2 loss, 0 for a 0-2 loss.
type StandingsRow struct {
	TeamID      string `json:"teamId"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	Played      int    `json:"played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	TablePoints int    `json:"tablePoints"`
	SetsWon     int    `json:"setsWon"`
	SetsLost    int    `json:"setsLost"`
	PointsWon   int    `json:"pointsWon"`
	PointsLost  int    `json:"pointsLost"`
}

func (r *StandingsRow) setDiff() int {
	return r.SetsWon - r.SetsLost
}

func (r *StandingsRow) pointRatio() float64 {
	if r.PointsLost == 0 {
		if r.PointsWon > 0 {
			return pointRatioSentinel
		}
		return 0
	}
	return float64(r.PointsWon) / float64(r.PointsLost)
}

// nameCollator orders team names the way the operator console displays them.
var nameCollator = collate.New(language.Polish)

// ComputeStandings derives per-group rankings from confirmed group matches.
// Live or merely finished matches do not count: standings reflect only
// operator-ratified results. Rows are grouped by the team's own group label
// and sorted by table points, then set differential, then point ratio, then
// name. The order is total and deterministic and doubles as the playoff
// seeding source (seed k of a group is row k-1).
func ComputeStandings(st *models.TournamentState) map[string][]StandingsRow {
	rows := make(map[string]*StandingsRow, len(st.Teams))
	for _, t := range st.Teams {
		if t.Group == "" {
			continue
		}
		rows[t.ID] = &StandingsRow{TeamID: t.ID, Name: t.Name, Group: t.Group}
	}

	for _, m0 := range st.Matches {
		m := Normalize(m0)
		if m.Stage != models.StageGroup || m.Status != models.StatusConfirmed {
			continue
		}
		if m.TeamAID == nil || m.TeamBID == nil {
			continue
		}
		w := SetWins(m)
		if w.A+w.B == 0 {
			// confirmed but no set decided, a data error; skip
			continue
		}
		ra, okA := rows[*m.TeamAID]
		rb, okB := rows[*m.TeamBID]
		if !okA || !okB {
			continue
		}

		var pw, pl int
		for _, s := range m.Sets {
			pw += s.A
			pl += s.B
		}

		ra.Played++
		rb.Played++
		ra.SetsWon += w.A
		ra.SetsLost += w.B
		rb.SetsWon += w.B
		rb.SetsLost += w.A
		ra.PointsWon += pw
		ra.PointsLost += pl
		rb.PointsWon += pl
		rb.PointsLost += pw

		if w.A > w.B {
			ra.Wins++
			rb.Losses++
			ra.TablePoints += matchTablePoints(w.A, w.B)
			rb.TablePoints += matchTablePoints(w.B, w.A)
		} else {
			rb.Wins++
			ra.Losses++
			rb.TablePoints += matchTablePoints(w.B, w.A)
			ra.TablePoints += matchTablePoints(w.A, w.B)
		}
	}

	groups := make(map[string][]StandingsRow)
	for _, r := range rows {
		groups[r.Group] = append(groups[r.Group], *r)
	}
	for g := range groups {
		rs := groups[g]
		sort.SliceStable(rs, func(i, j int) bool {
			a, b := &rs[i], &rs[j]
			if a.TablePoints != b.TablePoints {
				return a.TablePoints > b.TablePoints
			}
			if a.setDiff() != b.setDiff() {
				return a.setDiff() > b.setDiff()
			}
			if ar, br := a.pointRatio(), b.pointRatio(); ar != br {
				return ar > br
			}
			return nameCollator.CompareString(a.Name, b.Name) < 0
		})
		groups[g] = rs
	}
	return groups
}

// matchTablePoints maps a side's set result to table points.
func matchTablePoints(won, lost int) int {
	switch {
	case won == 2 && lost == 0:
		return 3
	case won == 2 && lost == 1:
		return 2
	case won == 1 && lost == 2:
		return 1
	default:
		return 0
	}
}
