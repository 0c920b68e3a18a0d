// Package engine implements the match scoring rules, group standings and
// playoff bracket logic. Every function is pure: it normalizes its input,
// returns a new value and performs no I/O.
package engine

import (
	"time"

	"github.com/mkrawczyk/volleypanel/models"
)

const (
	setsPerMatch = 3
	setsToWin    = 2

	regularSetTarget  = 25
	decidingSetTarget = 15

	winMargin = 2
)

// SetTarget returns the target score of the set at the given index. The
// deciding set (index 2) is played to 15 regardless of how the earlier sets
// went; sets 0 and 1 are played to 25.
func SetTarget(idx int) int {
	if idx == setsPerMatch-1 {
		return decidingSetTarget
	}
	return regularSetTarget
}

// Normalize fills missing fields with defaults and coerces set scores into
// shape: exactly three sets, non-negative points, a status and stage value.
// Returned slices are fresh copies, so mutating the result never touches the
// input. Every other engine function normalizes first and therefore tolerates
// partially-formed input (imported or hand-edited documents included).
func Normalize(m models.Match) models.Match {
	sets := make([]models.SetScore, setsPerMatch)
	for i := 0; i < setsPerMatch && i < len(m.Sets); i++ {
		s := m.Sets[i]
		if s.A < 0 {
			s.A = 0
		}
		if s.B < 0 {
			s.B = 0
		}
		sets[i] = s
	}
	m.Sets = sets

	events := make([]models.PointEvent, len(m.Events))
	copy(events, m.Events)
	m.Events = events

	if m.Status == "" {
		m.Status = models.StatusPending
	}
	if m.Stage == "" {
		m.Stage = models.StageGroup
	}
	return m
}

// setWinner reports which side, if any, has won the set at the given index:
// target reached and at least a two point margin.
func setWinner(s models.SetScore, idx int) (models.Side, bool) {
	target := SetTarget(idx)
	switch {
	case s.A >= target && s.A-s.B >= winMargin:
		return models.SideA, true
	case s.B >= target && s.B-s.A >= winMargin:
		return models.SideB, true
	}
	return "", false
}

// SetWinCount holds won sets per side.
type SetWinCount struct {
	A int
	B int
}

// SetWins counts the sets each side has won. This is the sole authority for
// "is a set over and who took it".
func SetWins(m models.Match) SetWinCount {
	m = Normalize(m)
	var w SetWinCount
	for i, s := range m.Sets {
		side, done := setWinner(s, i)
		if !done {
			continue
		}
		if side == models.SideA {
			w.A++
		} else {
			w.B++
		}
	}
	return w
}

// CurrentSetIndex returns the index of the set currently being played. A
// match that is already decided pins the index to the last set.
func CurrentSetIndex(m models.Match) int {
	m = Normalize(m)
	w := SetWins(m)
	if w.A >= setsToWin || w.B >= setsToWin {
		return setsPerMatch - 1
	}
	for i, s := range m.Sets {
		if _, done := setWinner(s, i); !done {
			return i
		}
	}
	return setsPerMatch - 1
}

// Summary is the per-side set score of a match.
type Summary struct {
	SetsA int `json:"setsA"`
	SetsB int `json:"setsB"`
}

// ScoreSummary wraps SetWins in the shape display layers consume.
func ScoreSummary(m models.Match) Summary {
	w := SetWins(m)
	return Summary{SetsA: w.A, SetsB: w.B}
}

// reevaluate re-derives status and winner from the sets array. The stored
// status is never trusted for these two fields: a document that claims
// "live" while the sets already show two won sets heals to finished here,
// and a finished match whose sets were corrected downward drops back to
// live. Confirmed is terminal and left alone.
func reevaluate(m models.Match) models.Match {
	if m.Status == models.StatusConfirmed {
		return m
	}
	w := SetWins(m)
	switch {
	case w.A >= setsToWin:
		side := models.SideA
		m.Status = models.StatusFinished
		m.Winner = &side
	case w.B >= setsToWin:
		side := models.SideB
		m.Status = models.StatusFinished
		m.Winner = &side
	default:
		if m.Status == models.StatusFinished {
			m.Status = models.StatusLive
		}
		m.Winner = nil
	}
	return m
}

// Reevaluate exposes the completion rule for callers that edit a match
// outside the engine mutators (imports, cascade repairs).
func Reevaluate(m models.Match) models.Match {
	return reevaluate(Normalize(m))
}

// AddPoint adjusts the current set by delta (clamped at zero) for the given
// side. Finished and confirmed matches are left untouched. Positive deltas
// append to the advisory point log; negative deltas remove the most recent
// matching entry best-effort. Undo is advisory only, the sets array stays
// authoritative.
func AddPoint(m models.Match, side models.Side, delta int) models.Match {
	m = Normalize(m)
	if m.Status == models.StatusFinished || m.Status == models.StatusConfirmed {
		return m
	}
	idx := CurrentSetIndex(m)
	s := m.Sets[idx]
	if side == models.SideA {
		s.A += delta
		if s.A < 0 {
			s.A = 0
		}
	} else {
		s.B += delta
		if s.B < 0 {
			s.B = 0
		}
	}
	m.Sets[idx] = s

	if delta > 0 {
		m.Events = append(m.Events, models.PointEvent{At: time.Now().UTC(), Set: idx, Side: side})
	} else if delta < 0 {
		for i := len(m.Events) - 1; i >= 0; i-- {
			if m.Events[i].Set == idx && m.Events[i].Side == side {
				m.Events = append(m.Events[:i], m.Events[i+1:]...)
				break
			}
		}
	}

	m.UpdatedAt = time.Now().UTC()
	return reevaluate(m)
}

// ResetCurrentSet zeroes the set currently being played. No-op once the
// match is finished or confirmed.
func ResetCurrentSet(m models.Match) models.Match {
	m = Normalize(m)
	if m.Status == models.StatusFinished || m.Status == models.StatusConfirmed {
		return m
	}
	idx := CurrentSetIndex(m)
	m.Sets[idx] = models.SetScore{}
	m.UpdatedAt = time.Now().UTC()
	return reevaluate(m)
}

// MarkLive transitions pending to live; any other status is left unchanged.
func MarkLive(m models.Match) models.Match {
	m = Normalize(m)
	if m.Status != models.StatusPending {
		return m
	}
	m.Status = models.StatusLive
	m.UpdatedAt = time.Now().UTC()
	return m
}

// Confirm ratifies a finished match. Only confirmed matches count toward
// standings; the extra step lets a disputed result be corrected before it
// affects the table. Any status other than finished is left unchanged.
func Confirm(m models.Match) models.Match {
	m = Normalize(m)
	m = reevaluate(m)
	if m.Status != models.StatusFinished {
		return m
	}
	m.Status = models.StatusConfirmed
	m.UpdatedAt = time.Now().UTC()
	return m
}

// SetResult overwrites the sets with an operator-entered final score and
// re-derives the outcome. A decided result is confirmed immediately (manual
// entry is itself the ratification); an undecided one leaves the match live.
func SetResult(m models.Match, sets []models.SetScore) models.Match {
	m = Normalize(m)
	m.Sets = sets
	m.Status = models.StatusLive
	m.Winner = nil
	m = Normalize(m)
	m = reevaluate(m)
	if m.Status == models.StatusFinished {
		m.Status = models.StatusConfirmed
	}
	m.UpdatedAt = time.Now().UTC()
	return m
}

// WinnerTeamID resolves the winning side to a team id. Nil while the match
// is undecided or a side is still a TBD slot.
func WinnerTeamID(m models.Match) *string {
	m = Normalize(m)
	w := SetWins(m)
	switch {
	case w.A >= setsToWin:
		return m.TeamAID
	case w.B >= setsToWin:
		return m.TeamBID
	}
	return nil
}

// LoserTeamID resolves the losing side to a team id. Nil while the match is
// undecided or either slot is empty.
func LoserTeamID(m models.Match) *string {
	m = Normalize(m)
	if m.TeamAID == nil || m.TeamBID == nil {
		return nil
	}
	w := SetWins(m)
	switch {
	case w.A >= setsToWin:
		return m.TeamBID
	case w.B >= setsToWin:
		return m.TeamAID
	}
	return nil
}
