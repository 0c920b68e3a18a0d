package models

import "time"

type MatchStage string

const (
	StageGroup        MatchStage = "group"
	StageQuarterfinal MatchStage = "quarterfinal"
	StageSemifinal    MatchStage = "semifinal"
	StageThirdPlace   MatchStage = "thirdplace"
	StageFinal        MatchStage = "final"
	StagePlace9       MatchStage = "place9"
)

type MatchStatus string

const (
	StatusPending   MatchStatus = "pending"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusConfirmed MatchStatus = "confirmed"
)

// Side identifies one side of a match ("a" or "b").
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// SetScore holds the points of both sides in a single set.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// PointEvent is one entry of the advisory point log. The log feeds derived
// live statistics only; the Sets array stays authoritative for the score.
type PointEvent struct {
	At   time.Time `json:"at"`
	Set  int       `json:"set"`
	Side Side      `json:"side"`
}

// Match is a best-of-three contest. TeamAID/TeamBID are nil while a bracket
// slot is still waiting for an earlier result. ClaimedBy is the advisory
// device lock; the optimistic version on the whole document is what actually
// prevents lost updates.
type Match struct {
	ID        string       `json:"id"`
	Stage     MatchStage   `json:"stage"`
	Group     string       `json:"group,omitempty"`
	Label     string       `json:"label,omitempty"`
	TeamAID   *string      `json:"teamAId"`
	TeamBID   *string      `json:"teamBId"`
	Sets      []SetScore   `json:"sets"`
	Status    MatchStatus  `json:"status"`
	Winner    *Side        `json:"winner"`
	ClaimedBy *string      `json:"claimedBy"`
	ClaimedAt *time.Time   `json:"claimedAt,omitempty"`
	Events    []PointEvent `json:"events,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// References reports whether the match involves the given team on either side.
func (m *Match) References(teamID string) bool {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return true
	}
	if m.TeamBID != nil && *m.TeamBID == teamID {
		return true
	}
	return false
}
