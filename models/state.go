package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Seed maps a group placement (e.g. "A1") to the team that earned it when
// the playoff bracket was generated.
type Seed struct {
	Key    string `json:"key"`
	TeamID string `json:"teamId"`
	Group  string `json:"group"`
	Place  int    `json:"place"`
}

// Bracket holds the generated playoff match ids per round.
type Bracket struct {
	QF     []string `json:"qf"`
	SF     []string `json:"sf"`
	Final  string   `json:"final,omitempty"`
	Third  string   `json:"third,omitempty"`
	Place9 []string `json:"place9"`
}

// MatchIDs returns every match id referenced by the bracket.
func (b *Bracket) MatchIDs() []string {
	ids := make([]string, 0, len(b.QF)+len(b.SF)+len(b.Place9)+2)
	ids = append(ids, b.QF...)
	ids = append(ids, b.SF...)
	if b.Final != "" {
		ids = append(ids, b.Final)
	}
	if b.Third != "" {
		ids = append(ids, b.Third)
	}
	ids = append(ids, b.Place9...)
	return ids
}

type Playoffs struct {
	Generated   bool       `json:"generated"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	Seeds       []Seed     `json:"seeds,omitempty"`
	Bracket     *Bracket   `json:"bracket,omitempty"`
}

// QueueEntry is one planned match in the operator queue.
type QueueEntry struct {
	MatchID string `json:"matchId"`
	Note    string `json:"note,omitempty"`
}

// SceneRotation configures automatic cycling of display scenes.
type SceneRotation struct {
	Enabled     bool     `json:"enabled"`
	IntervalSec int      `json:"intervalSec,omitempty"`
	Scenes      []string `json:"scenes,omitempty"`
}

// Meta carries everything the display surfaces need beyond raw results:
// the active scene, the featured match, the operator queue and sponsors.
type Meta struct {
	Scene          string        `json:"scene,omitempty"`
	ProgramMatchID *string       `json:"programMatchId"`
	LiveMatchID    *string       `json:"liveMatchId"`
	Locked         bool          `json:"locked"`
	Queue          []QueueEntry  `json:"queue,omitempty"`
	Sponsors       []Sponsor     `json:"sponsors,omitempty"`
	SceneRotation  SceneRotation `json:"sceneRotation"`
}

// TournamentState is the whole shared document. Every mutation reads it at
// some version, rewrites it as a value and writes it back conditioned on
// that version still being current.
type TournamentState struct {
	Teams    []Team   `json:"teams"`
	Matches  []Match  `json:"matches"`
	Playoffs Playoffs `json:"playoffs"`
	Meta     Meta     `json:"meta"`
}

// NewTournamentState returns an empty document.
func NewTournamentState() *TournamentState {
	return &TournamentState{
		Teams:   []Team{},
		Matches: []Match{},
	}
}

// Clone returns a deep copy of the document via a JSON round trip, so a
// mutator can never alias the snapshot it was derived from.
func (s *TournamentState) Clone() (*TournamentState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state for cloning: %w", err)
	}
	out := &TournamentState{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to deserialize cloned state: %w", err)
	}
	return out, nil
}

// MatchIndex returns the position of the match with the given id, or -1.
func (s *TournamentState) MatchIndex(id string) int {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

// TeamIndex returns the position of the team with the given id, or -1.
func (s *TournamentState) TeamIndex(id string) int {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return i
		}
	}
	return -1
}

// TeamByID returns the team with the given id, if present.
func (s *TournamentState) TeamByID(id string) (*Team, bool) {
	if i := s.TeamIndex(id); i >= 0 {
		return &s.Teams[i], true
	}
	return nil, false
}
