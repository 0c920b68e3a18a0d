package models

// Team is one tournament entry. Group is a single-letter label ("A".."D");
// empty means the team has not been assigned to a group yet.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}
