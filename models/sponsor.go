package models

// Sponsor is one entry of the sponsor rotation shown by the overlay.
// Weight biases how often the rotator picks the logo.
type Sponsor struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	LogoKey *string `json:"logoKey,omitempty"`
	LogoURL *string `json:"logoUrl,omitempty"`
	Weight  int     `json:"weight"`
	Active  bool    `json:"active"`
}
