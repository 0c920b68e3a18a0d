package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrInvalidPin   = errors.New("invalid tournament pin")
	ErrInvalidToken = errors.New("invalid or expired operator token")
	ErrPinTooShort  = errors.New("pin is too short")

	ErrSlugRequired        = errors.New("tournament slug is required")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrSponsorNameRequired = errors.New("sponsor name is required")

	ErrTeamNotFound    = errors.New("team not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrSponsorNotFound = errors.New("sponsor not found")

	// ErrMatchClaimed means another device holds the advisory claim on the
	// match. It protects against accidental double officiating; the version
	// check on the document is what protects against lost updates.
	ErrMatchClaimed = errors.New("match is claimed by another device")

	ErrInvalidSets = errors.New("invalid set scores")

	ErrUploadsDisabled = errors.New("asset uploads are not configured")
)
