package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/mkrawczyk/volleypanel/repositories"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

	ErrInvalidSlug  = errors.New("slug must be lowercase letters, digits and dashes")
	ErrNameRequired = errors.New("tournament name is required")
)

type TournamentService interface {
	Create(ctx context.Context, slug, name, pin string) (string, error)
	GetIDBySlug(ctx context.Context, slug string) (string, error)
}

type tournamentService struct {
	repo repositories.TournamentRepository
	auth AuthService
}

func NewTournamentService(repo repositories.TournamentRepository, auth AuthService) TournamentService {
	return &tournamentService{repo: repo, auth: auth}
}

// Create registers a tournament under a URL slug with an empty state
// document at version 1. The PIN is stored as a bcrypt hash only.
func (s *tournamentService) Create(ctx context.Context, slug, name, pin string) (string, error) {
	if !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	if name == "" {
		return "", ErrNameRequired
	}
	hash, err := s.auth.HashPin(pin)
	if err != nil {
		return "", err
	}
	return s.repo.Create(ctx, slug, name, hash)
}

func (s *tournamentService) GetIDBySlug(ctx context.Context, slug string) (string, error) {
	return s.repo.GetIDBySlug(ctx, slug)
}
