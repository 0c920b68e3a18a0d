package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrawczyk/volleypanel/repositories"
)

const minPinLength = 3

// Credential is what a mutating request proves itself with: either the
// tournament's shared PIN directly, or a session token previously exchanged
// for it. Exactly one field is expected to be set.
type Credential struct {
	Pin   string
	Token string
}

type AuthService interface {
	// Authorize checks the credential against the tournament. Auth failures
	// are surfaced as ErrInvalidPin / ErrInvalidToken and are never retried.
	Authorize(ctx context.Context, slug string, cred Credential) error
	VerifyPin(ctx context.Context, slug, pin string) error
	// IssueToken exchanges a valid PIN for a short-lived session token so
	// courtside devices do not replay the PIN on every request.
	IssueToken(ctx context.Context, slug, pin string) (string, time.Time, error)
	ChangePin(ctx context.Context, slug, oldPin, newPin string) error
	HashPin(pin string) (string, error)
}

type authService struct {
	repo      repositories.TournamentRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repositories.TournamentRepository, jwtSecret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Authorize(ctx context.Context, slug string, cred Credential) error {
	if cred.Token != "" {
		return s.verifyToken(slug, cred.Token)
	}
	return s.VerifyPin(ctx, slug, cred.Pin)
}

func (s *authService) VerifyPin(ctx context.Context, slug, pin string) error {
	hash, err := s.repo.GetPinHash(ctx, slug)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		return ErrInvalidPin
	}
	return nil
}

func (s *authService) IssueToken(ctx context.Context, slug, pin string) (string, time.Time, error) {
	if err := s.VerifyPin(ctx, slug, pin); err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"slug": slug,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign operator token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *authService) verifyToken(slug, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	if tokenSlug, _ := claims["slug"].(string); tokenSlug != slug {
		return ErrInvalidToken
	}
	return nil
}

func (s *authService) ChangePin(ctx context.Context, slug, oldPin, newPin string) error {
	if len(newPin) < minPinLength {
		return ErrPinTooShort
	}
	if err := s.VerifyPin(ctx, slug, oldPin); err != nil {
		return err
	}
	hash, err := s.HashPin(newPin)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePinHash(ctx, slug, hash); err != nil {
		return fmt.Errorf("failed to store new pin: %w", err)
	}
	return nil
}

func (s *authService) HashPin(pin string) (string, error) {
	if len(pin) < minPinLength {
		return "", ErrPinTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}
