package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T, repo *fakeRepo, pin string) AuthService {
	t.Helper()
	svc := NewAuthService(repo, []byte("test-secret"), time.Hour)
	hash, err := svc.HashPin(pin)
	require.NoError(t, err)
	repo.pinHash = hash
	return svc
}

func TestVerifyPin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestAuthService(t, repo, "4321")

	assert.NoError(t, svc.VerifyPin(context.Background(), "cup", "4321"))
	assert.ErrorIs(t, svc.VerifyPin(context.Background(), "cup", "0000"), ErrInvalidPin)
}

func TestHashPinRejectsShortPins(t *testing.T) {
	svc := NewAuthService(newFakeRepo(), []byte("test-secret"), time.Hour)
	_, err := svc.HashPin("12")
	assert.ErrorIs(t, err, ErrPinTooShort)
}

func TestIssueTokenAndAuthorize(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestAuthService(t, repo, "4321")

	token, expiresAt, err := svc.IssueToken(context.Background(), "cup", "4321")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	assert.NoError(t, svc.Authorize(context.Background(), "cup", Credential{Token: token}))
	// The token is bound to its tournament.
	assert.ErrorIs(t, svc.Authorize(context.Background(), "other", Credential{Token: token}), ErrInvalidToken)
	assert.ErrorIs(t, svc.Authorize(context.Background(), "cup", Credential{Token: "garbage"}), ErrInvalidToken)
}

func TestIssueTokenRequiresValidPin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestAuthService(t, repo, "4321")

	_, _, err := svc.IssueToken(context.Background(), "cup", "0000")
	assert.ErrorIs(t, err, ErrInvalidPin)
}

func TestChangePin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestAuthService(t, repo, "4321")

	assert.ErrorIs(t, svc.ChangePin(context.Background(), "cup", "4321", "99"), ErrPinTooShort)
	assert.ErrorIs(t, svc.ChangePin(context.Background(), "cup", "0000", "9999"), ErrInvalidPin)

	require.NoError(t, svc.ChangePin(context.Background(), "cup", "4321", "9999"))
	assert.NoError(t, svc.VerifyPin(context.Background(), "cup", "9999"))
	assert.ErrorIs(t, svc.VerifyPin(context.Background(), "cup", "4321"), ErrInvalidPin)
}
