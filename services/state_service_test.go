package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrawczyk/volleypanel/models"
	"github.com/mkrawczyk/volleypanel/repositories"
)

// fakeRepo keeps one tournament document in memory and can be told to lose
// the write race a set number of times.
type fakeRepo struct {
	version   int64
	state     *models.TournamentState
	pinHash   string
	conflicts int

	fetchCalls  int
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{version: 1, state: models.NewTournamentState()}
}

func (r *fakeRepo) Create(ctx context.Context, slug, name, pinHash string) (string, error) {
	return "id", nil
}

func (r *fakeRepo) GetIDBySlug(ctx context.Context, slug string) (string, error) {
	return "id", nil
}

func (r *fakeRepo) GetPinHash(ctx context.Context, slug string) (string, error) {
	if r.pinHash == "" {
		return "", repositories.ErrTournamentNotFound
	}
	return r.pinHash, nil
}

func (r *fakeRepo) UpdatePinHash(ctx context.Context, slug, pinHash string) error {
	r.pinHash = pinHash
	return nil
}

func (r *fakeRepo) FetchState(ctx context.Context, slug string) (*repositories.StateSnapshot, error) {
	r.fetchCalls++
	st, err := r.state.Clone()
	if err != nil {
		return nil, err
	}
	return &repositories.StateSnapshot{TournamentID: "id", Version: r.version, State: st, UpdatedAt: time.Now()}, nil
}

func (r *fakeRepo) UpdateState(ctx context.Context, slug string, expectedVersion int64, st *models.TournamentState) (*repositories.StateSnapshot, error) {
	r.updateCalls++
	if r.conflicts > 0 {
		r.conflicts--
		// Another writer won; the stored version moves on without us.
		r.version++
		return nil, repositories.ErrVersionConflict
	}
	if expectedVersion != r.version {
		return nil, repositories.ErrVersionConflict
	}
	r.version++
	r.state = st
	return &repositories.StateSnapshot{TournamentID: "id", Version: r.version, State: st, UpdatedAt: time.Now()}, nil
}

// fakeAuth approves or rejects every credential wholesale.
type fakeAuth struct {
	err   error
	calls int
}

func (a *fakeAuth) Authorize(ctx context.Context, slug string, cred Credential) error {
	a.calls++
	return a.err
}
func (a *fakeAuth) VerifyPin(ctx context.Context, slug, pin string) error { return a.err }
func (a *fakeAuth) IssueToken(ctx context.Context, slug, pin string) (string, time.Time, error) {
	return "", time.Time{}, a.err
}
func (a *fakeAuth) ChangePin(ctx context.Context, slug, oldPin, newPin string) error { return a.err }
func (a *fakeAuth) HashPin(pin string) (string, error)                               { return pin, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStateService(repo *fakeRepo, auth *fakeAuth) StateService {
	return NewStateService(repo, auth, DefaultMaxRetries, testLogger())
}

func addTeamMutator(name string) Mutator {
	return func(st *models.TournamentState) error {
		st.Teams = append(st.Teams, models.Team{ID: name, Name: name, Group: "A"})
		return nil
	}
}

func TestMutateCommitsAndBumpsVersion(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestStateService(repo, &fakeAuth{})

	snap, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "123"}, addTeamMutator("Orły"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	require.Len(t, snap.State.Teams, 1)
	assert.Equal(t, "Orły", snap.State.Teams[0].Name)
}

func TestMutateRetriesOnVersionConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.conflicts = 2
	svc := newTestStateService(repo, &fakeAuth{})

	calls := 0
	snap, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "123"}, func(st *models.TournamentState) error {
		calls++
		return addTeamMutator("Orły")(st)
	})
	require.NoError(t, err)
	// Two lost races, one commit: the mutator ran fresh each time and only
	// the final application is visible.
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, repo.fetchCalls)
	require.Len(t, snap.State.Teams, 1)
}

func TestMutateSurfacesConflictAfterRetryBudget(t *testing.T) {
	repo := newFakeRepo()
	repo.conflicts = 100
	svc := newTestStateService(repo, &fakeAuth{})

	_, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "123"}, addTeamMutator("Orły"))
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)
	assert.Equal(t, DefaultMaxRetries+1, repo.updateCalls)
}

func TestMutateAuthFailureIsNotRetried(t *testing.T) {
	repo := newFakeRepo()
	auth := &fakeAuth{err: ErrInvalidPin}
	svc := newTestStateService(repo, auth)

	_, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "bad"}, addTeamMutator("Orły"))
	assert.ErrorIs(t, err, ErrInvalidPin)
	assert.Equal(t, 1, auth.calls)
	assert.Zero(t, repo.fetchCalls)
}

func TestMutateMutatorErrorAbortsWithoutWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestStateService(repo, &fakeAuth{})

	boom := errors.New("boom")
	_, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "123"}, func(st *models.TournamentState) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, repo.updateCalls)
	assert.Equal(t, int64(1), repo.version)
}

func TestMutateRequiresSlug(t *testing.T) {
	svc := newTestStateService(newFakeRepo(), &fakeAuth{})
	_, err := svc.Mutate(context.Background(), "", Credential{}, addTeamMutator("Orły"))
	assert.ErrorIs(t, err, ErrSlugRequired)
}

func TestMutatorNeverAliasesTheSnapshot(t *testing.T) {
	repo := newFakeRepo()
	repo.state.Teams = []models.Team{{ID: "t1", Name: "Orły", Group: "A"}}
	svc := newTestStateService(repo, &fakeAuth{})

	before := repo.state
	_, err := svc.Mutate(context.Background(), "cup", Credential{Pin: "123"}, func(st *models.TournamentState) error {
		st.Teams[0].Name = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Orły", before.Teams[0].Name)
}

func TestFetchReturnsCurrentSnapshot(t *testing.T) {
	repo := newFakeRepo()
	repo.state.Teams = []models.Team{{ID: "t1", Name: "Orły", Group: "A"}}
	svc := newTestStateService(repo, &fakeAuth{})

	snap, err := svc.Fetch(context.Background(), "cup")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	require.Len(t, snap.State.Teams, 1)
}
