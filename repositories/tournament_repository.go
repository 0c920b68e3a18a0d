package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrawczyk/volleypanel/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSlugConflict       = errors.New("tournament slug is already taken")

	// ErrVersionConflict means another writer committed first; the caller
	// should refetch and retry. Kept distinct from auth failures so the
	// mutation coordinator knows which of the two is retryable.
	ErrVersionConflict = errors.New("state version conflict")
)

// StateChannel is the NOTIFY channel every committed write announces on.
const StateChannel = "vp_state_changed"

// StateNotification is the NOTIFY payload. Payloads are capped at 8kB, so
// it carries only the coordinates of the change; listeners refetch the
// document themselves.
type StateNotification struct {
	Slug    string `json:"slug"`
	Version int64  `json:"version"`
}

// StateSnapshot is one committed version of a tournament document.
type StateSnapshot struct {
	TournamentID string
	Version      int64
	State        *models.TournamentState
	UpdatedAt    time.Time
}

// TournamentRepository stores tournaments and their versioned state
// documents. UpdateState is the linearization point: at most one write per
// expected version succeeds.
type TournamentRepository interface {
	Create(ctx context.Context, slug, name, pinHash string) (string, error)
	GetIDBySlug(ctx context.Context, slug string) (string, error)
	GetPinHash(ctx context.Context, slug string) (string, error)
	UpdatePinHash(ctx context.Context, slug, pinHash string) error
	FetchState(ctx context.Context, slug string) (*StateSnapshot, error)
	UpdateState(ctx context.Context, slug string, expectedVersion int64, st *models.TournamentState) (*StateSnapshot, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, slug, name, pinHash string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tournaments (id, slug, name, pin_hash)
		VALUES ($1, $2, $3, $4)`,
		id, slug, name, pinHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrSlugConflict
		}
		return "", fmt.Errorf("failed to insert tournament: %w", err)
	}

	initial, err := json.Marshal(models.NewTournamentState())
	if err != nil {
		return "", fmt.Errorf("failed to serialize initial state: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tournament_states (tournament_id, version, state, updated_at)
		VALUES ($1, 1, $2, now())`,
		id, initial,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert initial state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit tournament creation: %w", err)
	}
	return id, nil
}

func (r *postgresTournamentRepository) GetIDBySlug(ctx context.Context, slug string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM tournaments WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTournamentNotFound
		}
		return "", fmt.Errorf("failed to resolve tournament slug: %w", err)
	}
	return id, nil
}

func (r *postgresTournamentRepository) GetPinHash(ctx context.Context, slug string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT pin_hash FROM tournaments WHERE slug = $1`, slug).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTournamentNotFound
		}
		return "", fmt.Errorf("failed to load pin hash: %w", err)
	}
	return hash, nil
}

func (r *postgresTournamentRepository) UpdatePinHash(ctx context.Context, slug, pinHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tournaments SET pin_hash = $2 WHERE slug = $1`, slug, pinHash)
	if err != nil {
		return fmt.Errorf("failed to update pin hash: %w", err)
	}
	return checkAffectedRows(res, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) FetchState(ctx context.Context, slug string) (*StateSnapshot, error) {
	snap := &StateSnapshot{}
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, s.version, s.state, s.updated_at
		FROM tournaments t
		JOIN tournament_states s ON s.tournament_id = t.id
		WHERE t.slug = $1`,
		slug,
	).Scan(&snap.TournamentID, &snap.Version, &raw, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament state: %w", err)
	}

	snap.State = models.NewTournamentState()
	if err := json.Unmarshal(raw, snap.State); err != nil {
		return nil, fmt.Errorf("failed to decode tournament state: %w", err)
	}
	return snap, nil
}

// UpdateState commits a new document conditioned on the stored version still
// matching expectedVersion, and announces the commit on StateChannel within
// the same transaction so subscribers observe versions in commit order.
func (r *postgresTournamentRepository) UpdateState(ctx context.Context, slug string, expectedVersion int64, st *models.TournamentState) (*StateSnapshot, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize tournament state: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap := &StateSnapshot{State: st}
	err = tx.QueryRowContext(ctx, `
		UPDATE tournament_states s
		SET version = s.version + 1, state = $3, updated_at = now()
		FROM tournaments t
		WHERE t.id = s.tournament_id AND t.slug = $1 AND s.version = $2
		RETURNING t.id, s.version, s.updated_at`,
		slug, expectedVersion, raw,
	).Scan(&snap.TournamentID, &snap.Version, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the tournament is gone or another writer won the race.
			if _, idErr := r.GetIDBySlug(ctx, slug); errors.Is(idErr, ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update tournament state: %w", err)
	}

	payload, err := json.Marshal(StateNotification{Slug: slug, Version: snap.Version})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state notification: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, StateChannel, string(payload)); err != nil {
		return nil, fmt.Errorf("failed to notify state change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit state update: %w", err)
	}
	return snap, nil
}
