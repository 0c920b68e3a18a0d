package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/mkrawczyk/volleypanel/repositories"
)

const (
	listenerMinReconnect = 2 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// StateFeed bridges the store's NOTIFY channel to the websocket hub. The
// notification carries only slug and version (payloads are size-capped), so
// the feed refetches the full document before broadcasting.
type StateFeed struct {
	dsn    string
	repo   repositories.TournamentRepository
	hub    *Hub
	logger *slog.Logger
}

func NewStateFeed(dsn string, repo repositories.TournamentRepository, hub *Hub, logger *slog.Logger) *StateFeed {
	return &StateFeed{dsn: dsn, repo: repo, hub: hub, logger: logger}
}

// Run listens for committed writes until the context is cancelled. The
// pq.Listener reconnects on its own; a lost connection at worst delays
// snapshots, it never loses the store as source of truth.
func (f *StateFeed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			f.logger.Warn("state listener event", slog.Int("event", int(ev)), slog.Any("error", err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(repositories.StateChannel); err != nil {
		return err
	}
	f.logger.Info("state feed listening", slog.String("channel", repositories.StateChannel))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case n := <-listener.Notify:
			if n == nil {
				// Reconnect; listeners may have missed notifications.
				continue
			}
			f.relay(ctx, n.Extra)

		case <-time.After(listenerPingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					f.logger.Warn("state listener ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

func (f *StateFeed) relay(ctx context.Context, payload string) {
	var note repositories.StateNotification
	if err := json.Unmarshal([]byte(payload), &note); err != nil {
		f.logger.Error("malformed state notification", slog.String("payload", payload), slog.Any("error", err))
		return
	}

	snap, err := f.repo.FetchState(ctx, note.Slug)
	if err != nil {
		f.logger.Error("failed to fetch state for broadcast", slog.String("slug", note.Slug), slog.Any("error", err))
		return
	}

	f.hub.BroadcastToRoom(note.Slug, SnapshotMessage{
		Type:      MessageTypeState,
		Slug:      note.Slug,
		Version:   snap.Version,
		State:     snap.State,
		UpdatedAt: snap.UpdatedAt,
	})
}
