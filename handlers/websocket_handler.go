package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mkrawczyk/volleypanel/realtime"
	"github.com/mkrawczyk/volleypanel/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Overlays and spectator pages are served from other origins; the feed
	// is read-only so cross-origin subscriptions are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub    *realtime.Hub
	state  services.StateService
	logger *slog.Logger
}

func NewWebsocketHandler(hub *realtime.Hub, state services.StateService, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, state: state, logger: logger}
}

// Subscribe upgrades the connection and joins the tournament's room. The
// current snapshot is queued immediately so a new subscriber renders without
// waiting for the next committed write.
func (h *WebsocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	snap, err := h.state.Fetch(r.Context(), slug)
	if err != nil {
		serviceError(w, h.logger, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("slug", slug), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 16),
		Room: slug,
	}
	h.hub.Register <- client

	initial, err := json.Marshal(realtime.SnapshotMessage{
		Type:      realtime.MessageTypeState,
		Slug:      slug,
		Version:   snap.Version,
		State:     snap.State,
		UpdatedAt: snap.UpdatedAt,
	})
	if err == nil {
		client.Send <- initial
	}

	go client.WritePump()
	go client.ReadPump()
}
