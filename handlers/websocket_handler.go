package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/golfcompete/golfcompete/leaderboard"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open, so the websocket endpoint follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *leaderboard.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *leaderboard.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// EventLeaderboard upgrades the connection and subscribes the viewer to the
// event's score feed.
func (h *WebSocketHandler) EventLeaderboard(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &leaderboard.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: fmt.Sprintf("event-%d", eventID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
