package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/sportsfest/registration-system/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin once the frontend domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeLeaderboard streams ranked standings to the festival scoreboard page.
func (h *WebSocketHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, live.RoomLeaderboard)
}

// ServeCalendar streams schedule changes.
func (h *WebSocketHandler) ServeCalendar(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, live.RoomCalendar)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
