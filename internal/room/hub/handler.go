package hub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// defaultRoom hosts connections that do not name a room.
const defaultRoom = "lobby"

// HandleRoomConnection upgrades an HTTP request to a WebSocket and joins
// the named room. A nickname query parameter registers immediately;
// clients may also register later with a set_nickname message.
func (h *Hub) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = defaultRoom
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	conn := &Connection{
		ID:          uuid.New().String(),
		Conn:        wsConn,
		Send:        make(chan []byte, 256),
		hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	room := h.join(roomID, conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.ID).
		Str("room", roomID).
		Msg("WebSocket connection established")

	if nickname := r.URL.Query().Get("nickname"); nickname != "" {
		room.handleSetNickname(conn, nickname)
	}
}

// HandleStats reports connection and session statistics as JSON.
func (h *Hub) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

// RegisterRoutes registers the hub's HTTP routes.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleRoomConnection)
	mux.HandleFunc("/stats", h.HandleStats)
}
