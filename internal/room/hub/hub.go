package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/roomtalk/roomtalk/internal/room/events"
	"github.com/roomtalk/roomtalk/internal/room/presence"
	"github.com/roomtalk/roomtalk/internal/room/session"
)

// Config holds configuration for WebSocket connections.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// EventSink receives a copy of every room-wide event, e.g. for mirroring
// onto a message bus. Directed events are not mirrored.
type EventSink interface {
	Publish(ctx context.Context, event *events.Event) error
}

// Hub owns every room and fans room events out to their connections.
type Hub struct {
	config   Config
	upgrader websocket.Upgrader
	clock    session.Clock
	sink     EventSink // optional

	mu    sync.RWMutex
	rooms map[string]*Room

	broadcastCh chan broadcastMessage
}

type broadcastMessage struct {
	room     *Room
	event    *events.Event
	targetID string // if set, only send to this participant
}

// New creates a hub. sink may be nil.
func New(config Config, clock session.Clock, sink EventSink) *Hub {
	return &Hub{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		clock:       clock,
		sink:        sink,
		rooms:       make(map[string]*Room),
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages. It blocks until the context
// is cancelled.
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("hub shutting down")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(ctx, message)
		}
	}
}

// join returns the named room with conn registered into it, creating the
// room on first use. Registration happens under the hub lock so a
// concurrent removeRoomIfEmpty cannot drop the room between lookup and
// register. Each room gets its own roster and session registry.
func (h *Hub) join(id string, conn *Connection) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[id]
	if !exists {
		room = &Room{
			id:          id,
			hub:         h,
			connections: make(map[*Connection]bool),
			byID:        make(map[string]*Connection),
			roster:      presence.NewRoster(),
		}
		room.registry = session.NewRegistry(id, h.clock, room)
		h.rooms[id] = room
		log.Info().Str("room", id).Msg("room created")
	}

	conn.room = room
	room.register(conn)
	return room
}

// removeRoomIfEmpty drops a room once its last connection is gone. The
// identity check keeps a stale cleanup from deleting a room that was
// already removed and recreated under the same id.
func (h *Hub) removeRoomIfEmpty(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room.id] != room {
		return
	}

	room.mu.RLock()
	empty := len(room.connections) == 0
	room.mu.RUnlock()

	if empty {
		delete(h.rooms, room.id)
		log.Info().Str("room", room.id).Msg("room removed")
	}
}

// enqueue hands an event to the fan-out loop, dropping it if the loop is
// saturated.
func (h *Hub) enqueue(msg broadcastMessage) {
	select {
	case h.broadcastCh <- msg:
	default:
		log.Warn().
			Str("room", msg.room.id).
			Str("event_type", string(msg.event.Type)).
			Msg("broadcast channel full, dropping message")
	}
}

// handleBroadcast delivers one event to its target connections and mirrors
// room-wide events to the sink.
func (h *Hub) handleBroadcast(ctx context.Context, message broadcastMessage) {
	room := message.room

	data, err := json.Marshal(message.event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the room's read lock. unregister closes Send only
	// under the write lock, so a send can never hit a closed channel. The
	// sends are non-blocking, so the lock is held only briefly; slow
	// connections are torn down after it is released.
	room.mu.RLock()
	var slow []*Connection
	if message.targetID != "" {
		if conn, exists := room.byID[message.targetID]; exists {
			select {
			case conn.Send <- data:
			default:
				slow = append(slow, conn)
			}
		}
	} else {
		for conn := range room.connections {
			select {
			case conn.Send <- data:
			default:
				slow = append(slow, conn)
			}
		}
	}
	room.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("room", room.id).
			Msg("connection send buffer full, closing connection")
		room.unregister(conn)
		conn.Conn.Close()
	}

	if message.targetID == "" && h.sink != nil {
		if err := h.sink.Publish(ctx, message.event); err != nil {
			log.Error().
				Err(err).
				Str("event_type", string(message.event.Type)).
				Msg("failed to mirror event to sink")
		}
	}
}

// Stats returns per-room connection counts and live session kinds.
func (h *Hub) Stats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	roomStats := make(map[string]any)
	for id, room := range h.rooms {
		room.mu.RLock()
		count := len(room.connections)
		room.mu.RUnlock()
		total += count
		roomStats[id] = map[string]any{
			"connections":    count,
			"active_session": room.registry.ActiveKind(),
		}
	}
	return map[string]any{
		"total_connections": total,
		"active_rooms":      len(h.rooms),
		"rooms":             roomStats,
	}
}
