package hub

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/roomtalk/roomtalk/internal/room/events"
	"github.com/roomtalk/roomtalk/internal/room/presence"
	"github.com/roomtalk/roomtalk/internal/room/session"
)

// Room is one chat room: its connections, nickname roster, and session
// registry. Room implements session.Emitter, so the registry's output
// flows back through the hub's fan-out loop.
type Room struct {
	id  string
	hub *Hub

	mu          sync.RWMutex
	connections map[*Connection]bool
	byID        map[string]*Connection // participant id -> connection

	roster   *presence.Roster
	registry *session.Registry
}

// Broadcast queues an event for every connection in the room.
func (r *Room) Broadcast(t events.Type, payload any) {
	event, err := events.New(r.id, t, payload)
	if err != nil {
		log.Error().Err(err).Str("room", r.id).Msg("failed to build broadcast event")
		return
	}
	r.hub.enqueue(broadcastMessage{room: r, event: event})
}

// Send queues an event for a single participant.
func (r *Room) Send(participantID string, t events.Type, payload any) {
	event, err := events.New(r.id, t, payload)
	if err != nil {
		log.Error().Err(err).Str("room", r.id).Msg("failed to build directed event")
		return
	}
	r.hub.enqueue(broadcastMessage{room: r, event: event, targetID: participantID})
}

// register adds a connection to the room.
func (r *Room) register(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn] = true
	r.byID[conn.ID] = conn

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room", r.id).
		Int("total_connections", len(r.connections)).
		Msg("connection registered")
}

// unregister removes a connection from the room. Safe to call twice; the
// second call is a no-op. Send is closed only here, under the write lock,
// which is what lets the fan-out loop send under the read lock without
// ever racing the close.
func (r *Room) unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[conn]; !exists {
		return
	}
	delete(r.connections, conn)
	delete(r.byID, conn.ID)
	close(conn.Send)

	log.Info().
		Str("connection_id", conn.ID).
		Str("room", r.id).
		Msg("connection unregistered")
}

// handleDisconnect runs the full departure sequence for a connection:
// session cleanup first, then presence, then the connection itself.
func (r *Room) handleDisconnect(conn *Connection) {
	r.registry.HandleDisconnect(conn.ID)

	if nickname, joined := r.roster.Leave(conn.ID); joined {
		r.Broadcast(events.TypeSystemMessage, fmt.Sprintf("%s left.", nickname))
		r.broadcastRosterState()
	}

	r.unregister(conn)
	r.hub.removeRoomIfEmpty(r)
}

// broadcastRosterState pushes the current user count and sorted user list
// to the whole room.
func (r *Room) broadcastRosterState() {
	r.Broadcast(events.TypeUserCount, r.roster.Count())
	r.Broadcast(events.TypeUserList, r.roster.List())
}
