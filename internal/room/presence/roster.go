package presence

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNicknameTaken means another participant already holds the name.
	ErrNicknameTaken = errors.New("nickname is already in use")
	// ErrNotJoined means the participant has no registered nickname yet.
	ErrNotJoined = errors.New("participant has not set a nickname")
)

// Roster tracks which participant holds which nickname in one room.
// Nicknames are unique per room; a participant may connect without one and
// register later.
type Roster struct {
	mu    sync.RWMutex
	names map[string]string // participant id -> nickname
	taken map[string]string // nickname -> participant id
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		names: make(map[string]string),
		taken: make(map[string]string),
	}
}

// Join registers a nickname for a participant.
func (r *Roster) Join(participantID, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.taken[nickname]; exists {
		return ErrNicknameTaken
	}
	r.names[participantID] = nickname
	r.taken[nickname] = participantID
	return nil
}

// Rename changes a participant's nickname and returns the old one.
func (r *Roster) Rename(participantID, nickname string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, joined := r.names[participantID]
	if !joined {
		return "", ErrNotJoined
	}
	if holder, exists := r.taken[nickname]; exists && holder != participantID {
		return "", ErrNicknameTaken
	}
	delete(r.taken, old)
	r.names[participantID] = nickname
	r.taken[nickname] = participantID
	return old, nil
}

// Leave removes a participant and returns the nickname they held.
// Removing an unknown participant is a no-op.
func (r *Roster) Leave(participantID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nickname, joined := r.names[participantID]
	if !joined {
		return "", false
	}
	delete(r.names, participantID)
	delete(r.taken, nickname)
	return nickname, true
}

// Name looks up a participant's nickname.
func (r *Roster) Name(participantID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nickname, ok := r.names[participantID]
	return nickname, ok
}

// Resolve looks up the participant holding a nickname.
func (r *Roster) Resolve(nickname string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.taken[nickname]
	return id, ok
}

// List returns all registered nicknames, sorted.
func (r *Roster) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nicknames := make([]string, 0, len(r.taken))
	for nickname := range r.taken {
		nicknames = append(nicknames, nickname)
	}
	sort.Strings(nicknames)
	return nicknames
}

// Count reports the number of registered participants.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
