package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message the server pushes to clients.
// Data carries the type-specific payload.
type Event struct {
	ID        string          `json:"id"`
	Room      string          `json:"room"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Type identifies a room event on the wire.
type Type string

const (
	TypeSystemMessage  Type = "system_message"
	TypeChatMessage    Type = "chat_message"
	TypePrivateMessage Type = "private_message"
	TypeUserList       Type = "user_list"
	TypeUserCount      Type = "user_count"
	TypeNicknameError  Type = "nickname_error"

	TypeQuizStarted     Type = "quiz_started"
	TypeQuizInfo        Type = "quiz_info"
	TypeQuizEnded       Type = "quiz_ended"
	TypeQuizError       Type = "quiz_error"
	TypeAnswerSubmitted Type = "answer_submitted"

	TypeVoteStarted Type = "vote_started"
	TypeVoteInfo    Type = "vote_info"
	TypeVoteUpdate  Type = "vote_update"
	TypeVoteEnded   Type = "vote_ended"
	TypeVoteError   Type = "vote_error"
)

// New builds an event envelope around a payload.
func New(room string, t Type, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Room:      room,
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
