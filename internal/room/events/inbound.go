package events

import (
	"encoding/json"
	"fmt"
)

// ClientMessage is the envelope for every message a client sends.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client message types.
const (
	ClientSetNickname    = "set_nickname"
	ClientChangeNickname = "change_nickname"
	ClientChatMessage    = "chat_message"
	ClientStartQuiz      = "start_quiz"
	ClientSubmitAnswer   = "submit_answer"
	ClientEndQuiz        = "end_quiz"
	ClientStartVote      = "start_vote"
	ClientSubmitVote     = "submit_vote"
	ClientEndVote        = "end_vote"
)

// StartQuizRequest is the structured form of the start-quiz trigger. The
// free-text /quiz command parses into the same shape.
type StartQuizRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	DurationSec int    `json:"duration_sec"`
}

// StartVoteRequest is the structured form of the start-vote trigger.
// DurationMS of zero means the 180s default.
type StartVoteRequest struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	AllowMultiple  bool     `json:"allow_multiple"`
	RevealOnSubmit bool     `json:"reveal_on_submit"`
	DurationMS     int64    `json:"duration_ms"`
}

// Selection is a vote submission normalized to an ordered index set.
// Clients may send either a bare index or an array of indices; both decode
// into the same representation before they reach the session core.
type Selection []int

func (s *Selection) UnmarshalJSON(b []byte) error {
	var single int
	if err := json.Unmarshal(b, &single); err == nil {
		*s = Selection{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("selection must be an index or a list of indices")
	}
	*s = Selection(many)
	return nil
}
