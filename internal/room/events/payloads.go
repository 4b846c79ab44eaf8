package events

// QuizStartedPayload announces a new quiz to the room.
type QuizStartedPayload struct {
	Question   string `json:"question"`
	DurationMS int64  `json:"duration_ms"`
	StartTime  int64  `json:"start_time"` // unix milliseconds
}

// QuizInfoPayload is sent directly to a late joiner while a quiz is live.
type QuizInfoPayload struct {
	Question      string `json:"question"`
	RemainingSec  int    `json:"remaining_sec"`
	StartedByName string `json:"started_by_name"`
}

// QuizResultEntry is one participant's line in the final quiz breakdown.
type QuizResultEntry struct {
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Submitted     string `json:"submitted"`
	IsCorrect     bool   `json:"is_correct"`
}

// QuizEndedPayload carries the ground truth and the full per-participant
// breakdown.
type QuizEndedPayload struct {
	Answer string            `json:"answer"`
	Result []QuizResultEntry `json:"result"`
}

// VoteStartedPayload announces a new vote to the room.
type VoteStartedPayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	AllowMultiple  bool     `json:"allow_multiple"`
	RevealOnSubmit bool     `json:"reveal_on_submit"`
	StartTime      int64    `json:"start_time"` // unix milliseconds
	DurationMS     int64    `json:"duration_ms"`
	StartedByName  string   `json:"started_by_name"`
}

// VoteInfoPayload is sent directly to a late joiner while a vote is live.
type VoteInfoPayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	AllowMultiple  bool     `json:"allow_multiple"`
	RevealOnSubmit bool     `json:"reveal_on_submit"`
	RemainingSec   int      `json:"remaining_sec"`
}

// VoteCount is one option's tally, emitted in option order.
type VoteCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// VoteUpdatePayload carries the live tally while a vote is running.
type VoteUpdatePayload struct {
	Question string      `json:"question"`
	Result   []VoteCount `json:"result"`
}

// VoteEndedPayload carries the final tally.
type VoteEndedPayload struct {
	Question string      `json:"question"`
	Result   []VoteCount `json:"result"`
}

// ChatMessagePayload is a relayed room chat line.
type ChatMessagePayload struct {
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
	Time     string `json:"time"` // HH:MM, server local
}

// PrivateMessagePayload is a whisper delivered to a single participant.
type PrivateMessagePayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// NicknameErrorPayload reports a rejected nickname and which flow it came
// from ("join" or "change").
type NicknameErrorPayload struct {
	Msg    string `json:"msg"`
	Source string `json:"source"`
}
