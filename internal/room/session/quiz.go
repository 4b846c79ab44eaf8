package session

import (
	"strings"
	"time"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

// QuizSession is a single-question quiz with a case- and
// whitespace-insensitive ground truth. Nicknames are snapshotted at entry
// or submission time so renames and departures never leave a result entry
// without a name.
type QuizSession struct {
	lifecycle

	question    string
	answer      string
	submissions map[string]string
	nicknames   map[string]string
}

func newQuizSession(startedBy, startedByName string, start time.Time, duration time.Duration, question, answer string) *QuizSession {
	q := &QuizSession{
		lifecycle:   newLifecycle(startedBy, startedByName, start, duration),
		question:    question,
		answer:      answer,
		submissions: make(map[string]string),
		nicknames:   make(map[string]string),
	}
	q.nicknames[startedBy] = startedByName
	return q
}

// submit records (or overwrites) a participant's answer.
func (q *QuizSession) submit(participantID, nickname, answer string) {
	q.submissions[participantID] = answer
	if _, ok := q.nicknames[participantID]; !ok {
		q.nicknames[participantID] = nickname
	}
}

// removeParticipant discards a departed participant's submission, if any.
func (q *QuizSession) removeParticipant(participantID string) {
	delete(q.submissions, participantID)
}

// normalizeAnswer applies the comparison rules both sides of the grading
// step share.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tabulate grades every recorded submission against the ground truth.
func (q *QuizSession) tabulate() []events.QuizResultEntry {
	want := normalizeAnswer(q.answer)
	result := make([]events.QuizResultEntry, 0, len(q.submissions))
	for id, submitted := range q.submissions {
		nickname := q.nicknames[id]
		if nickname == "" {
			nickname = anonymousName
		}
		result = append(result, events.QuizResultEntry{
			ParticipantID: id,
			Nickname:      nickname,
			Submitted:     submitted,
			IsCorrect:     normalizeAnswer(submitted) == want,
		})
	}
	return result
}
