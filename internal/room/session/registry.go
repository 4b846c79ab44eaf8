package session

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

// anonymousName is the display-name fallback for participants without a
// registered nickname.
const anonymousName = "anonymous"

// Emitter delivers registry output. Broadcast reaches every participant in
// the room; Send reaches exactly one. The hub implements this over
// WebSocket connections.
type Emitter interface {
	Broadcast(t events.Type, payload any)
	Send(participantID string, t events.Type, payload any)
}

// Registry owns the single active-session slot per kind for one room and
// routes every trigger (start, submit, end, disconnect, deadline expiry)
// to the right session. At most one of quiz/vote is active at a time.
//
// All mutation is serialized through the registry mutex; timer goroutines
// re-enter through guarded methods that verify instance identity and
// activity before acting, so a stray fire after resolution is a no-op.
type Registry struct {
	room    string
	clock   Clock
	emitter Emitter

	mu   sync.Mutex
	quiz *QuizSession
	vote *VoteSession
}

// NewRegistry creates the session registry for one room.
func NewRegistry(room string, clock Clock, emitter Emitter) *Registry {
	return &Registry{
		room:    room,
		clock:   clock,
		emitter: emitter,
	}
}

// ActiveKind reports which session kind is live: "quiz", "vote", or "".
func (r *Registry) ActiveKind() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.quiz != nil && r.quiz.active:
		return "quiz"
	case r.vote != nil && r.vote.active:
		return "vote"
	default:
		return ""
	}
}

func displayName(nickname string) string {
	if nickname == "" {
		return anonymousName
	}
	return nickname
}

// ===== quiz triggers =====

// StartQuiz handles the start-quiz trigger. Duration arrives as a count of
// seconds and must be positive; the quiz has no default.
func (r *Registry) StartQuiz(participantID, nickname string, req events.StartQuizRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.quiz != nil && r.quiz.active {
		r.emitter.Send(participantID, events.TypeQuizError, ErrQuizActive.Error())
		return
	}
	if r.vote != nil && r.vote.active {
		r.emitter.Send(participantID, events.TypeQuizError, ErrQuizBlocked.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" || req.DurationSec <= 0 {
		r.emitter.Send(participantID, events.TypeQuizError, ErrInvalidQuiz.Error())
		return
	}

	name := displayName(nickname)
	now := r.clock.Now()
	duration := time.Duration(req.DurationSec) * time.Second
	q := newQuizSession(participantID, name, now, duration, req.Question, req.Answer)
	r.quiz = q

	r.emitter.Broadcast(events.TypeQuizStarted, events.QuizStartedPayload{
		Question:   q.question,
		DurationMS: duration.Milliseconds(),
		StartTime:  now.UnixMilli(),
	})
	r.emitter.Broadcast(events.TypeSystemMessage,
		fmt.Sprintf("%s started a quiz. Submit your answer with /answer.", name))
	r.emitter.Broadcast(events.TypeSystemMessage,
		fmt.Sprintf("Question: %s / time limit: %ds", q.question, req.DurationSec))

	r.armTimers(&q.lifecycle, quizCountdownMessage, func() { r.expireQuiz(q) })

	log.Info().
		Str("room", r.room).
		Str("started_by", participantID).
		Dur("duration", duration).
		Msg("quiz started")
}

// SubmitAnswer handles the submit-answer trigger. The submission is
// upserted; the last write per participant wins.
func (r *Registry) SubmitAnswer(participantID, nickname, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.quiz
	if q == nil || !q.active {
		r.emitter.Send(participantID, events.TypeQuizError, ErrNoActiveQuiz.Error())
		return
	}
	if answer == "" {
		r.emitter.Send(participantID, events.TypeQuizError, ErrEmptyAnswer.Error())
		return
	}

	q.submit(participantID, displayName(nickname), answer)
	r.emitter.Send(participantID, events.TypeAnswerSubmitted, answer)
}

// EndQuiz handles the manual end-quiz trigger. Only the quiz owner may end
// it; ending an already-resolved quiz is a no-op.
func (r *Registry) EndQuiz(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.quiz
	if q == nil || !q.active {
		return
	}
	if participantID != q.startedBy {
		r.emitter.Send(participantID, events.TypeQuizError, ErrNoPermission.Error())
		return
	}
	r.endQuizLocked(q)
}

// expireQuiz is the deadline trigger, self-authorized as the owner. The
// identity and activity guards make it a no-op when a manual end won the
// race.
func (r *Registry) expireQuiz(q *QuizSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.quiz != q || !q.active {
		return
	}
	r.endQuizLocked(q)
}

func (r *Registry) endQuizLocked(q *QuizSession) {
	q.resolve()
	result := q.tabulate()

	r.emitter.Broadcast(events.TypeQuizEnded, events.QuizEndedPayload{
		Answer: q.answer,
		Result: result,
	})

	var correct, incorrect []events.QuizResultEntry
	for _, entry := range result {
		if entry.IsCorrect {
			correct = append(correct, entry)
		} else {
			incorrect = append(incorrect, entry)
		}
	}
	if len(correct) > 0 {
		pick := correct[rand.Intn(len(correct))]
		r.emitter.Broadcast(events.TypeSystemMessage,
			fmt.Sprintf("%s and %d others got it right!", pick.Nickname, len(correct)-1))
	}
	if len(incorrect) > 0 {
		pick := incorrect[rand.Intn(len(incorrect))]
		r.emitter.Broadcast(events.TypeSystemMessage,
			fmt.Sprintf("%s wrote %q!", pick.Nickname, pick.Submitted))
	}

	r.quiz = nil

	log.Info().
		Str("room", r.room).
		Int("submissions", len(result)).
		Int("correct", len(correct)).
		Msg("quiz ended")
}

// ===== vote triggers =====

// StartVote handles the start-vote trigger. A non-positive duration falls
// back to the 180s default.
func (r *Registry) StartVote(participantID, nickname string, req events.StartVoteRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vote != nil && r.vote.active {
		r.emitter.Send(participantID, events.TypeVoteError, ErrVoteActive.Error())
		return
	}
	if r.quiz != nil && r.quiz.active {
		r.emitter.Send(participantID, events.TypeVoteError, ErrVoteBlocked.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" || len(req.Options) < 2 {
		r.emitter.Send(participantID, events.TypeVoteError, ErrInvalidVote.Error())
		return
	}

	name := displayName(nickname)
	now := r.clock.Now()
	duration := DefaultVoteDuration
	if req.DurationMS > 0 {
		duration = time.Duration(req.DurationMS) * time.Millisecond
	}
	v := newVoteSession(participantID, name, now, duration, req)
	r.vote = v

	r.emitter.Broadcast(events.TypeVoteStarted, events.VoteStartedPayload{
		Question:       v.question,
		Options:        v.options,
		AllowMultiple:  v.allowMultiple,
		RevealOnSubmit: v.revealOnSubmit,
		StartTime:      now.UnixMilli(),
		DurationMS:     duration.Milliseconds(),
		StartedByName:  name,
	})
	r.emitter.Broadcast(events.TypeSystemMessage, voteSummary(
		fmt.Sprintf("%s created a vote.", name), v.question,
		fmt.Sprintf("Time limit: %ds", int(duration/time.Second)), v.options))

	r.armTimers(&v.lifecycle, voteCountdownMessage, func() { r.expireVote(v) })

	log.Info().
		Str("room", r.room).
		Str("started_by", participantID).
		Int("options", len(v.options)).
		Dur("duration", duration).
		Msg("vote started")
}

// SubmitVote handles the submit-vote trigger with an already-normalized
// selection. With revealOnSubmit set, every accepted submission broadcasts
// the live tally.
func (r *Registry) SubmitVote(participantID string, selection []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.vote
	if v == nil || !v.active {
		r.emitter.Send(participantID, events.TypeVoteError, ErrNoActiveVote.Error())
		return
	}
	if err := v.validateSelection(selection); err != nil {
		r.emitter.Send(participantID, events.TypeVoteError, err.Error())
		return
	}

	v.submit(participantID, selection)

	if v.revealOnSubmit {
		r.emitter.Broadcast(events.TypeVoteUpdate, events.VoteUpdatePayload{
			Question: v.question,
			Result:   v.tally(),
		})
	}
}

// EndVote handles the manual end-vote trigger.
func (r *Registry) EndVote(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.vote
	if v == nil || !v.active {
		return
	}
	if participantID != v.startedBy {
		r.emitter.Send(participantID, events.TypeVoteError, ErrNoPermission.Error())
		return
	}
	r.endVoteLocked(v)
}

// expireVote is the vote deadline trigger, self-authorized as the owner.
func (r *Registry) expireVote(v *VoteSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vote != v || !v.active {
		return
	}
	r.endVoteLocked(v)
}

func (r *Registry) endVoteLocked(v *VoteSession) {
	v.resolve()
	result := v.tally()

	r.emitter.Broadcast(events.TypeVoteEnded, events.VoteEndedPayload{
		Question: v.question,
		Result:   result,
	})

	r.vote = nil

	log.Info().
		Str("room", r.room).
		Int("submissions", len(v.submissions)).
		Msg("vote ended")
}

// ===== shared triggers =====

// HandleDisconnect discards the departing participant's submissions. A
// departing owner additionally resolves their session on the way out; a
// session cannot outlive its owner.
func (r *Registry) HandleDisconnect(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q := r.quiz; q != nil && q.active {
		if participantID == q.startedBy {
			r.endQuizLocked(q)
		} else {
			q.removeParticipant(participantID)
		}
	}
	if v := r.vote; v != nil && v.active {
		if participantID == v.startedBy {
			r.endVoteLocked(v)
		} else {
			v.removeParticipant(participantID)
		}
	}
}

// SendSessionInfo sends a late joiner a directed snapshot of whichever
// session is live, with the remaining time computed against the deadline.
func (r *Registry) SendSessionInfo(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if q := r.quiz; q != nil && q.active {
		r.emitter.Send(participantID, events.TypeSystemMessage,
			fmt.Sprintf("A quiz by %s is in progress. Submit your answer with /answer.", q.startedByName))
		r.emitter.Send(participantID, events.TypeQuizInfo, events.QuizInfoPayload{
			Question:      q.question,
			RemainingSec:  q.remainingSec(now),
			StartedByName: q.startedByName,
		})
	}
	if v := r.vote; v != nil && v.active {
		r.emitter.Send(participantID, events.TypeSystemMessage, voteSummary(
			fmt.Sprintf("A vote by %s is in progress.", v.startedByName), v.question,
			fmt.Sprintf("Remaining: %ds", v.remainingSec(now)), v.options))
		r.emitter.Send(participantID, events.TypeVoteInfo, events.VoteInfoPayload{
			Question:       v.question,
			Options:        v.options,
			AllowMultiple:  v.allowMultiple,
			RevealOnSubmit: v.revealOnSubmit,
			RemainingSec:   v.remainingSec(now),
		})
	}
}

// ===== timer plumbing =====

// armTimers schedules the countdown reminders and the deadline for a
// freshly started session. Each timer gets its own goroutine that either
// fires through a guarded re-entry or observes the session's done channel
// and releases the timer. Resolution cancels everything; the guards are a
// second line against fires already in flight.
func (r *Registry) armTimers(l *lifecycle, message func(sec int) string, expire func()) {
	for _, sec := range countdownMarks {
		wait := l.duration - time.Duration(sec)*time.Second
		if wait < 0 {
			continue
		}
		t := r.clock.NewTimer(wait)
		l.timers = append(l.timers, t)
		go func(sec int, t clockwork.Timer) {
			select {
			case <-t.Chan():
				r.countdownFire(l, message(sec))
			case <-l.done:
				stopAndDrainTimer(t)
			}
		}(sec, t)
	}

	t := r.clock.NewTimer(l.duration)
	l.timers = append(l.timers, t)
	go func() {
		select {
		case <-t.Chan():
			expire()
		case <-l.done:
			stopAndDrainTimer(t)
		}
	}()
}

// countdownFire broadcasts one reminder if the session is still live.
func (r *Registry) countdownFire(l *lifecycle, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !l.active {
		return
	}
	r.emitter.Broadcast(events.TypeSystemMessage, msg)
}

func quizCountdownMessage(sec int) string {
	if sec == 5 {
		return "⏱ 5 seconds left. Submit your answer!"
	}
	return fmt.Sprintf("⏱ %d...", sec)
}

func voteCountdownMessage(sec int) string {
	if sec == 5 {
		return "⏳ 5 seconds left. Closing soon!"
	}
	return fmt.Sprintf("⏳ %d...", sec)
}

// voteSummary renders the human-readable vote announcement.
func voteSummary(header, question, timing string, options []string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(fmt.Sprintf("\nQuestion: %s\n%s\n--- options ---", question, timing))
	for i, option := range options {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, option))
	}
	return b.String()
}
