package session

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

// fakeEmitter records everything the registry emits. Target is empty for
// broadcasts.
type fakeEmitter struct {
	mu      sync.Mutex
	emitted []emitted
}

type emitted struct {
	target  string
	typ     events.Type
	payload any
}

func (f *fakeEmitter) Broadcast(t events.Type, payload any) {
	f.record("", t, payload)
}

func (f *fakeEmitter) Send(participantID string, t events.Type, payload any) {
	f.record(participantID, t, payload)
}

func (f *fakeEmitter) record(target string, t events.Type, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, emitted{target: target, typ: t, payload: payload})
}

func (f *fakeEmitter) ofType(t events.Type) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, e := range f.emitted {
		if e.typ == t {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmitter) count(t events.Type) int {
	return len(f.ofType(t))
}

func (f *fakeEmitter) last(t events.Type) (emitted, bool) {
	matches := f.ofType(t)
	if len(matches) == 0 {
		return emitted{}, false
	}
	return matches[len(matches)-1], true
}

func newTestRegistry() (*Registry, *fakeEmitter, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	em := &fakeEmitter{}
	return NewRegistry("lobby", clock, em), em, clock
}

// waitFor polls until cond holds; timer fires are delivered on their own
// goroutines.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func startQuiz(r *Registry, owner string) {
	r.StartQuiz(owner, "owner", events.StartQuizRequest{
		Question:    "2+2?",
		Answer:      "4",
		DurationSec: 60,
	})
}

func startVote(r *Registry, owner string) {
	r.StartVote(owner, "owner", events.StartVoteRequest{
		Question: "Color?",
		Options:  []string{"Red", "Blue", "Green"},
	})
}

func TestCrossExclusion_VoteBlocksQuiz(t *testing.T) {
	r, em, _ := newTestRegistry()

	startVote(r, "o1")
	startQuiz(r, "o2")

	errEvent, ok := em.last(events.TypeQuizError)
	if !ok {
		t.Fatal("expected a directed quiz_error")
	}
	if errEvent.target != "o2" {
		t.Errorf("quiz_error must go to the initiator, got target %q", errEvent.target)
	}
	if errEvent.payload != ErrQuizBlocked.Error() {
		t.Errorf("expected %q, got %v", ErrQuizBlocked.Error(), errEvent.payload)
	}
	if kind := r.ActiveKind(); kind != "vote" {
		t.Errorf("vote must stay active, got %q", kind)
	}
	if em.count(events.TypeQuizStarted) != 0 {
		t.Error("no quiz_started may be broadcast on a rejected start")
	}
}

func TestCrossExclusion_QuizBlocksVote(t *testing.T) {
	r, em, _ := newTestRegistry()

	startQuiz(r, "o1")
	startVote(r, "o2")

	errEvent, ok := em.last(events.TypeVoteError)
	if !ok {
		t.Fatal("expected a directed vote_error")
	}
	if errEvent.payload != ErrVoteBlocked.Error() {
		t.Errorf("expected %q, got %v", ErrVoteBlocked.Error(), errEvent.payload)
	}
	if kind := r.ActiveKind(); kind != "quiz" {
		t.Errorf("quiz must stay active, got %q", kind)
	}
}

func TestSameKindExclusion(t *testing.T) {
	r, em, _ := newTestRegistry()

	startQuiz(r, "o1")
	startQuiz(r, "o2")

	errEvent, ok := em.last(events.TypeQuizError)
	if !ok {
		t.Fatal("expected a directed quiz_error")
	}
	if errEvent.payload != ErrQuizActive.Error() {
		t.Errorf("expected %q, got %v", ErrQuizActive.Error(), errEvent.payload)
	}
	if em.count(events.TypeQuizStarted) != 1 {
		t.Errorf("expected exactly one quiz_started, got %d", em.count(events.TypeQuizStarted))
	}
}

func TestDisconnect_NonParticipantIsNoOp(t *testing.T) {
	r, em, _ := newTestRegistry()

	startVote(r, "owner")
	r.HandleDisconnect("stranger")
	r.HandleDisconnect("stranger")

	if kind := r.ActiveKind(); kind != "vote" {
		t.Errorf("vote must survive unrelated disconnects, got %q", kind)
	}
	if em.count(events.TypeVoteEnded) != 0 {
		t.Error("no vote_ended expected")
	}
}

func TestDisconnect_IdleRegistryIsNoOp(t *testing.T) {
	r, em, _ := newTestRegistry()

	r.HandleDisconnect("anyone")

	if len(em.emitted) != 0 {
		t.Errorf("disconnect with no session must emit nothing, got %d events", len(em.emitted))
	}
}
