package session

import (
	"testing"
	"time"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

func TestStartVote_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  events.StartVoteRequest
	}{
		{"empty question", events.StartVoteRequest{Question: " ", Options: []string{"A", "B"}}},
		{"one option", events.StartVoteRequest{Question: "Color?", Options: []string{"Red"}}},
		{"no options", events.StartVoteRequest{Question: "Color?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, em, _ := newTestRegistry()
			r.StartVote("owner", "owner", tt.req)

			errEvent, ok := em.last(events.TypeVoteError)
			if !ok {
				t.Fatal("expected a directed vote_error")
			}
			if errEvent.payload != ErrInvalidVote.Error() {
				t.Errorf("expected %q, got %v", ErrInvalidVote.Error(), errEvent.payload)
			}
			if r.ActiveKind() != "" {
				t.Error("no session may become active on a rejected start")
			}
		})
	}
}

func TestVote_DefaultDuration(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	started, ok := em.last(events.TypeVoteStarted)
	if !ok {
		t.Fatal("expected vote_started")
	}
	payload := started.payload.(events.VoteStartedPayload)
	if payload.DurationMS != 180000 {
		t.Errorf("expected 180000ms default duration, got %d", payload.DurationMS)
	}
}

func TestVote_MultiSelectTally(t *testing.T) {
	r, em, _ := newTestRegistry()
	r.StartVote("owner", "owner", events.StartVoteRequest{
		Question:      "Color?",
		Options:       []string{"Red", "Blue", "Green"},
		AllowMultiple: true,
	})

	r.SubmitVote("p1", []int{0, 1})
	r.SubmitVote("p2", []int{1})
	r.EndVote("owner")

	ended, ok := em.last(events.TypeVoteEnded)
	if !ok {
		t.Fatal("expected vote_ended")
	}
	payload := ended.payload.(events.VoteEndedPayload)
	want := []events.VoteCount{{Option: "Red", Count: 1}, {Option: "Blue", Count: 2}, {Option: "Green", Count: 0}}
	if len(payload.Result) != len(want) {
		t.Fatalf("expected %d counts, got %d", len(want), len(payload.Result))
	}
	for i, w := range want {
		if payload.Result[i] != w {
			t.Errorf("result[%d]: expected %+v, got %+v", i, w, payload.Result[i])
		}
	}
}

func TestVote_SingleChoiceRejectsMultipleIndices(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner") // allowMultiple=false

	r.SubmitVote("p1", []int{0, 1})

	errEvent, ok := em.last(events.TypeVoteError)
	if !ok || errEvent.payload != ErrSingleChoice.Error() {
		t.Fatalf("expected %q", ErrSingleChoice.Error())
	}

	r.EndVote("owner")
	ended, _ := em.last(events.TypeVoteEnded)
	for _, count := range ended.payload.(events.VoteEndedPayload).Result {
		if count.Count != 0 {
			t.Errorf("rejected submission must not be counted: %+v", count)
		}
	}
}

func TestVote_SelectionValidation(t *testing.T) {
	tests := []struct {
		name      string
		selection []int
		wantErr   error
	}{
		{"empty", []int{}, ErrEmptySelection},
		{"negative index", []int{-1}, ErrInvalidOption},
		{"index past options", []int{3}, ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, em, _ := newTestRegistry()
			startVote(r, "owner")

			r.SubmitVote("p1", tt.selection)

			errEvent, ok := em.last(events.TypeVoteError)
			if !ok || errEvent.payload != tt.wantErr.Error() {
				t.Fatalf("expected %q, got %v", tt.wantErr.Error(), errEvent.payload)
			}
		})
	}
}

func TestVote_SubmitWithoutSessionRejected(t *testing.T) {
	r, em, _ := newTestRegistry()

	r.SubmitVote("p1", []int{0})

	errEvent, ok := em.last(events.TypeVoteError)
	if !ok || errEvent.payload != ErrNoActiveVote.Error() {
		t.Fatalf("expected %q", ErrNoActiveVote.Error())
	}
}

func TestVote_DisconnectDiscardsSubmission(t *testing.T) {
	r, em, _ := newTestRegistry()
	r.StartVote("owner", "owner", events.StartVoteRequest{
		Question: "Pick", Options: []string{"A", "B"},
	})

	r.SubmitVote("p1", []int{0})
	r.HandleDisconnect("p1")
	r.EndVote("owner")

	ended, _ := em.last(events.TypeVoteEnded)
	payload := ended.payload.(events.VoteEndedPayload)
	for _, count := range payload.Result {
		if count.Count != 0 {
			t.Errorf("expected all-zero tally after submitter disconnect, got %+v", payload.Result)
		}
	}
}

func TestVote_LastWritePerParticipantWins(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	r.SubmitVote("p1", []int{0})
	r.SubmitVote("p1", []int{2})
	r.EndVote("owner")

	ended, _ := em.last(events.TypeVoteEnded)
	payload := ended.payload.(events.VoteEndedPayload)
	if payload.Result[0].Count != 0 || payload.Result[2].Count != 1 {
		t.Errorf("last selection must win, got %+v", payload.Result)
	}
}

func TestVote_RevealOnSubmitBroadcastsLiveTally(t *testing.T) {
	r, em, _ := newTestRegistry()
	r.StartVote("owner", "owner", events.StartVoteRequest{
		Question:       "Color?",
		Options:        []string{"Red", "Blue"},
		RevealOnSubmit: true,
	})

	r.SubmitVote("p1", []int{1})

	update, ok := em.last(events.TypeVoteUpdate)
	if !ok {
		t.Fatal("expected vote_update after submission with reveal_on_submit")
	}
	payload := update.payload.(events.VoteUpdatePayload)
	if payload.Result[1].Count != 1 {
		t.Errorf("live tally must include the new submission, got %+v", payload.Result)
	}
}

func TestVote_NoRevealByDefault(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	r.SubmitVote("p1", []int{0})

	if em.count(events.TypeVoteUpdate) != 0 {
		t.Error("vote_update must not be broadcast without reveal_on_submit")
	}
}

func TestEndVote_PermissionDenied(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	r.EndVote("intruder")

	errEvent, ok := em.last(events.TypeVoteError)
	if !ok || errEvent.payload != ErrNoPermission.Error() {
		t.Fatalf("expected %q", ErrNoPermission.Error())
	}
	if r.ActiveKind() != "vote" {
		t.Error("vote must remain active after a denied end")
	}
}

func TestEndVote_Idempotent(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	r.EndVote("owner")
	r.EndVote("owner")

	if n := em.count(events.TypeVoteEnded); n != 1 {
		t.Errorf("expected exactly one vote_ended, got %d", n)
	}
}

func TestVote_OwnerDisconnectResolves(t *testing.T) {
	r, em, _ := newTestRegistry()
	startVote(r, "owner")

	r.HandleDisconnect("owner")

	if em.count(events.TypeVoteEnded) != 1 {
		t.Fatal("owner disconnect must resolve the vote")
	}
	if r.ActiveKind() != "" {
		t.Error("room must be idle after owner disconnect")
	}
}

func TestVote_DeadlineAutoResolves(t *testing.T) {
	r, em, clock := newTestRegistry()
	r.StartVote("owner", "owner", events.StartVoteRequest{
		Question:   "Pick",
		Options:    []string{"A", "B"},
		DurationMS: 10000,
	})
	r.SubmitVote("p1", []int{1})

	clock.Advance(10 * time.Second)

	waitFor(t, func() bool { return em.count(events.TypeVoteEnded) == 1 })

	ended, _ := em.last(events.TypeVoteEnded)
	payload := ended.payload.(events.VoteEndedPayload)
	if payload.Result[1].Count != 1 {
		t.Errorf("auto-resolution must tally submissions, got %+v", payload.Result)
	}
	if r.ActiveKind() != "" {
		t.Error("room must be idle after auto-resolution")
	}
}

func TestVote_InfoSnapshot(t *testing.T) {
	r, em, clock := newTestRegistry()
	r.StartVote("owner", "pollster", events.StartVoteRequest{
		Question:   "Pick",
		Options:    []string{"A", "B"},
		DurationMS: 60000,
	})

	clock.Advance(45 * time.Second)
	r.SendSessionInfo("late")

	info, ok := em.last(events.TypeVoteInfo)
	if !ok {
		t.Fatal("expected vote_info for late joiner")
	}
	if info.target != "late" {
		t.Errorf("vote_info must be directed, got target %q", info.target)
	}
	payload := info.payload.(events.VoteInfoPayload)
	if payload.RemainingSec != 15 {
		t.Errorf("expected 15s remaining, got %d", payload.RemainingSec)
	}
	if len(payload.Options) != 2 {
		t.Errorf("snapshot must carry the options, got %+v", payload.Options)
	}
}
