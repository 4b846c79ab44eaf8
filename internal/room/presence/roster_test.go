package presence

import (
	"errors"
	"reflect"
	"testing"
)

func TestRoster_JoinRejectsDuplicateNickname(t *testing.T) {
	r := NewRoster()

	if err := r.Join("c1", "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Join("c2", "alice"); !errors.Is(err, ErrNicknameTaken) {
		t.Fatalf("expected ErrNicknameTaken, got %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("rejected join must not register, count = %d", r.Count())
	}
}

func TestRoster_Rename(t *testing.T) {
	r := NewRoster()
	r.Join("c1", "alice")
	r.Join("c2", "bob")

	old, err := r.Rename("c1", "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old != "alice" {
		t.Errorf("expected old nickname alice, got %q", old)
	}
	if _, ok := r.Resolve("alice"); ok {
		t.Error("old nickname must be released")
	}
	if id, ok := r.Resolve("carol"); !ok || id != "c1" {
		t.Error("new nickname must resolve to the participant")
	}

	if _, err := r.Rename("c2", "carol"); !errors.Is(err, ErrNicknameTaken) {
		t.Errorf("expected ErrNicknameTaken, got %v", err)
	}
	if _, err := r.Rename("ghost", "dave"); !errors.Is(err, ErrNotJoined) {
		t.Errorf("expected ErrNotJoined, got %v", err)
	}
}

func TestRoster_LeaveIsIdempotent(t *testing.T) {
	r := NewRoster()
	r.Join("c1", "alice")

	nickname, ok := r.Leave("c1")
	if !ok || nickname != "alice" {
		t.Fatalf("expected alice to leave, got %q/%v", nickname, ok)
	}
	if _, ok := r.Leave("c1"); ok {
		t.Error("second leave must be a no-op")
	}
	if _, ok := r.Resolve("alice"); ok {
		t.Error("nickname must be free after leave")
	}
}

func TestRoster_ListIsSorted(t *testing.T) {
	r := NewRoster()
	r.Join("c1", "zoe")
	r.Join("c2", "alice")
	r.Join("c3", "mike")

	want := []string{"alice", "mike", "zoe"}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
