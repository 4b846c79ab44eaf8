package events

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSelection_UnmarshalScalar(t *testing.T) {
	var s Selection
	if err := json.Unmarshal([]byte(`2`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s, Selection{2}) {
		t.Errorf("expected [2], got %v", s)
	}
}

func TestSelection_UnmarshalList(t *testing.T) {
	var s Selection
	if err := json.Unmarshal([]byte(`[0,2]`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s, Selection{0, 2}) {
		t.Errorf("expected [0 2], got %v", s)
	}
}

func TestSelection_UnmarshalRejectsGarbage(t *testing.T) {
	var s Selection
	if err := json.Unmarshal([]byte(`"red"`), &s); err == nil {
		t.Error("expected an error for a non-index selection")
	}
}

func TestNew_WrapsPayload(t *testing.T) {
	event, err := New("lobby", TypeQuizStarted, QuizStartedPayload{
		Question:   "2+2?",
		DurationMS: 10000,
		StartTime:  1700000000000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Room != "lobby" || event.Type != TypeQuizStarted {
		t.Errorf("envelope fields wrong: %+v", event)
	}
	if event.ID == "" {
		t.Error("expected a generated event ID")
	}

	var payload QuizStartedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("payload must round-trip: %v", err)
	}
	if payload.Question != "2+2?" || payload.DurationMS != 10000 {
		t.Errorf("payload mismatch: %+v", payload)
	}
}
