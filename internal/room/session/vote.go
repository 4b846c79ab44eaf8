package session

import (
	"time"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

// DefaultVoteDuration applies when a start-vote request carries no
// duration.
const DefaultVoteDuration = 180 * time.Second

// VoteSession is a multiple-choice vote. Submissions are ordered index
// sets; with allowMultiple a participant counts toward every selected
// option.
type VoteSession struct {
	lifecycle

	question       string
	options        []string
	allowMultiple  bool
	revealOnSubmit bool
	submissions    map[string][]int
}

func newVoteSession(startedBy, startedByName string, start time.Time, duration time.Duration, req events.StartVoteRequest) *VoteSession {
	return &VoteSession{
		lifecycle:      newLifecycle(startedBy, startedByName, start, duration),
		question:       req.Question,
		options:        req.Options,
		allowMultiple:  req.AllowMultiple,
		revealOnSubmit: req.RevealOnSubmit,
		submissions:    make(map[string][]int),
	}
}

// validateSelection checks a normalized selection against this vote's
// rules without touching session state.
func (v *VoteSession) validateSelection(selection []int) error {
	if len(selection) == 0 {
		return ErrEmptySelection
	}
	if !v.allowMultiple && len(selection) > 1 {
		return ErrSingleChoice
	}
	for _, idx := range selection {
		if idx < 0 || idx >= len(v.options) {
			return ErrInvalidOption
		}
	}
	return nil
}

// submit records (or overwrites) a participant's selection.
func (v *VoteSession) submit(participantID string, selection []int) {
	v.submissions[participantID] = selection
}

// removeParticipant discards a departed participant's selection, if any.
func (v *VoteSession) removeParticipant(participantID string) {
	delete(v.submissions, participantID)
}

// tally counts submissions per option, in option order.
func (v *VoteSession) tally() []events.VoteCount {
	counts := make([]int, len(v.options))
	for _, selection := range v.submissions {
		for _, idx := range selection {
			counts[idx]++
		}
	}
	result := make([]events.VoteCount, len(v.options))
	for i, option := range v.options {
		result[i] = events.VoteCount{Option: option, Count: counts[i]}
	}
	return result
}
