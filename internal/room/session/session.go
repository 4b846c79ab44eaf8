package session

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// lifecycle holds the state every timed session shares: who started it,
// when, for how long, and the timers armed against its deadline. A
// lifecycle is created active and resolved exactly once; a resolved
// instance is discarded, never reused.
type lifecycle struct {
	startedBy     string
	startedByName string
	startTime     time.Time
	duration      time.Duration
	active        bool

	timers []clockwork.Timer
	done   chan struct{}
}

func newLifecycle(startedBy, startedByName string, start time.Time, duration time.Duration) lifecycle {
	return lifecycle{
		startedBy:     startedBy,
		startedByName: startedByName,
		startTime:     start,
		duration:      duration,
		active:        true,
		done:          make(chan struct{}),
	}
}

// resolve flips the session inactive and releases every armed timer.
// Timer goroutines still in flight observe the closed done channel and
// stop without firing.
func (l *lifecycle) resolve() {
	l.active = false
	close(l.done)
	for _, t := range l.timers {
		stopAndDrainTimer(t)
	}
	l.timers = nil
}

// deadline is the instant the session auto-resolves.
func (l *lifecycle) deadline() time.Time {
	return l.startTime.Add(l.duration)
}

// remainingSec reports whole seconds until the deadline, floored at zero.
func (l *lifecycle) remainingSec(now time.Time) int {
	rem := l.deadline().Sub(now)
	if rem < 0 {
		return 0
	}
	return int(rem / time.Second)
}

// countdownMarks are the seconds-before-deadline at which the room gets a
// reminder broadcast. Reminders are best-effort UX; resolution never
// depends on them.
var countdownMarks = []int{5, 4, 3, 2, 1}
