package tick

import (
	"time"

	"github.com/segmentio/ksuid"
)

type (
	Time     = time.Time
	Duration = time.Duration
)

const (
	Nanosecond  = time.Nanosecond
	Microsecond = time.Microsecond
	Millisecond = time.Millisecond
	Second      = time.Second
	Minute      = time.Minute
	Hour        = time.Hour
)

// DefaultInterval is the sleep duration between two ticks.
const DefaultInterval = 100 * Millisecond

type QueueReader interface {
	Has(ksuid.KSUID) bool
	Len() int
	Scan(
		after ksuid.KSUID,
		fn func(ksuid.KSUID, Action) bool,
	) (afterFound bool)
}

type QueueWriter interface {
	Push(ksuid.KSUID, Action) (ok bool)
	Remove(ksuid.KSUID) (ok bool)
}

type QueueReadWriter interface {
	QueueReader
	QueueWriter
}

// ActionID is a unique identifier assigned to an action on registration.
type ActionID ksuid.KSUID

// String returns the stringified identifier.
func (id ActionID) String() string {
	return ksuid.KSUID(id).String()
}

// Registered returns the time the action was registered at,
// truncated to the second.
func (id ActionID) Registered() Time {
	return ksuid.KSUID(id).Time()
}

// newActionID generates a new unique identifier.
func newActionID(tm Time) (ActionID, error) {
	k, err := ksuid.NewRandomWithTime(tm)
	if err != nil {
		return ActionID{}, err
	}
	return ActionID(k), nil
}
