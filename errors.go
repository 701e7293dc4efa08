package tick

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned by Ticker.Wait when the wait
	// was cut short by Ticker.Interrupt.
	ErrInterrupted = errors.New("wait interrupted")

	// ErrPanic wraps the value recovered from a panicking action.
	ErrPanic = errors.New("action panicked")

	ErrNilAction = errors.New("nil action")
)

// ActionError is a failure of a single registered action.
type ActionError struct {
	ID  ActionID
	Err error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s: %v", e.ID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
