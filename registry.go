package tick

import (
	"errors"
	"fmt"
	"sync"

	"github.com/romshark/tick/internal/queue"

	"github.com/segmentio/ksuid"
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return NewRegistryWith(nil, nil)
}

// NewRegistryWith is similar to NewRegistry but replaces the default
// time provider and queue implementation.
// If t == nil then standard time package is used by default.
// If q == nil then tick/internal/queue.Queue is used by default.
func NewRegistryWith(t TimeProvider, q QueueReadWriter) *Registry {
	if t == nil {
		t = timeProvider{}
	}
	if q == nil {
		q = queue.New[Action]()
	}
	return &Registry{provider: t, queue: q}
}

// Registry is an ordered collection of actions.
// Registration order is invocation order; entries are never
// reordered or deduplicated.
type Registry struct {
	provider TimeProvider
	lock     sync.RWMutex
	queue    QueueReadWriter
}

// Register appends a to the end of the registry.
// Every subsequent tick includes a.
func (r *Registry) Register(a Action) (ActionID, error) {
	if a == nil {
		return ActionID{}, ErrNilAction
	}

	id, err := newActionID(r.provider.Now())
	if err != nil {
		return ActionID{}, fmt.Errorf("generating unique KSUID: %w", err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.queue.Push(ksuid.KSUID(id), a) {
		return ActionID{}, fmt.Errorf("identifier collision: %s", id.String())
	}
	return id, nil
}

// Unregister removes an action and returns true.
// Returns false if no action was removed.
func (r *Registry) Unregister(id ActionID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.queue.Remove(ksuid.KSUID(id))
}

// Has returns true if the action is registered.
func (r *Registry) Has(id ActionID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.queue.Has(ksuid.KSUID(id))
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.queue.Len()
}

// Scan scans all actions after the given one in registration order
// executing fn for each until either the end of the registry is reached
// or fn returns false.
// Starts from the front if after is zero.
// Returns false if after doesn't exist, otherwise returns true.
func (r *Registry) Scan(
	after ActionID,
	fn func(id ActionID, a Action) bool,
) (ok bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.queue.Scan(
		ksuid.KSUID(after),
		func(id ksuid.KSUID, a Action) bool {
			return fn(ActionID(id), a)
		},
	)
}

// RunAllOnce synchronously invokes every registered action
// in registration order.
// A failing or panicking action doesn't prevent the remaining ones
// from running. All failures are returned joined, each as *ActionError.
func (r *Registry) RunAllOnce() error {
	failures := r.run()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// run invokes a snapshot of the registry outside of the lock
// so that actions may register further actions.
// Those first run on the next call.
func (r *Registry) run() (failures []*ActionError) {
	type registered struct {
		id ActionID
		a  Action
	}

	r.lock.RLock()
	snapshot := make([]registered, 0, r.queue.Len())
	r.queue.Scan(ksuid.KSUID{}, func(id ksuid.KSUID, a Action) bool {
		snapshot = append(snapshot, registered{ActionID(id), a})
		return true
	})
	r.lock.RUnlock()

	for _, x := range snapshot {
		if err := invoke(x.id, x.a); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

func invoke(id ActionID, a Action) (err *ActionError) {
	defer func() {
		if p := recover(); p != nil {
			err = &ActionError{ID: id, Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
	}()
	if e := a.Run(); e != nil {
		return &ActionError{ID: id, Err: e}
	}
	return nil
}
