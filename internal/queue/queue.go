package queue

import (
	"github.com/huandu/skiplist"
	"github.com/segmentio/ksuid"
)

// New creates an empty insertion-ordered queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		l:     skiplist.New(skiplist.Uint64),
		index: make(map[ksuid.KSUID]uint64),
	}
}

// Queue keeps entries in insertion order.
// Entries are keyed by a monotonic sequence number in the skiplist
// and addressed by their KSUID through the index.
type Queue[T any] struct {
	l     *skiplist.SkipList
	index map[ksuid.KSUID]uint64
	seq   uint64
}

// Push appends v at the back of the queue.
// Returns false if id is already queued.
func (q *Queue[T]) Push(id ksuid.KSUID, v T) (ok bool) {
	if _, exists := q.index[id]; exists {
		return false
	}
	q.seq++
	q.index[id] = q.seq
	q.l.Set(q.seq, entry[T]{ID: id, Value: v})
	return true
}

func (q *Queue[T]) Has(id ksuid.KSUID) bool {
	_, ok := q.index[id]
	return ok
}

func (q *Queue[T]) Get(id ksuid.KSUID) (v T, ok bool) {
	seq, ok := q.index[id]
	if !ok {
		return v, false
	}
	return q.l.Get(seq).Value.(entry[T]).Value, true
}

func (q *Queue[T]) Front() (ksuid.KSUID, T, bool) {
	if e := q.l.Front(); e != nil {
		v := e.Value.(entry[T])
		return v.ID, v.Value, true
	}
	var zero T
	return ksuid.KSUID{}, zero, false
}

func (q *Queue[T]) Remove(id ksuid.KSUID) (removed bool) {
	seq, ok := q.index[id]
	if !ok {
		return false
	}
	delete(q.index, id)
	return q.l.Remove(seq) != nil
}

func (q *Queue[T]) Len() int {
	return q.l.Len()
}

// Scan calls fn for every entry after the given one in insertion order
// until fn returns false. Starts from the front if after is zero.
func (q *Queue[T]) Scan(
	after ksuid.KSUID,
	fn func(ksuid.KSUID, T) bool,
) (afterFound bool) {
	var start *skiplist.Element
	var zero ksuid.KSUID
	if after != zero {
		seq, ok := q.index[after]
		if !ok {
			return false
		}
		start = q.l.Get(seq).Next()
	} else {
		start = q.l.Front()
	}

	for e := start; e != nil; e = e.Next() {
		v := e.Value.(entry[T])
		if !fn(v.ID, v.Value) {
			return true
		}
	}
	return true
}

// entry is a queued value with its identifier.
type entry[T any] struct {
	ID    ksuid.KSUID
	Value T
}
