// Package lock serializes work per resource key.
//
// Queue runs functions submitted for the same key strictly one after another,
// in the order Do was called. Functions for different keys run independently.
// A failed or panicking function never blocks the ones queued behind it.
package lock

import (
	"fmt"
	"sync"
)

// Queue is a table of per-key FIFO chains. Entries are never pruned: one
// entry per distinct key touched for the lifetime of the process.
type Queue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewQueue creates an empty queue table.
func NewQueue() *Queue {
	return &Queue{tails: make(map[string]chan struct{})}
}

// Do waits for every previously submitted function for key to finish, then
// runs fn and returns its error. A panic in fn is converted into an error.
func (q *Queue) Do(key string, fn func() error) (err error) {
	q.mu.Lock()
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.mu.Unlock()

	defer close(done)

	if prev != nil {
		<-prev
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in serialized operation for %s: %v", key, r)
		}
	}()

	return fn()
}

// Keys returns how many distinct keys have been seen.
func (q *Queue) Keys() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tails)
}
