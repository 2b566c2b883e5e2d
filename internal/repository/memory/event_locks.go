package memory

import (
	"context"
	"sync"
)

// eventLocks hands out one lock per event id. Entries are reference
// counted and dropped once nobody holds or waits for them.
type eventLocks struct {
	mu    sync.Mutex
	locks map[int64]*eventLock
}

type eventLock struct {
	sem  chan struct{}
	refs int
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[int64]*eventLock)}
}

// acquire blocks until the event's lock is held or ctx is done.
// The returned func releases the lock.
func (l *eventLocks) acquire(ctx context.Context, eventID int64) (func(), error) {
	l.mu.Lock()
	el, ok := l.locks[eventID]
	if !ok {
		el = &eventLock{sem: make(chan struct{}, 1)}
		l.locks[eventID] = el
	}
	el.refs++
	l.mu.Unlock()

	select {
	case el.sem <- struct{}{}:
		return func() {
			<-el.sem
			l.release(eventID, el)
		}, nil
	case <-ctx.Done():
		l.release(eventID, el)
		return nil, ctx.Err()
	}
}

func (l *eventLocks) release(eventID int64, el *eventLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	el.refs--
	if el.refs == 0 {
		delete(l.locks, eventID)
	}
}

// size is the number of live lock entries.
func (l *eventLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
