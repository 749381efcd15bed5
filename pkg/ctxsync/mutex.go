// Package ctxsync contains synchronization primitives whose waits can be
// abandoned through a context.
package ctxsync

import "context"

// Mutex is a mutual exclusion lock. Goroutines blocked in [Mutex.Lock] give up
// when their context is done. The zero value is not usable, use [NewMutex].
type Mutex struct {
	held chan struct{}
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{held: make(chan struct{}, 1)}
}

// Lock blocks until the mutex is acquired or ctx is done, in which case the
// context error is returned and the mutex is not held.
func (m *Mutex) Lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.held <- struct{}{}:
		return nil
	}
}

// Unlock releases the mutex. It panics if the mutex is not held.
func (m *Mutex) Unlock() {
	select {
	case <-m.held:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
