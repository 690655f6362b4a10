package cache

import (
	"context"
	"sync"
)

// InMemoryRunLock is a process-local run lock for single-instance
// deployments. Distributed deployments should use RedisRunLock.
type InMemoryRunLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewInMemoryRunLock creates an in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		held: make(map[string]bool),
	}
}

// Acquire takes the run lock for an account. The returned release function
// must be called exactly once.
func (l *InMemoryRunLock) Acquire(_ context.Context, shopDomain string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[shopDomain] {
		return nil, false, nil
	}
	l.held[shopDomain] = true

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, shopDomain)
	}
	return release, true, nil
}
