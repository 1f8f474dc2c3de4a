package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
)

// lockEntry represents a held lease lock with expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemoryLeaseLock implements retention.LeaseLock using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryLeaseLock struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLeaseLock creates a new in-memory lease lock.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryLeaseLock() *InMemoryLeaseLock {
	l := &InMemoryLeaseLock{
		entries:  make(map[uuid.UUID]lockEntry),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire takes the per-lease lock with a TTL. Returns true if newly taken,
// false if another holder owns it and the hold has not expired.
func (l *InMemoryLeaseLock) Acquire(ctx context.Context, leaseID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, held := l.entries[leaseID]; held && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	l.entries[leaseID] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release drops the per-lease lock
func (l *InMemoryLeaseLock) Release(ctx context.Context, leaseID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, leaseID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryLeaseLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLeaseLock) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLeaseLock) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for leaseID, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, leaseID)
		}
	}
}

// Size returns the number of held locks (for testing/monitoring)
func (l *InMemoryLeaseLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Ensure InMemoryLeaseLock implements retention.LeaseLock
var _ retention.LeaseLock = (*InMemoryLeaseLock)(nil)
