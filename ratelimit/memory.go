package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps the request log of each key in process memory.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {

	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   map[string][]time.Time{},
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.prune(key, now)

	// rejected requests are not logged so a blocked client regains access once old hits expire
	if len(hits) >= l.limit {
		return newResult(l.limit, len(hits)+1, hits[0].Add(l.window).Sub(now)), nil
	}

	hits = append(hits, now)
	l.hits[key] = hits

	return newResult(l.limit, len(hits), 0), nil
}

// prune drops hits older than the window and stores the rest, removing the key when nothing remains.
func (l *MemoryLimiter) prune(key string, now time.Time) []time.Time {

	hits := l.hits[key]
	windowStart := now.Add(-l.window)

	var i int
	for i < len(hits) && !hits[i].After(windowStart) {
		i++
	}

	hits = hits[i:]
	if len(hits) == 0 {
		delete(l.hits, key)
		return nil
	}

	l.hits[key] = hits

	return hits
}

// Sweep removes every key without hits in the current window.
func (l *MemoryLimiter) Sweep() {

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key := range l.hits {
		l.prune(key, now)
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
