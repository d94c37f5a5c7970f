package handlers

import (
	"strings"
	"sync"
	"time"
)

// generationQuota caps content generations per creator in fixed windows that
// open on the creator's first request.
type generationQuota struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]*quotaWindow
}

type quotaWindow struct {
	used     int
	closesAt time.Time
}

func newGenerationQuota(limit int, window time.Duration, clock func() time.Time) *generationQuota {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &generationQuota{
		limit:   limit,
		window:  window,
		clock:   clock,
		windows: make(map[string]*quotaWindow),
	}
}

// take consumes one generation for uid. When the quota is spent it reports how
// long until the creator's window closes.
func (q *generationQuota) take(uid string) (time.Duration, bool) {
	if q == nil {
		return 0, true
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		uid = "anonymous"
	}
	now := q.clock()

	q.mu.Lock()
	defer q.mu.Unlock()

	w, ok := q.windows[uid]
	if !ok || !now.Before(w.closesAt) {
		q.sweep(now)
		q.windows[uid] = &quotaWindow{used: 1, closesAt: now.Add(q.window)}
		return 0, true
	}
	if w.used >= q.limit {
		return w.closesAt.Sub(now), false
	}
	w.used++
	return 0, true
}

func (q *generationQuota) sweep(now time.Time) {
	for uid, w := range q.windows {
		if !now.Before(w.closesAt) {
			delete(q.windows, uid)
		}
	}
}
