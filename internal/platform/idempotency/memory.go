package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for single-instance runs and tests.
// Expired entries are ignored by Claim and removed by Sweep.
type MemoryStore struct {
	clock   func() time.Time
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clock: time.Now, entries: make(map[string]Entry)}
}

func (s *MemoryStore) Claim(_ context.Context, key string, entry Entry) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.entries[key]; ok && !prior.expired(entry.ClaimedAt) {
		if prior.Response != nil {
			prior.Response = cloneResponse(*prior.Response)
		}
		return &prior, nil
	}
	s.entries[key] = entry
	return nil, nil
}

// Finish stores resp even if the claim has already been swept.
func (s *MemoryStore) Finish(_ context.Context, key, fingerprint string, resp Response, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	switch {
	case !ok:
		entry = Entry{Fingerprint: fingerprint, ClaimedAt: s.clock().UTC()}
	case entry.Fingerprint != fingerprint:
		return ErrFingerprintMismatch
	}
	entry.Response = cloneResponse(resp)
	entry.ExpiresAt = expiresAt
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Drop(_ context.Context, key, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.Fingerprint == fingerprint {
		delete(s.entries, key)
	}
	return nil
}

// Sweep deletes at most limit expired entries, or all of them when limit <= 0.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if limit > 0 && removed == limit {
			break
		}
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len counts stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
