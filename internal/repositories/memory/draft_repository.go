package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/repositories"
)

type draftEntry struct {
	draft     domain.Draft
	expiresAt time.Time
}

// DraftRepository is the in-process counterpart of the redis draft store.
type DraftRepository struct {
	mu     sync.Mutex
	drafts map[string]draftEntry
	now    func() time.Time
}

var _ repositories.DraftRepository = (*DraftRepository)(nil)

// NewDraftRepository constructs the store. A nil clock uses time.Now.
func NewDraftRepository(now func() time.Time) *DraftRepository {
	if now == nil {
		now = time.Now
	}
	return &DraftRepository{drafts: make(map[string]draftEntry), now: now}
}

func (r *DraftRepository) Save(_ context.Context, draft domain.Draft, ttl time.Duration) error {
	if draft.SessionID == "" {
		return errors.New("memory draft repository: session id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draft.SessionID] = draftEntry{draft: draft, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *DraftRepository) Get(_ context.Context, sessionID string) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.drafts[sessionID]
	if ok && !r.now().Before(entry.expiresAt) {
		delete(r.drafts, sessionID)
		ok = false
	}
	if !ok {
		return domain.Draft{}, repositories.NotFound("drafts.get", errors.New("draft not found"))
	}
	return entry.draft, nil
}

func (r *DraftRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, sessionID)
	return nil
}

func (r *DraftRepository) Ping(context.Context) error { return nil }
