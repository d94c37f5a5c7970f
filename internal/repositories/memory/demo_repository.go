package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/pagination"
	"github.com/chairlinked/api/internal/repositories"
)

// DemoRepository keeps demos in process memory. It backs local development
// without Firestore and the service tests.
type DemoRepository struct {
	mu    sync.RWMutex
	demos map[string]domain.Demo
}

var _ repositories.DemoRepository = (*DemoRepository)(nil)

func NewDemoRepository() *DemoRepository {
	return &DemoRepository{demos: make(map[string]domain.Demo)}
}

func (r *DemoRepository) Insert(_ context.Context, demo domain.Demo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.demos[demo.ID]; exists {
		return repositories.Conflict("demos.insert", errors.New("demo already exists"))
	}
	r.demos[demo.ID] = demo
	return nil
}

func (r *DemoRepository) Update(_ context.Context, demo domain.Demo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.demos[demo.ID]
	if !ok || current.DeletedAt != nil {
		return repositories.NotFound("demos.update", errors.New("demo not found"))
	}
	demo.CreatedAt = current.CreatedAt
	r.demos[demo.ID] = demo
	return nil
}

func (r *DemoRepository) SoftDelete(_ context.Context, demoID string, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.demos[demoID]
	if !ok || current.DeletedAt != nil {
		return repositories.NotFound("demos.delete", errors.New("demo not found"))
	}
	current.DeletedAt = &deletedAt
	current.UpdatedAt = deletedAt
	r.demos[demoID] = current
	return nil
}

func (r *DemoRepository) FindByID(_ context.Context, demoID string) (domain.Demo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	demo, ok := r.demos[demoID]
	if !ok || demo.DeletedAt != nil {
		return domain.Demo{}, repositories.NotFound("demos.get", errors.New("demo not found"))
	}
	return demo, nil
}

// ListByOwner orders by UpdatedAt descending then ID, matching the Firestore query.
func (r *DemoRepository) ListByOwner(_ context.Context, ownerID string, filter repositories.DemoListFilter) (domain.CursorPage[domain.Demo], error) {
	r.mu.RLock()
	items := make([]domain.Demo, 0)
	for _, demo := range r.demos {
		if demo.OwnerID != ownerID || demo.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && demo.Status != filter.Status {
			continue
		}
		items = append(items, demo)
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return before(items[i].UpdatedAt, items[i].ID, items[j].UpdatedAt, items[j].ID) })

	cursor := filter.Pagination.Cursor
	if !cursor.IsZero() {
		start := len(items)
		for i, demo := range items {
			if before(cursor.UpdatedAt, cursor.ID, demo.UpdatedAt, demo.ID) {
				start = i
				break
			}
		}
		items = items[start:]
	}

	size := filter.Pagination.PageSize
	if size <= 0 {
		size = pagination.DefaultPageSize
	}
	page := domain.CursorPage[domain.Demo]{}
	if len(items) > size {
		last := items[size-1]
		token, err := pagination.EncodeToken(filter.Pagination.Next(pagination.Cursor{UpdatedAt: last.UpdatedAt, ID: last.ID}))
		if err != nil {
			return page, err
		}
		page.NextPageToken = token
		items = items[:size]
	}
	page.Items = items
	return page, nil
}

// before reports whether (ta, ida) sorts ahead of (tb, idb) in list order.
func before(ta time.Time, ida string, tb time.Time, idb string) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ida < idb
}
