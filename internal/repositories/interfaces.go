package repositories

import (
	"context"
	"time"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/pagination"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// DemoRepository persists saved demos.
type DemoRepository interface {
	// Insert fails with IsConflict when the id already exists.
	Insert(ctx context.Context, demo domain.Demo) error
	// Update replaces a live demo. Deleted or missing demos report IsNotFound.
	Update(ctx context.Context, demo domain.Demo) error
	SoftDelete(ctx context.Context, demoID string, deletedAt time.Time) error
	FindByID(ctx context.Context, demoID string) (domain.Demo, error)
	ListByOwner(ctx context.Context, ownerID string, filter DemoListFilter) (domain.CursorPage[domain.Demo], error)
}

// DraftRepository stores editor sessions between requests. Entries expire after a TTL.
type DraftRepository interface {
	Save(ctx context.Context, draft domain.Draft, ttl time.Duration) error
	// Get reports IsNotFound for unknown or expired sessions.
	Get(ctx context.Context, sessionID string) (domain.Draft, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}

// DemoListFilter narrows ListByOwner. An empty Status returns every live demo.
type DemoListFilter struct {
	Status     domain.DemoStatus
	Pagination pagination.Params
}
