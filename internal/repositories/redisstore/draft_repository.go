package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/config"
	"github.com/chairlinked/api/internal/repositories"
)

const (
	defaultKeyPrefix = "chairlinked:"
	defaultDraftTTL  = 24 * time.Hour
)

// NewClient builds a redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// DraftRepository stores editor sessions as JSON values with a TTL.
type DraftRepository struct {
	client redis.UniversalClient
	prefix string
}

var _ repositories.DraftRepository = (*DraftRepository)(nil)

func NewDraftRepository(client redis.UniversalClient, prefix string) (*DraftRepository, error) {
	if client == nil {
		return nil, errors.New("redis draft repository: client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &DraftRepository{client: client, prefix: prefix}, nil
}

func (r *DraftRepository) key(sessionID string) string {
	return fmt.Sprintf("%sdraft:%s", r.prefix, sessionID)
}

// Save overwrites the session snapshot and refreshes its TTL.
func (r *DraftRepository) Save(ctx context.Context, draft domain.Draft, ttl time.Duration) error {
	if strings.TrimSpace(draft.SessionID) == "" {
		return errors.New("redis draft repository: session id is required")
	}
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	payload, err := json.Marshal(toRecord(draft))
	if err != nil {
		return fmt.Errorf("redis draft repository: encode: %w", err)
	}
	if err := r.client.SetEx(ctx, r.key(draft.SessionID), payload, ttl).Err(); err != nil {
		return wrap("drafts.save", err)
	}
	return nil
}

func (r *DraftRepository) Get(ctx context.Context, sessionID string) (domain.Draft, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		return domain.Draft{}, wrap("drafts.get", err)
	}
	var rec draftRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Draft{}, fmt.Errorf("redis draft repository: decode %s: %w", sessionID, err)
	}
	return rec.toDomain(), nil
}

func (r *DraftRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return wrap("drafts.delete", err)
	}
	return nil
}

func (r *DraftRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return wrap("drafts.ping", err)
	}
	return nil
}

func wrap(op string, err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		return repositories.NotFound(op, errors.New("draft not found"))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return repositories.Unavailable(op, err)
	}
}

type draftRecord struct {
	SessionID string          `json:"session_id"`
	DemoID    string          `json:"demo_id,omitempty"`
	OwnerID   string          `json:"owner_id"`
	Flow      string          `json:"flow"`
	Current   string          `json:"current"`
	Data      domain.PageData `json:"data"`
	SavedAt   time.Time       `json:"saved_at"`
}

func toRecord(d domain.Draft) draftRecord {
	return draftRecord{
		SessionID: d.SessionID,
		DemoID:    d.DemoID,
		OwnerID:   d.OwnerID,
		Flow:      d.Flow,
		Current:   string(d.Current),
		Data:      d.Data,
		SavedAt:   d.SavedAt.UTC(),
	}
}

func (r draftRecord) toDomain() domain.Draft {
	return domain.Draft{
		SessionID: r.SessionID,
		DemoID:    r.DemoID,
		OwnerID:   r.OwnerID,
		Flow:      r.Flow,
		Current:   domain.Section(r.Current),
		Data:      r.Data,
		SavedAt:   r.SavedAt,
	}
}
