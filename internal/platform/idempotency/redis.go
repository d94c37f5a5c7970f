package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "chairlinked:"

// RedisStore shares claims between API instances. Entries carry a redis TTL,
// so it needs no Sweeper.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore namespaces keys under prefix + "idem:", next to the draft
// autosave keys.
func NewRedisStore(client redis.UniversalClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("idempotency: redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: strings.TrimSuffix(prefix, ":") + ":idem:"}, nil
}

func (s *RedisStore) redisKey(key string) string { return s.prefix + key }

// Claim uses SET NX. Losing the race returns the winner's entry; if that entry
// expires before it can be read, the claim is retried once.
func (s *RedisStore) Claim(ctx context.Context, key string, entry Entry) (*Entry, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("idempotency: encode entry: %w", err)
	}
	ttl := ttlUntil(entry.ExpiresAt, entry.ClaimedAt)
	rk := s.redisKey(key)

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, rk, payload, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("idempotency: claim: %w", err)
		}
		if ok {
			return nil, nil
		}
		prior, err := readEntry(ctx, s.client, rk)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &prior, nil
	}
	return nil, errors.New("idempotency: claim contended")
}

// Finish rewrites the entry inside WATCH so a concurrent Drop or re-claim by
// another request is never overwritten.
func (s *RedisStore) Finish(ctx context.Context, key, fingerprint string, resp Response, expiresAt time.Time) error {
	rk := s.redisKey(key)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		entry, err := readEntry(ctx, tx, rk)
		switch {
		case errors.Is(err, redis.Nil):
			entry = Entry{Fingerprint: fingerprint, ClaimedAt: time.Now().UTC()}
		case err != nil:
			return err
		case entry.Fingerprint != fingerprint:
			return ErrFingerprintMismatch
		}
		entry.Response = &resp
		entry.ExpiresAt = expiresAt
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("idempotency: encode entry: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, payload, ttlUntil(expiresAt, time.Now()))
			return nil
		})
		return err
	}, rk)
	return wrapTx("finish", err)
}

func (s *RedisStore) Drop(ctx context.Context, key, fingerprint string) error {
	rk := s.redisKey(key)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		entry, err := readEntry(ctx, tx, rk)
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if entry.Fingerprint != fingerprint {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, rk)
			return nil
		})
		return err
	}, rk)
	return wrapTx("drop", err)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readEntry(ctx context.Context, c getter, rk string) (Entry, error) {
	raw, err := c.Get(ctx, rk).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, redis.Nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("idempotency: load entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("idempotency: decode entry: %w", err)
	}
	return entry, nil
}

func wrapTx(op string, err error) error {
	switch {
	case err == nil, errors.Is(err, ErrFingerprintMismatch):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("idempotency: %s: entry changed concurrently: %w", op, err)
	default:
		return fmt.Errorf("idempotency: %s: %w", op, err)
	}
}

// ttlUntil never returns less than a second; redis rejects a zero expiry.
func ttlUntil(expiresAt, from time.Time) time.Duration {
	ttl := expiresAt.Sub(from)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
