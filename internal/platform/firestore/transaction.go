package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// Demo updates touch one document, so a handful of attempts absorbs contention
// between autosave and an explicit save without holding the request long.
const (
	defaultTxAttempts = 3
	defaultTxTimeout  = 10 * time.Second
)

// TxFunc is the body of a read-write transaction. It may be invoked more than
// once and must not have side effects outside tx.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

type TxOption func(*txConfig)

type txConfig struct {
	attempts int
	timeout  time.Duration
}

func WithTxAttempts(attempts int) TxOption {
	return func(cfg *txConfig) {
		if attempts > 0 {
			cfg.attempts = attempts
		}
	}
}

// WithTxTimeout bounds the whole transaction including retries. A shorter
// deadline already on ctx wins.
func WithTxTimeout(timeout time.Duration) TxOption {
	return func(cfg *txConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// RunTransaction runs fn in a read-write transaction. Failures are wrapped
// with op so an exhausted retry surfaces as a conflict on that operation.
func RunTransaction(ctx context.Context, client *firestore.Client, op string, fn TxFunc, opts ...TxOption) error {
	if client == nil || fn == nil {
		return WrapError(op, errors.New("transaction requires a client and a function"))
	}
	cfg := txConfig{attempts: defaultTxAttempts, timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > cfg.timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	return WrapError(op, client.RunTransaction(ctx, fn, firestore.MaxAttempts(cfg.attempts)))
}
