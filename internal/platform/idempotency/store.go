// Package idempotency makes demo saves and other mutating requests safe to
// retry: the first response for an Idempotency-Key is stored and replayed for
// repeats of the same request by the same creator.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"
)

const DefaultTTL = 24 * time.Hour

// ErrFingerprintMismatch is returned when a claim belongs to a different
// request than the one trying to finish or drop it.
var ErrFingerprintMismatch = errors.New("idempotency: key reserved for different request fingerprint")

// Entry is the stored state for one scoped key. Response is nil while the
// first request is still being handled.
type Entry struct {
	Fingerprint string    `json:"fp"`
	Response    *Response `json:"response,omitempty"`
	ClaimedAt   time.Time `json:"claimed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Response is a captured handler response.
type Response struct {
	Status int         `json:"status"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

// Store keeps claims keyed by an opaque scoped key.
type Store interface {
	// Claim records entry unless a live entry already exists for key, in which
	// case the existing entry is returned and nothing is written.
	Claim(ctx context.Context, key string, entry Entry) (*Entry, error)
	// Finish attaches resp to the claim made with fingerprint and keeps it
	// until expiresAt.
	Finish(ctx context.Context, key, fingerprint string, resp Response, expiresAt time.Time) error
	// Drop removes the claim made with fingerprint. Claims by other requests
	// are left alone.
	Drop(ctx context.Context, key, fingerprint string) error
}

// Sweeper is implemented by stores whose entries do not expire on their own.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time, limit int) (int, error)
}

// scopedKey namespaces a client key by requester and hashes it, so raw header
// values never reach map or redis keys.
func scopedKey(requester, key string) string {
	return sha256Hex([]byte(requester + "\x00" + key))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var unstoredHeaders = map[string]struct{}{
	"Connection":          {},
	"Content-Length":      {},
	"Date":                {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// storableHeader copies h without hop-by-hop and per-transmission headers.
func storableHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		name = http.CanonicalHeaderKey(name)
		if _, skip := unstoredHeaders[name]; skip {
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneResponse(resp Response) *Response {
	return &Response{
		Status: resp.Status,
		Header: resp.Header.Clone(),
		Body:   append([]byte(nil), resp.Body...),
	}
}
