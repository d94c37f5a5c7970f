package idempotency

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/httpx"
)

const (
	defaultHeaderName = "Idempotency-Key"
	replayHeaderName  = "X-Idempotent-Replay"
	maxKeyLength      = 255
	maxBodyBytes      = 1 << 20
)

// Logger receives store failures. observability.EventLogger satisfies it.
type Logger func(ctx context.Context, event string, fields map[string]any)

type settings struct {
	header   string
	ttl      time.Duration
	methods  []string
	required bool
	clock    func() time.Time
	log      Logger
}

type MiddlewareOption func(*settings)

func WithHeader(name string) MiddlewareOption {
	return func(s *settings) {
		if name = strings.TrimSpace(name); name != "" {
			s.header = name
		}
	}
}

// WithTTL sets how long a finished response is replayed.
func WithTTL(ttl time.Duration) MiddlewareOption {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMethods replaces the guarded methods (POST, PUT, PATCH, DELETE).
func WithMethods(methods ...string) MiddlewareOption {
	return func(s *settings) {
		var out []string
		for _, m := range methods {
			if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
				out = append(out, m)
			}
		}
		if len(out) > 0 {
			s.methods = out
		}
	}
}

// WithRequiredKey rejects guarded requests without a key instead of passing
// them through.
func WithRequiredKey() MiddlewareOption {
	return func(s *settings) { s.required = true }
}

func WithLogger(log Logger) MiddlewareOption {
	return func(s *settings) { s.log = log }
}

func WithClock(clock func() time.Time) MiddlewareOption {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func (s settings) guards(method string) bool {
	for _, m := range s.methods {
		if m == method {
			return true
		}
	}
	return false
}

func (s settings) report(ctx context.Context, event string, err error) {
	if s.log != nil {
		s.log(ctx, event, map[string]any{"error": err.Error()})
	}
}

// Middleware must run after authentication: keys are scoped to the signed-in
// creator, and a key reused with a different body is rejected with 409.
// Responses with a 5xx status are not kept, so the client can retry.
func Middleware(store Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	s := settings{
		header:  defaultHeaderName,
		ttl:     DefaultTTL,
		methods: []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.guards(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(s.header))
			switch {
			case clientKey == "" && s.required:
				httpx.WriteError(ctx, w, httpx.NewError("idempotency_key_required", "missing idempotency key header", http.StatusBadRequest))
				return
			case clientKey == "":
				next.ServeHTTP(w, r)
				return
			case len(clientKey) > maxKeyLength:
				httpx.WriteError(ctx, w, httpx.NewError("invalid_idempotency_key", "idempotency key is too long", http.StatusBadRequest))
				return
			}

			body, err := readBody(r)
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_body", "unable to read request body", http.StatusBadRequest))
				return
			}

			requester := requesterID(ctx)
			key := scopedKey(requester, clientKey)
			fingerprint := fingerprintOf(r, body, requester)
			now := s.clock().UTC()

			prior, err := store.Claim(ctx, key, Entry{Fingerprint: fingerprint, ClaimedAt: now, ExpiresAt: now.Add(s.ttl)})
			if err != nil {
				s.report(ctx, "idempotency.claim_failed", err)
				httpx.WriteError(ctx, w, httpx.NewError("idempotency_store_error", "unable to process idempotency key", http.StatusServiceUnavailable))
				return
			}
			if prior != nil {
				switch {
				case prior.Fingerprint != fingerprint:
					httpx.WriteError(ctx, w, httpx.NewError("idempotency_key_conflict", "idempotency key already used for a different request", http.StatusConflict))
				case prior.Response == nil:
					httpx.WriteError(ctx, w, httpx.NewError("idempotency_in_progress", "another request is processing this idempotency key", http.StatusConflict))
				default:
					replay(w, *prior.Response)
				}
				return
			}

			capture := &captureWriter{header: make(http.Header)}
			next.ServeHTTP(capture, r)
			resp := capture.response()

			if resp.Status >= http.StatusInternalServerError {
				if err := store.Drop(ctx, key, fingerprint); err != nil {
					s.report(ctx, "idempotency.drop_failed", err)
				}
			} else if err := store.Finish(ctx, key, fingerprint, resp, s.clock().UTC().Add(s.ttl)); err != nil {
				s.report(ctx, "idempotency.save_failed", err)
				if err := store.Drop(ctx, key, fingerprint); err != nil {
					s.report(ctx, "idempotency.drop_failed", err)
				}
			}
			capture.flushTo(w)
		})
	}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// fingerprintOf identifies the request a key was first used with.
func fingerprintOf(r *http.Request, body []byte, requester string) string {
	return sha256Hex([]byte(strings.Join([]string{
		r.Method,
		r.URL.Path,
		r.URL.RawQuery,
		r.Header.Get("Content-Type"),
		requester,
		sha256Hex(body),
	}, "\n")))
}

func requesterID(ctx context.Context) string {
	if uid := auth.UID(ctx); uid != "" {
		return uid
	}
	return "anonymous"
}

func replay(w http.ResponseWriter, resp Response) {
	for name, values := range resp.Header {
		w.Header()[name] = append([]string(nil), values...)
	}
	w.Header().Set(replayHeaderName, "true")
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}

// captureWriter holds the handler's response until the store has it.
type captureWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (c *captureWriter) Header() http.Header { return c.header }

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.WriteHeader(http.StatusOK)
	return c.body.Write(p)
}

func (c *captureWriter) response() Response {
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return Response{Status: status, Header: storableHeader(c.header), Body: c.body.Bytes()}
}

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for name, values := range c.header {
		w.Header()[name] = values
	}
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if c.body.Len() > 0 {
		_, _ = w.Write(c.body.Bytes())
	}
}
