// Package requestctx carries request-scoped values shared by middleware,
// handlers and services without importing each other.
package requestctx

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	traceKey
	annotationsKey
)

// Annotation keys written by auth and the handlers.
const (
	KeyUserID    = "user_id"
	KeyDemoID    = "demo_id"
	KeySessionID = "session_id"
	KeyIndustry  = "industry"
)

var noopLogger = zap.NewNop()

// TraceInfo is the Cloud Trace context parsed from incoming headers.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request logger, or a no-op logger outside a request.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey).(TraceInfo)
	return info, ok
}

func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// Annotations collects values discovered while a request is handled, such as
// the authenticated uid or the demo being edited. Inner handlers write to the
// same instance the outer request logger reads after the response.
type Annotations struct {
	mu     sync.Mutex
	values map[string]string
}

// WithAnnotations attaches an empty annotation set unless one already exists.
func WithAnnotations(ctx context.Context) (context.Context, *Annotations) {
	if ctx == nil {
		ctx = context.Background()
	}
	if existing, ok := ctx.Value(annotationsKey).(*Annotations); ok && existing != nil {
		return ctx, existing
	}
	a := &Annotations{values: make(map[string]string)}
	return context.WithValue(ctx, annotationsKey, a), a
}

// Annotate records key=value on the request. It is a no-op when the request
// has no annotation set or the value is empty.
func Annotate(ctx context.Context, key, value string) {
	if ctx == nil || key == "" || value == "" {
		return
	}
	a, ok := ctx.Value(annotationsKey).(*Annotations)
	if !ok || a == nil {
		return
	}
	a.mu.Lock()
	a.values[key] = value
	a.mu.Unlock()
}

// Get returns a single annotation.
func (a *Annotations) Get(key string) string {
	if a == nil {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[key]
}

// Fields returns the annotations as zap fields sorted by key.
func (a *Annotations) Fields() []zap.Field {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.String(k, a.values[k]))
	}
	a.mu.Unlock()
	return fields
}
