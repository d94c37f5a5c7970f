package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultFallbackPath = ".secrets.local"
	defaultCacheTTL     = 10 * time.Minute
	meterName           = "github.com/chairlinked/api/internal/platform/secrets"
)

// SecretManager is the subset of the Secret Manager client the fetcher uses.
type SecretManager interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Fetcher resolves secret:// references (API keys, the Redis password) from
// Secret Manager. Values are cached for a short TTL. When Secret Manager cannot
// be reached the fetcher reads KEY=value lines from a local fallback file.
type Fetcher struct {
	client     SecretManager
	ownsClient bool
	project    string
	logger     *zap.Logger
	now        func() time.Time
	ttl        time.Duration

	fallbackPath string
	fallbackOnce sync.Once
	fallback     map[string]string

	mu    sync.Mutex
	cache map[string]cacheEntry

	fetches metric.Int64Counter
}

type cacheEntry struct {
	value     string
	fetchedAt time.Time
}

type settings struct {
	client       SecretManager
	clientOpts   []option.ClientOption
	project      string
	logger       *zap.Logger
	fallbackPath string
	ttl          time.Duration
	now          func() time.Time
	meter        metric.Meter
}

// Option customises Fetcher construction.
type Option func(*settings)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithProject sets the project used when a reference does not name one.
func WithProject(projectID string) Option {
	return func(s *settings) { s.project = strings.TrimSpace(projectID) }
}

// WithFallbackFile overrides the local fallback file. An empty path disables it.
func WithFallbackFile(path string) Option {
	return func(s *settings) { s.fallbackPath = strings.TrimSpace(path) }
}

// WithCacheTTL controls how long resolved values are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithSecretManager injects a client, mainly for tests.
func WithSecretManager(client SecretManager) Option {
	return func(s *settings) { s.client = client }
}

// WithClientOptions forwards options to the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) { s.clientOpts = append(s.clientOpts, opts...) }
}

// WithMeter overrides the OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(s *settings) { s.meter = m }
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// NewFetcher builds a Fetcher. A Secret Manager client that cannot be created
// leaves the fetcher in fallback-only mode rather than failing startup.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	s := settings{fallbackPath: defaultFallbackPath, ttl: defaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.meter == nil {
		s.meter = otel.GetMeterProvider().Meter(meterName)
	}

	f := &Fetcher{
		client:       s.client,
		project:      s.project,
		logger:       s.logger,
		now:          s.now,
		ttl:          s.ttl,
		fallbackPath: s.fallbackPath,
		cache:        make(map[string]cacheEntry),
	}

	fetches, err := s.meter.Int64Counter("secrets.fetches", metric.WithDescription("Secret resolutions by source"))
	if err != nil {
		s.logger.Warn("secrets: unable to register fetch counter", zap.Error(err))
	}
	f.fetches = fetches

	if f.client == nil {
		client, err := secretmanager.NewClient(ctx, s.clientOpts...)
		if err != nil {
			s.logger.Warn("secrets: secret manager unavailable; using fallback file only", zap.Error(err))
		} else {
			f.client = client
			f.ownsClient = true
		}
	}
	return f, nil
}

// Close releases the Secret Manager client when the fetcher created it.
func (f *Fetcher) Close() error {
	if f.ownsClient && f.client != nil {
		return f.client.Close()
	}
	return nil
}

// ResolveSecret returns the value behind ref, e.g. secret://ai-api-key?version=3.
func (f *Fetcher) ResolveSecret(ctx context.Context, ref string) (string, error) {
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}

	key := parsed.cacheKey()
	if value, ok := f.cached(key); ok {
		f.count(ctx, "cache")
		return value, nil
	}

	project := parsed.project
	if project == "" {
		project = f.project
	}
	if f.client != nil && project != "" {
		value, err := f.access(ctx, project, parsed)
		if err == nil {
			f.store(key, value)
			f.count(ctx, "secret_manager")
			return value, nil
		}
		if !fallbackAllowed(err) {
			return "", fmt.Errorf("secrets: resolve %s: %w", parsed.name, err)
		}
		f.logger.Debug("secrets: falling back to local file", zap.String("secret", parsed.name), zap.Error(err))
	}

	value, ok := f.lookupFallback(parsed)
	if !ok {
		return "", fmt.Errorf("secrets: %s not found in secret manager or %s", parsed.name, f.fallbackPath)
	}
	f.store(key, value)
	f.count(ctx, "fallback")
	return value, nil
}

func (f *Fetcher) access(ctx context.Context, project string, ref reference) (string, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.name, ref.version)
	retry := gax.WithRetry(func() gax.Retryer {
		return gax.OnCodes([]codes.Code{codes.Unavailable, codes.ResourceExhausted}, gax.Backoff{
			Initial:    100 * time.Millisecond,
			Max:        2 * time.Second,
			Multiplier: 2,
		})
	})
	resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name}, retry)
	if err != nil {
		return "", err
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secret manager returned an empty payload for %s", name)
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func (f *Fetcher) cached(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.cache[key]
	if !ok {
		return "", false
	}
	if f.ttl > 0 && f.now().Sub(entry.fetchedAt) >= f.ttl {
		delete(f.cache, key)
		return "", false
	}
	return entry.value, true
}

func (f *Fetcher) store(key, value string) {
	f.mu.Lock()
	f.cache[key] = cacheEntry{value: value, fetchedAt: f.now()}
	f.mu.Unlock()
}

func (f *Fetcher) count(ctx context.Context, source string) {
	if f.fetches != nil {
		f.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}
}

func (f *Fetcher) lookupFallback(ref reference) (string, bool) {
	f.fallbackOnce.Do(func() {
		f.fallback = readFallbackFile(f.fallbackPath, f.logger)
	})
	if value, ok := f.fallback[ref.cacheKey()]; ok {
		return value, true
	}
	value, ok := f.fallback[ref.name]
	return value, ok
}

// readFallbackFile parses lines such as "ai-api-key=sk-local" or
// "ai-api-key@3=sk-pinned" for a specific version.
func readFallbackFile(path string, logger *zap.Logger) map[string]string {
	values := map[string]string{}
	if path == "" {
		return values
	}
	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("secrets: unable to open fallback file", zap.String("path", path), zap.Error(err))
		}
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if key = strings.TrimSpace(key); !ok || key == "" {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("secrets: failed reading fallback file", zap.String("path", path), zap.Error(err))
	}
	return values
}

type reference struct {
	name    string
	version string
	project string
}

func (r reference) cacheKey() string {
	return r.name + "@" + r.version
}

func parseReference(raw string) (reference, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "sm://") {
		raw = "secret://" + strings.TrimPrefix(raw, "sm://")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return reference{}, fmt.Errorf("secrets: invalid reference %q: %w", raw, err)
	}
	if u.Scheme != "secret" {
		return reference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Host+u.Path, "/")
	if name == "" {
		return reference{}, fmt.Errorf("secrets: missing secret name in %q", raw)
	}
	version := strings.TrimSpace(u.Query().Get("version"))
	if version == "" {
		version = "latest"
	}
	return reference{name: name, version: version, project: strings.TrimSpace(u.Query().Get("project"))}, nil
}

// fallbackAllowed reports whether err means Secret Manager is unreachable for
// this caller, as opposed to the secret being absent.
func fallbackAllowed(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
