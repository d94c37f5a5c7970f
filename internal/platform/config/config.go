// Package config loads the API's runtime configuration from a dotenv file,
// the process environment and explicit overrides, in increasing precedence.
// Values of the form secret://... (or the older sm://...) are resolved through
// a SecretResolver before validation.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "CHAIRLINKED_"

	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 2 * time.Minute
	defaultShutdownTimeout = 10 * time.Second

	defaultDemosCollection     = "demos"
	defaultPublishedPathPrefix = "demos"
	defaultDemoEventsTopic     = "demo-events"

	defaultRedisAddr      = "localhost:6379"
	defaultRedisKeyPrefix = "chairlinked:"
	defaultDraftTTL       = 72 * time.Hour

	defaultAIModel        = "gpt-4o-mini"
	defaultAITimeout      = 20 * time.Second
	defaultImagesEndpoint = "https://api.unsplash.com"
	defaultImagesTimeout  = 5 * time.Second

	defaultContentPerMinute  = 10
	defaultRequestsPerMinute = 240

	defaultIdempotencyBackend   = "redis"
	defaultIdempotencyHeader    = "Idempotency-Key"
	defaultIdempotencyTTL       = 24 * time.Hour
	defaultIdempotencyInterval  = time.Hour
	defaultIdempotencyBatchSize = 200
)

type Config struct {
	Server      ServerConfig
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Storage     StorageConfig
	Redis       RedisConfig
	PubSub      PubSubConfig
	AI          AIConfig
	Images      ImagesConfig
	RateLimits  RateLimitConfig
	Features    FeatureFlags
	Idempotency IdempotencyConfig
}

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	ReadTimeout     time.Duration `validate:"gte=0"`
	WriteTimeout    time.Duration `validate:"gte=0"`
	IdleTimeout     time.Duration `validate:"gte=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	// AllowedOrigins feeds CORS for the editor front end. "*" allows any.
	AllowedOrigins []string `validate:"dive,required"`
}

type FirebaseConfig struct {
	ProjectID       string `validate:"required"`
	CredentialsFile string
	// CheckRevoked makes every token verification ask Firebase whether the
	// session was revoked, at the cost of a network round trip.
	CheckRevoked bool
}

type FirestoreConfig struct {
	ProjectID       string `validate:"required"`
	EmulatorHost    string
	DemosCollection string `validate:"required"`
}

// StorageConfig locates published demo sites. SitesBucket is required only
// while publishing is enabled.
type StorageConfig struct {
	SitesBucket   string
	PathPrefix    string
	PublicBaseURL string `validate:"omitempty,url"`
}

// RedisConfig backs editor draft autosaves and, by default, idempotency keys.
type RedisConfig struct {
	Addr      string `validate:"required"`
	Password  string
	DB        int `validate:"gte=0"`
	KeyPrefix string
	DraftTTL  time.Duration `validate:"gt=0"`
}

type PubSubConfig struct {
	ProjectID       string
	DemoEventsTopic string
}

type AIConfig struct {
	Endpoint string `validate:"omitempty,url"`
	APIKey   string
	Model    string
	Timeout  time.Duration `validate:"gt=0"`
}

type ImagesConfig struct {
	Endpoint  string `validate:"omitempty,url"`
	AccessKey string
	Timeout   time.Duration `validate:"gt=0"`
}

// RateLimitConfig: ContentPerMinute caps generations per creator;
// RequestsPerMinute throttles every client IP and may be 0 to disable.
type RateLimitConfig struct {
	ContentPerMinute  int `validate:"gt=0"`
	RequestsPerMinute int `validate:"gte=0"`
}

type FeatureFlags struct {
	EnableAIContent  bool
	EnablePublishing bool
	EnableMetrics    bool
}

type IdempotencyConfig struct {
	Backend          string        `validate:"oneof=redis memory"`
	Header           string        `validate:"required"`
	TTL              time.Duration `validate:"gt=0"`
	CleanupInterval  time.Duration `validate:"gt=0"`
	CleanupBatchSize int           `validate:"gt=0"`
}

// Option customises Load and EnvironmentValues.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile               string
	envMap                map[string]string
	useSystemEnv          bool
	secret                SecretResolver
	requiredSecrets       []string
	panicOnMissingSecrets bool
}

func newLoaderOptions(opts []Option) loaderOptions {
	o := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithEnvFile sets the dotenv file. An empty path disables it; a missing file
// is ignored.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap sets values that override both the dotenv file and the process
// environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) { o.secret = resolver }
}

// WithRequiredSecrets names secret fields, e.g. "AI.APIKey", that must resolve
// to a non-empty value.
func WithRequiredSecrets(names ...string) Option {
	return func(o *loaderOptions) { o.requiredSecrets = append(o.requiredSecrets, names...) }
}

func WithPanicOnMissingSecrets() Option {
	return func(o *loaderOptions) { o.panicOnMissingSecrets = true }
}

// Load reads, resolves and validates the configuration.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)
	src, err := openSource(options)
	if err != nil {
		return Config{}, err
	}

	r := &reader{src: src}
	cfg := Config{
		Server: ServerConfig{
			Port:            r.str("SERVER_PORT", src.GetString("PORT"), defaultPort),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     r.duration("SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: r.duration("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			AllowedOrigins:  r.list("SERVER_ALLOWED_ORIGINS"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       r.str("FIREBASE_PROJECT_ID"),
			CredentialsFile: r.str("FIREBASE_CREDENTIALS_FILE"),
			CheckRevoked:    r.flag("FIREBASE_CHECK_REVOKED", false),
		},
		Firestore: FirestoreConfig{
			ProjectID:       r.str("FIRESTORE_PROJECT_ID"),
			EmulatorHost:    r.str("FIRESTORE_EMULATOR_HOST"),
			DemosCollection: r.str("FIRESTORE_DEMOS_COLLECTION", defaultDemosCollection),
		},
		Storage: StorageConfig{
			SitesBucket:   r.str("STORAGE_SITES_BUCKET"),
			PathPrefix:    r.str("STORAGE_PATH_PREFIX", defaultPublishedPathPrefix),
			PublicBaseURL: r.str("STORAGE_PUBLIC_BASE_URL"),
		},
		Redis: RedisConfig{
			Addr:      r.str("REDIS_ADDR", defaultRedisAddr),
			Password:  r.str("REDIS_PASSWORD"),
			DB:        r.integer("REDIS_DB", 0),
			KeyPrefix: r.str("REDIS_KEY_PREFIX", defaultRedisKeyPrefix),
			DraftTTL:  r.duration("REDIS_DRAFT_TTL", defaultDraftTTL),
		},
		PubSub: PubSubConfig{
			ProjectID:       r.str("PUBSUB_PROJECT_ID"),
			DemoEventsTopic: r.str("PUBSUB_DEMO_EVENTS_TOPIC", defaultDemoEventsTopic),
		},
		AI: AIConfig{
			Endpoint: r.str("AI_ENDPOINT"),
			APIKey:   r.str("AI_API_KEY"),
			Model:    r.str("AI_MODEL", defaultAIModel),
			Timeout:  r.duration("AI_TIMEOUT", defaultAITimeout),
		},
		Images: ImagesConfig{
			Endpoint:  r.str("IMAGES_ENDPOINT", defaultImagesEndpoint),
			AccessKey: r.str("IMAGES_ACCESS_KEY"),
			Timeout:   r.duration("IMAGES_TIMEOUT", defaultImagesTimeout),
		},
		RateLimits: RateLimitConfig{
			ContentPerMinute:  r.integer("RATELIMIT_CONTENT_PER_MIN", defaultContentPerMinute),
			RequestsPerMinute: r.integer("RATELIMIT_REQUESTS_PER_MIN", defaultRequestsPerMinute),
		},
		Features: FeatureFlags{
			EnableAIContent:  r.flag("FEATURE_AI_CONTENT", true),
			EnablePublishing: r.flag("FEATURE_PUBLISHING", true),
			EnableMetrics:    r.flag("FEATURE_METRICS", true),
		},
		Idempotency: IdempotencyConfig{
			Backend:          strings.ToLower(r.str("IDEMPOTENCY_BACKEND", defaultIdempotencyBackend)),
			Header:           r.str("IDEMPOTENCY_HEADER", defaultIdempotencyHeader),
			TTL:              r.duration("IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  r.duration("IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyInterval),
			CleanupBatchSize: r.integer("IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatchSize),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	resolved, err := resolveSecretFields(ctx, options.secret, map[string]*string{
		"Redis.Password":   &cfg.Redis.Password,
		"AI.APIKey":        &cfg.AI.APIKey,
		"Images.AccessKey": &cfg.Images.AccessKey,
	})
	if err != nil {
		return Config{}, err
	}

	if err := validate(cfg, r.invalid); err != nil {
		return Config{}, err
	}

	if missing := findMissingSecrets(options.requiredSecrets, resolved); missing != nil {
		if options.panicOnMissingSecrets {
			fmt.Fprintf(os.Stderr, "config: %s\n", missing.Error())
			panic(missing)
		}
		return Config{}, missing
	}
	return cfg, nil
}
