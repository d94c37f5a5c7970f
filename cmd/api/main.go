package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chairlinked/api/internal/handlers"
	"github.com/chairlinked/api/internal/platform/ai"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/config"
	pfirestore "github.com/chairlinked/api/internal/platform/firestore"
	"github.com/chairlinked/api/internal/platform/idempotency"
	"github.com/chairlinked/api/internal/platform/images"
	"github.com/chairlinked/api/internal/platform/jobs"
	"github.com/chairlinked/api/internal/platform/metrics"
	"github.com/chairlinked/api/internal/platform/observability"
	"github.com/chairlinked/api/internal/platform/secrets"
	platformstorage "github.com/chairlinked/api/internal/platform/storage"
	"github.com/chairlinked/api/internal/repositories"
	firestoreRepo "github.com/chairlinked/api/internal/repositories/firestore"
	"github.com/chairlinked/api/internal/repositories/redisstore"
	"github.com/chairlinked/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger(observability.LogSettingsFromEnv(os.Getenv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)
	redis.SetLogger(observability.NewRedisLogger(logger))

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(fetcher),
		config.WithRequiredSecrets(requiredSecretNames(envValues)...),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(envValues, startedAt)

	var appMetrics *metrics.Metrics
	var serviceMetrics services.Metrics
	if cfg.Features.EnableMetrics {
		appMetrics = metrics.New()
		serviceMetrics = appMetrics
	}

	var firestoreOpts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		firestoreOpts = append(firestoreOpts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	firestoreProvider := pfirestore.NewProvider(cfg.Firestore, firestoreOpts...)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	demoRepo, err := firestoreRepo.NewDemoRepository(firestoreProvider, cfg.Firestore.DemosCollection,
		pfirestore.WithTxAttempts(5),
		pfirestore.WithTxTimeout(cfg.Server.WriteTimeout/2),
	)
	if err != nil {
		logger.Fatal("failed to initialise demo repository", zap.Error(err))
	}

	redisClient := redisstore.NewClient(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}()
	draftRepo, err := redisstore.NewDraftRepository(redisClient, cfg.Redis.KeyPrefix)
	if err != nil {
		logger.Fatal("failed to initialise draft repository", zap.Error(err))
	}

	checks := []repositories.DependencyCheck{
		{Name: "firestore", Timeout: 1500 * time.Millisecond, Check: firestoreProvider.Ping},
		{Name: "redis", Timeout: time.Second, Check: draftRepo.Ping},
		{Name: "secretManager", Timeout: time.Second, Check: secretManagerCheck(fetcher)},
	}

	var publisher services.SitePublisher
	if cfg.Features.EnablePublishing && strings.TrimSpace(cfg.Storage.SitesBucket) != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		writer, err := platformstorage.NewGCSWriter(storageClient)
		if err != nil {
			logger.Fatal("failed to initialise storage writer", zap.Error(err))
		}
		sitePublisher, err := platformstorage.NewSitePublisher(writer, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to initialise site publisher", zap.Error(err))
		}
		publisher = sitePublisher
		bucket := cfg.Storage.SitesBucket
		checks = append(checks, repositories.DependencyCheck{
			Name:    "storage",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				return writer.Ping(ctx, bucket)
			},
		})
	} else {
		logger.Info("publishing disabled; demos stay in draft")
	}

	var events services.DemoEventPublisher
	if projectID := strings.TrimSpace(cfg.PubSub.ProjectID); projectID != "" {
		pubsubClient, err := pubsub.NewClient(ctx, projectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.PubSub.DemoEventsTopic)
		defer topic.Stop()
		eventPublisher, err := jobs.NewPubSubDemoEventPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise demo event publisher", zap.Error(err))
		}
		events = eventPublisher
		checks = append(checks, repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				ok, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("topic %s not found", topic.ID())
				}
				return nil
			},
		})
	}

	idempotencyStore, err := newIdempotencyStore(cfg.Idempotency, redisClient, cfg.Redis.KeyPrefix)
	if err != nil {
		logger.Fatal("failed to initialise idempotency store", zap.Error(err))
	}
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(idempotency.Logger(observability.NewEventLogger(logger, "idempotency"))),
	)

	sweepCtx, stopSweeping := context.WithCancel(context.Background())
	var sweepWG sync.WaitGroup
	if sweeper, ok := idempotencyStore.(idempotency.Sweeper); ok {
		sweepLogger := logger.Named("idempotency")
		sweepWG.Add(1)
		go func() {
			defer sweepWG.Done()
			idempotency.SweepEvery(sweepCtx, sweeper, cfg.Idempotency.CleanupInterval, cfg.Idempotency.CleanupBatchSize, func(removed int, err error) {
				if err != nil {
					sweepLogger.Error("idempotency sweep failed", zap.Error(err))
					return
				}
				sweepLogger.Info("idempotency sweep removed entries", zap.Int("count", removed))
			})
		}()
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	previewService := services.NewPreviewService(nil)

	demoService, err := services.NewDemoService(services.DemoServiceDeps{
		Repository: demoRepo,
		Publisher:  publisher,
		Events:     events,
		Metrics:    serviceMetrics,
		Clock:      time.Now,
		Logger:     observability.NewEventLogger(logger, "demos"),
	})
	if err != nil {
		logger.Fatal("failed to initialise demo service", zap.Error(err))
	}

	editorService, err := services.NewEditorService(services.EditorServiceDeps{
		Drafts:   draftRepo,
		Demos:    demoService,
		DraftTTL: cfg.Redis.DraftTTL,
		Metrics:  serviceMetrics,
		Clock:    time.Now,
		Logger:   observability.NewEventLogger(logger, "editor"),
	})
	if err != nil {
		logger.Fatal("failed to initialise editor service", zap.Error(err))
	}

	generationDeps := services.ContentGenerationServiceDeps{
		Metrics: serviceMetrics,
		Logger:  observability.NewEventLogger(logger, "content"),
	}
	if cfg.Features.EnableAIContent {
		if copyClient := ai.NewClient(ai.Options{
			Endpoint: cfg.AI.Endpoint,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			Timeout:  cfg.AI.Timeout,
		}); copyClient.Enabled() {
			generationDeps.Copy = copyClient
		}
		if imageClient := images.NewClient(images.Options{
			Endpoint:  cfg.Images.Endpoint,
			AccessKey: cfg.Images.AccessKey,
			Timeout:   cfg.Images.Timeout,
		}); imageClient.Enabled() {
			generationDeps.Images = imageClient
		}
	}
	contentService, err := services.NewContentGenerationService(generationDeps)
	if err != nil {
		logger.Fatal("failed to initialise content generation service", zap.Error(err))
	}

	systemService, err := newSystemService(checks, buildInfo)
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
	}
	if appMetrics != nil {
		middlewares = append(middlewares, observability.RequestLoggerMiddleware(appMetrics.ObserveRequest))
	} else {
		middlewares = append(middlewares, observability.RequestLoggerMiddleware())
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(systemService),
	)
	themeHandlers := handlers.NewThemeHandlers()
	demoHandlers := handlers.NewDemoHandlers(authenticator, demoService, idempotencyMiddleware)
	editorHandlers := handlers.NewEditorHandlers(authenticator, editorService, idempotencyMiddleware)
	contentHandlers := handlers.NewContentHandlers(authenticator, contentService,
		handlers.WithContentRateLimit(cfg.RateLimits.ContentPerMinute, time.Minute, time.Now),
		handlers.WithContentMiddlewares(idempotencyMiddleware),
	)
	previewHandlers := handlers.NewPreviewHandlers(previewService)

	opts := []handlers.Option{
		handlers.WithMiddlewares(middlewares...),
		handlers.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		handlers.WithRequestRateLimit(cfg.RateLimits.RequestsPerMinute, time.Now),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithRoutes(handlers.ThemeRoutes, themeHandlers.Routes),
		handlers.WithRoutes(handlers.DemoRoutes, demoHandlers.Routes),
		handlers.WithRoutes(handlers.EditorRoutes, editorHandlers.Routes),
		handlers.WithRoutes(handlers.ContentRoutes, contentHandlers.Routes),
		handlers.WithRoutes(handlers.PreviewRoutes, previewHandlers.Routes),
	}
	if appMetrics != nil {
		opts = append(opts, handlers.WithMetricsHandler(appMetrics.Handler()))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("chairlinked api listening", zap.String("version", buildInfo.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	stopSweeping()
	sweepWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(env map[string]string, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["CHAIRLINKED_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["CHAIRLINKED_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(env["CHAIRLINKED_ENVIRONMENT"])
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func newIdempotencyStore(cfg config.IdempotencyConfig, client redis.UniversalClient, prefix string) (idempotency.Store, error) {
	switch cfg.Backend {
	case "memory":
		return idempotency.NewMemoryStore(), nil
	case "", "redis":
		return idempotency.NewRedisStore(client, prefix)
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}

func secretManagerCheck(fetcher *secrets.Fetcher) func(context.Context) error {
	const secretHealthReference = "secret://system/healthz?version=latest"
	return func(ctx context.Context) error {
		_, err := fetcher.ResolveSecret(ctx, secretHealthReference)
		if err == nil {
			return nil
		}
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return nil
		}
		return err
	}
}

func newSystemService(checks []repositories.DependencyCheck, build services.BuildInfo) (services.SystemService, error) {
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	repo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Clock:            time.Now,
		Build:            build,
	})
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}

	project := lookup("CHAIRLINKED_SECRET_PROJECT_ID")
	if project == "" {
		project = lookup("CHAIRLINKED_FIREBASE_PROJECT_ID")
	}

	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
	}
	if path := lookup("CHAIRLINKED_SECRET_FALLBACK_FILE"); path != "" {
		opts = append(opts, secrets.WithFallbackFile(path))
	}
	if project != "" {
		opts = append(opts, secrets.WithProject(project))
	}
	if credentialsFile := lookup("CHAIRLINKED_FIREBASE_CREDENTIALS_FILE"); credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}
	return secrets.NewFetcher(ctx, opts...)
}

// requiredSecretNames lists the secrets that must resolve for the configured
// integrations. An endpoint without its key would fail every call.
func requiredSecretNames(env map[string]string) []string {
	var required []string
	if strings.TrimSpace(env["CHAIRLINKED_AI_ENDPOINT"]) != "" {
		required = append(required, "AI.APIKey")
	}
	if strings.TrimSpace(env["CHAIRLINKED_IMAGES_ACCESS_KEY"]) != "" {
		required = append(required, "Images.AccessKey")
	}
	if strings.TrimSpace(env["CHAIRLINKED_REDIS_PASSWORD"]) != "" {
		required = append(required, "Redis.Password")
	}
	return required
}
