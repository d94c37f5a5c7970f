package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chairlinked/api/internal/platform/httpx"
)

// RouteRegistrar adds one handler group's routes to r.
type RouteRegistrar func(r chi.Router)

// RouteGroup names a block of the /api/v1 surface.
type RouteGroup string

const (
	ThemeRoutes   RouteGroup = "themes"
	DemoRoutes    RouteGroup = "demos"
	EditorRoutes  RouteGroup = "editor"
	PreviewRoutes RouteGroup = "preview"
	// ContentRoutes registers on the API root: content:generate is a custom
	// method on the collection, not a sub-resource.
	ContentRoutes RouteGroup = "content"
)

// apiLayout fixes mount order and paths. An empty mount registers on the API
// root; stub is where a missing registrar answers 501.
var apiLayout = []struct {
	group RouteGroup
	mount string
	stub  string
}{
	{group: ThemeRoutes, mount: "/themes"},
	{group: DemoRoutes, mount: "/demos"},
	{group: EditorRoutes, mount: "/editor"},
	{group: PreviewRoutes, mount: "/preview"},
	{group: ContentRoutes, stub: "/content:generate"},
}

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 60 * time.Second
)

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	metrics     http.Handler
	origins     []string
	throttle    *requestThrottle
	groups      map[RouteGroup]RouteRegistrar
}

type Option func(*routerConfig)

// NewRouter builds the HTTP surface: probes and metrics at the root, the
// demo builder API under /api/v1. Groups without a registrar answer 501.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(requestTimeout),
		},
		groups: make(map[RouteGroup]RouteRegistrar),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	if len(cfg.origins) > 0 {
		r.Use(corsMiddleware(cfg.origins))
	}
	if cfg.throttle != nil {
		r.Use(cfg.throttle.middleware)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	r.Route(apiPrefix, func(api chi.Router) {
		for _, entry := range apiLayout {
			registrar := cfg.groups[entry.group]
			switch {
			case entry.mount == "" && registrar != nil:
				api.Group(func(g chi.Router) { registrar(g) })
			case entry.mount == "":
				api.HandleFunc(entry.stub, unavailable(entry.group))
			default:
				api.Route(entry.mount, func(g chi.Router) {
					if registrar != nil {
						registrar(g)
						return
					}
					stub := unavailable(entry.group)
					g.HandleFunc("/", stub)
					g.HandleFunc("/*", stub)
					g.MethodNotAllowed(stub)
				})
			}
		}
	})
	return r
}

func unavailable(group RouteGroup) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", group), http.StatusNotImplemented))
	}
}

// WithRoutes sets the registrar for group, replacing any earlier one.
func WithRoutes(group RouteGroup, reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.groups[group] = reg
	}
}

// WithMiddlewares appends global middleware. They run after request id,
// real ip and the request timeout.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithMetricsHandler exposes h at /metrics. Without it /metrics is a 404.
func WithMetricsHandler(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.metrics = h
	}
}

// WithAllowedOrigins enables CORS for the editor origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *routerConfig) {
		cfg.origins = append(cfg.origins, origins...)
	}
}

// WithRequestRateLimit throttles each client address to perMinute requests.
// Zero disables throttling.
func WithRequestRateLimit(perMinute int, clock func() time.Time) Option {
	return func(cfg *routerConfig) {
		cfg.throttle = newRequestThrottle(perMinute, clock)
	}
}
