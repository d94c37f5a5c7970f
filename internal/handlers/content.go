package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/content"
	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/httpx"
	"github.com/chairlinked/api/internal/platform/requestctx"
	"github.com/chairlinked/api/internal/services"
)

const (
	defaultContentLimit  = 10
	defaultContentWindow = time.Minute
	maxContentBody       = 64 * 1024
)

// ContentHandlers generates site copy and imagery for new demos.
type ContentHandlers struct {
	authn     *auth.Authenticator
	generator services.ContentGenerationService
	quota     *generationQuota
	mws       []func(http.Handler) http.Handler
}

// ContentOption customises ContentHandlers.
type ContentOption func(*ContentHandlers)

// WithContentRateLimit caps generations per caller within the window. A
// non-positive limit disables throttling.
func WithContentRateLimit(limit int, window time.Duration, clock func() time.Time) ContentOption {
	return func(h *ContentHandlers) {
		if window <= 0 {
			window = defaultContentWindow
		}
		h.quota = newGenerationQuota(limit, window, clock)
	}
}

// WithContentMiddlewares appends middleware that runs after authentication.
func WithContentMiddlewares(mw ...func(http.Handler) http.Handler) ContentOption {
	return func(h *ContentHandlers) {
		h.mws = append(h.mws, mw...)
	}
}

// NewContentHandlers constructs a new ContentHandlers instance.
func NewContentHandlers(authn *auth.Authenticator, generator services.ContentGenerationService, opts ...ContentOption) *ContentHandlers {
	h := &ContentHandlers{
		authn:     authn,
		generator: generator,
		quota:     newGenerationQuota(defaultContentLimit, defaultContentWindow, nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers POST /content:generate on the API root.
func (h *ContentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	route := r
	if h.authn != nil {
		route = route.With(h.authn.RequireFirebaseAuth())
	}
	for _, mw := range h.mws {
		if mw != nil {
			route = route.With(mw)
		}
	}
	route.Post("/content:generate", h.generate)
}

type generateContentRequest struct {
	BusinessName string           `json:"business_name"`
	Industry     string           `json:"industry"`
	Location     string           `json:"location"`
	Vibe         string           `json:"vibe"`
	Services     []string         `json:"services"`
	Data         *domain.PageData `json:"data"`
}

type generateContentResponse struct {
	Content content.Generated `json:"content"`
	Data    *domain.PageData  `json:"data,omitempty"`
}

func (h *ContentHandlers) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.generator == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "content generation unavailable", http.StatusServiceUnavailable))
		return
	}

	actor := actorFromRequest(r)
	if wait, ok := h.quota.take(actor.UID); !ok {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many generation requests, try again later", http.StatusTooManyRequests).WithRetryAfter(wait))
		return
	}

	var payload generateContentRequest
	if err := decodeJSONBody(w, r, maxContentBody, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
		return
	}

	industry := payload.Industry
	if payload.Data != nil {
		industry = firstNonEmpty(industry, payload.Data.Style.Industry, payload.Data.Industry)
	}
	requestctx.Annotate(ctx, requestctx.KeyIndustry, industry)
	generated, err := h.generator.GenerateContent(ctx, services.GenerationRequest{
		BusinessName: strings.TrimSpace(payload.BusinessName),
		Industry:     strings.TrimSpace(industry),
		Location:     strings.TrimSpace(payload.Location),
		Vibe:         strings.TrimSpace(payload.Vibe),
		Services:     payload.Services,
	})
	if err != nil {
		if errors.Is(err, services.ErrContentInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "content generation failed", http.StatusInternalServerError))
		return
	}

	resp := generateContentResponse{Content: generated}
	if payload.Data != nil {
		merged := content.ApplyToPageData(generated, *payload.Data)
		resp.Data = &merged
	}
	writeJSONResponse(w, http.StatusOK, resp)
}
