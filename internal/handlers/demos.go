package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/httpx"
	"github.com/chairlinked/api/internal/platform/pagination"
	"github.com/chairlinked/api/internal/services"
)

const (
	defaultDemoPageSize = 20
	maxDemoPageSize     = 100
)

// DemoHandlers exposes saved demos to their owners.
type DemoHandlers struct {
	authn       *auth.Authenticator
	demos       services.DemoService
	middlewares []func(http.Handler) http.Handler
}

// NewDemoHandlers constructs a new DemoHandlers instance. The middlewares run
// after authentication, so they can scope work to the caller.
func NewDemoHandlers(authn *auth.Authenticator, demos services.DemoService, mw ...func(http.Handler) http.Handler) *DemoHandlers {
	return &DemoHandlers{
		authn:       authn,
		demos:       demos,
		middlewares: mw,
	}
}

// Routes registers the /demos endpoints. Saving accepts anonymous callers so
// the response can ask them to sign in.
func (h *DemoHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Group(func(open chi.Router) {
		if h.authn != nil {
			open.Use(h.authn.OptionalFirebaseAuth())
		}
		useAll(open, h.middlewares)
		open.Post("/save", h.saveDemo)
	})
	r.Group(func(private chi.Router) {
		if h.authn != nil {
			private.Use(h.authn.RequireFirebaseAuth())
		}
		useAll(private, h.middlewares)
		private.Get("/", h.listDemos)
		private.Get("/{demoID}", h.getDemo)
		private.Delete("/{demoID}", h.deleteDemo)
		private.Post("/{demoID}:publish", h.publishDemo)
		private.Get("/{demoID}/preview", h.previewDemo)
	})
}

type saveDemoRequest struct {
	DemoID  string          `json:"demo_id"`
	Title   string          `json:"title"`
	Publish bool            `json:"publish"`
	Data    domain.PageData `json:"data"`
}

type demoPayload struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Industry     string          `json:"industry,omitempty"`
	Status       string          `json:"status"`
	PublishedURL string          `json:"published_url,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	PublishedAt  string          `json:"published_at,omitempty"`
	Data         domain.PageData `json:"data"`
}

type demoListResponse struct {
	Items         []demoPayload `json:"items"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type demoResponse struct {
	Demo demoPayload `json:"demo"`
}

func (h *DemoHandlers) saveDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	var payload saveDemoRequest
	if err := decodeJSONBody(w, r, maxJSONRequestBody, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
		return
	}

	demoID := strings.TrimSpace(payload.DemoID)
	result, err := h.demos.SaveDemo(ctx, services.SaveDemoCommand{
		Actor:  actorFromRequest(r),
		DemoID: demoID,
		Data:   payload.Data,
		Options: services.SaveOptions{
			Title:   strings.TrimSpace(payload.Title),
			Publish: payload.Publish,
		},
	})
	if result.RequiresAuth {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", result.Error, http.StatusUnauthorized).
			WithDetails(saveResultDetails(result)))
		return
	}
	if err != nil {
		writeDemoError(ctx, w, err, saveResultDetails(result))
		return
	}

	status := http.StatusOK
	if demoID == "" {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/save"), result.DemoID))
	}
	writeJSONResponse(w, status, result)
}

func (h *DemoHandlers) listDemos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	status := domain.DemoStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	params, err := pagination.FromRequest(r, pagination.Options{
		DefaultPageSize: defaultDemoPageSize,
		MaxPageSize:     maxDemoPageSize,
		Scope:           "status=" + string(status),
	})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.demos.ListDemos(ctx, actorFromRequest(r), services.DemoListFilter{
		Status:     status,
		Pagination: params,
	})
	if err != nil {
		writeDemoError(ctx, w, err, nil)
		return
	}

	items := make([]demoPayload, 0, len(page.Items))
	for _, demo := range page.Items {
		items = append(items, buildDemoPayload(demo))
	}
	writeJSONResponse(w, http.StatusOK, demoListResponse{Items: items, NextPageToken: page.NextPageToken})
}

func (h *DemoHandlers) getDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	demo, err := h.demos.GetDemo(ctx, actorFromRequest(r), pathID(r, "demoID"))
	if err != nil {
		writeDemoError(ctx, w, err, nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, demoResponse{Demo: buildDemoPayload(demo)})
}

func (h *DemoHandlers) deleteDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.demos.DeleteDemo(ctx, actorFromRequest(r), pathID(r, "demoID")); err != nil {
		writeDemoError(ctx, w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DemoHandlers) publishDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	demo, err := h.demos.PublishDemo(ctx, actorFromRequest(r), pathID(r, "demoID"))
	if err != nil {
		writeDemoError(ctx, w, err, nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, demoResponse{Demo: buildDemoPayload(demo)})
}

func (h *DemoHandlers) previewDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.demos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "demo service unavailable", http.StatusServiceUnavailable))
		return
	}

	html, err := h.demos.RenderDemo(ctx, actorFromRequest(r), pathID(r, "demoID"))
	if err != nil {
		writeDemoError(ctx, w, err, nil)
		return
	}
	writeHTMLResponse(w, http.StatusOK, html)
}

func writeDemoError(ctx context.Context, w http.ResponseWriter, err error, details map[string]any) {
	var apiErr httpx.Error
	switch {
	case errors.Is(err, services.ErrDemoInvalidInput):
		apiErr = httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest)
		if fields := validationDetails(err); fields != nil {
			details = mergeDetails(details, fields)
		}
	case errors.Is(err, services.ErrDemoUnauthenticated):
		apiErr = httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized)
	case errors.Is(err, services.ErrDemoForbidden):
		apiErr = httpx.NewError("forbidden", "insufficient permissions", http.StatusForbidden)
	case errors.Is(err, services.ErrDemoNotFound):
		apiErr = httpx.NewError("demo_not_found", "demo not found", http.StatusNotFound)
	case errors.Is(err, services.ErrSaveInFlight):
		apiErr = httpx.NewError("save_in_flight", "a save for this demo is already in progress", http.StatusConflict)
	case errors.Is(err, services.ErrDemoConflict):
		apiErr = httpx.NewError("demo_conflict", "demo conflict", http.StatusConflict)
	case errors.Is(err, services.ErrPublishingDisabled):
		apiErr = httpx.NewError("publishing_disabled", "publishing is not enabled", http.StatusServiceUnavailable)
	case errors.Is(err, services.ErrPublishFailed):
		apiErr = httpx.NewError("publish_failed", "demo could not be published", http.StatusBadGateway)
	case errors.Is(err, services.ErrDemoRepositoryUnavailable):
		apiErr = httpx.NewError("service_unavailable", "demo repository unavailable", http.StatusServiceUnavailable)
	default:
		apiErr = httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError)
	}
	httpx.WriteError(ctx, w, apiErr.WithDetails(details))
}

func saveResultDetails(result domain.SaveResult) map[string]any {
	details := map[string]any{
		"success":       result.Success,
		"requires_auth": result.RequiresAuth,
	}
	if result.DemoID != "" {
		details["demo_id"] = result.DemoID
	}
	return details
}

func mergeDetails(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func buildDemoPayload(demo domain.Demo) demoPayload {
	return demoPayload{
		ID:           demo.ID,
		OwnerID:      demo.OwnerID,
		Slug:         demo.Slug,
		Title:        demo.Title,
		Industry:     demo.Industry,
		Status:       string(demo.Status),
		PublishedURL: demo.PublishedURL,
		CreatedAt:    formatTime(demo.CreatedAt),
		UpdatedAt:    formatTime(demo.UpdatedAt),
		PublishedAt:  formatTimePointer(demo.PublishedAt),
		Data:         demo.Data,
	}
}
