package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/httpx"
	"github.com/chairlinked/api/internal/services"
)

// PreviewHandlers renders unsaved page data for the editor's live preview.
type PreviewHandlers struct {
	previews services.PreviewService
}

// NewPreviewHandlers constructs a new PreviewHandlers instance.
func NewPreviewHandlers(previews services.PreviewService) *PreviewHandlers {
	return &PreviewHandlers{previews: previews}
}

// Routes registers POST /preview.
func (h *PreviewHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.renderPreview)
}

func (h *PreviewHandlers) renderPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.previews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "preview service unavailable", http.StatusServiceUnavailable))
		return
	}

	var data domain.PageData
	if err := decodeJSONBody(w, r, maxJSONRequestBody, &data); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
		return
	}

	html, err := h.previews.RenderPreview(ctx, data)
	if err != nil {
		if errors.Is(err, services.ErrPreviewInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "page data failed validation", http.StatusBadRequest).
				WithDetails(validationDetails(err)))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "preview could not be rendered", http.StatusInternalServerError))
		return
	}
	writeHTMLResponse(w, http.StatusOK, html)
}
