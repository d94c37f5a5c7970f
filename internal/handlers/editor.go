package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/editor"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/httpx"
	"github.com/chairlinked/api/internal/services"
)

// EditorHandlers drives the sequential section editor.
type EditorHandlers struct {
	authn       *auth.Authenticator
	editor      services.EditorService
	middlewares []func(http.Handler) http.Handler
}

// NewEditorHandlers constructs a new EditorHandlers instance. The middlewares
// run after authentication.
func NewEditorHandlers(authn *auth.Authenticator, svc services.EditorService, mw ...func(http.Handler) http.Handler) *EditorHandlers {
	return &EditorHandlers{
		authn:       authn,
		editor:      svc,
		middlewares: mw,
	}
}

// Routes registers the /editor endpoints.
func (h *EditorHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	useAll(r, h.middlewares)
	r.Post("/sessions", h.startSession)
	r.Get("/sessions/{sessionID}", h.getSession)
	r.Post("/sessions/{sessionID}:next", h.navigate(services.NavigateNext))
	r.Post("/sessions/{sessionID}:previous", h.navigate(services.NavigatePrevious))
	r.Post("/sessions/{sessionID}:jump", h.navigate(services.NavigateJump))
	r.Put("/sessions/{sessionID}/sections/{section}", h.updateSection)
	r.Post("/sessions/{sessionID}:save", h.saveSession)
}

type startSessionRequest struct {
	SessionID string           `json:"session_id"`
	DemoID    string           `json:"demo_id"`
	Flow      string           `json:"flow"`
	Data      *domain.PageData `json:"data"`
}

type jumpRequest struct {
	Section string `json:"section"`
}

type saveSessionRequest struct {
	Title   string `json:"title"`
	Publish bool   `json:"publish"`
}

type editorStatePayload struct {
	SessionID    string           `json:"session_id"`
	DemoID       string           `json:"demo_id,omitempty"`
	Flow         string           `json:"flow"`
	Sections     []domain.Section `json:"sections"`
	Current      domain.Section   `json:"current"`
	Completed    []domain.Section `json:"completed"`
	Progress     editor.Progress  `json:"progress"`
	IsFirst      bool             `json:"is_first"`
	IsLast       bool             `json:"is_last"`
	SaveDisabled bool             `json:"save_disabled"`
	UpdatedAt    string           `json:"updated_at"`
	Data         domain.PageData  `json:"data"`
}

type editorSaveResponse struct {
	Result domain.SaveResult  `json:"result"`
	Toast  editor.Toast       `json:"toast"`
	State  editorStatePayload `json:"state"`
}

func (h *EditorHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.editor == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "editor service unavailable", http.StatusServiceUnavailable))
		return
	}

	var payload startSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSONBody(w, r, maxJSONRequestBody, &payload); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
			return
		}
	}

	state, err := h.editor.StartSession(ctx, services.StartSessionCommand{
		Actor:     actorFromRequest(r),
		SessionID: strings.TrimSpace(payload.SessionID),
		DemoID:    strings.TrimSpace(payload.DemoID),
		Flow:      payload.Flow,
		Data:      payload.Data,
	})
	if err != nil {
		writeEditorError(ctx, w, err, nil)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildEditorStatePayload(state))
}

func (h *EditorHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.editor == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "editor service unavailable", http.StatusServiceUnavailable))
		return
	}

	state, err := h.editor.State(ctx, actorFromRequest(r), pathID(r, "sessionID"))
	if err != nil {
		writeEditorError(ctx, w, err, nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildEditorStatePayload(state))
}

func (h *EditorHandlers) navigate(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if h.editor == nil {
			httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "editor service unavailable", http.StatusServiceUnavailable))
			return
		}

		cmd := services.NavigateCommand{
			Actor:     actorFromRequest(r),
			SessionID: pathID(r, "sessionID"),
			Action:    action,
		}
		if action == services.NavigateJump {
			var payload jumpRequest
			if err := decodeJSONBody(w, r, 4*1024, &payload); err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
				return
			}
			section, ok := domain.ParseSection(strings.TrimSpace(payload.Section))
			if !ok {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown section", http.StatusBadRequest))
				return
			}
			cmd.Section = section
		}

		state, err := h.editor.Navigate(ctx, cmd)
		if err != nil {
			writeEditorError(ctx, w, err, nil)
			return
		}
		writeJSONResponse(w, http.StatusOK, buildEditorStatePayload(state))
	}
}

func (h *EditorHandlers) updateSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.editor == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "editor service unavailable", http.StatusServiceUnavailable))
		return
	}

	section, ok := domain.ParseSection(chi.URLParam(r, "section"))
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown section", http.StatusBadRequest))
		return
	}

	var update editor.SectionUpdate
	if err := decodeJSONBody(w, r, maxJSONRequestBody, &update); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
		return
	}

	state, err := h.editor.UpdateSection(ctx, services.UpdateSectionCommand{
		Actor:     actorFromRequest(r),
		SessionID: pathID(r, "sessionID"),
		Section:   section,
		Update:    update,
	})
	if err != nil {
		writeEditorError(ctx, w, err, nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildEditorStatePayload(state))
}

func (h *EditorHandlers) saveSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.editor == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "editor service unavailable", http.StatusServiceUnavailable))
		return
	}

	var payload saveSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSONBody(w, r, 4*1024, &payload); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidBodyMessage(err), http.StatusBadRequest))
			return
		}
	}

	out, err := h.editor.Save(ctx, services.SaveSessionCommand{
		Actor:     actorFromRequest(r),
		SessionID: pathID(r, "sessionID"),
		Options: services.SaveOptions{
			Title:   strings.TrimSpace(payload.Title),
			Publish: payload.Publish,
		},
	})
	if err != nil {
		details := map[string]any{}
		if out.Toast.Title != "" {
			details["toast"] = out.Toast
		}
		writeEditorError(ctx, w, err, details)
		return
	}

	status := http.StatusOK
	if out.Result.RequiresAuth {
		status = http.StatusUnauthorized
	}
	writeJSONResponse(w, status, editorSaveResponse{
		Result: out.Result,
		Toast:  out.Toast,
		State:  buildEditorStatePayload(out.State),
	})
}

func writeEditorError(ctx context.Context, w http.ResponseWriter, err error, details map[string]any) {
	var apiErr httpx.Error
	switch {
	case errors.Is(err, services.ErrSessionInvalidInput):
		apiErr = httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrSessionNotFound):
		apiErr = httpx.NewError("session_not_found", "editor session not found or expired", http.StatusNotFound)
	case errors.Is(err, services.ErrSessionForbidden):
		apiErr = httpx.NewError("forbidden", "insufficient permissions", http.StatusForbidden)
	case errors.Is(err, services.ErrDraftStoreUnavailable):
		apiErr = httpx.NewError("service_unavailable", "draft store unavailable", http.StatusServiceUnavailable)
	default:
		writeDemoError(ctx, w, err, details)
		return
	}
	httpx.WriteError(ctx, w, apiErr.WithDetails(details))
}

func buildEditorStatePayload(state services.EditorState) editorStatePayload {
	completed := state.Completed
	if completed == nil {
		completed = []domain.Section{}
	}
	return editorStatePayload{
		SessionID:    state.SessionID,
		DemoID:       state.DemoID,
		Flow:         string(state.Flow),
		Sections:     state.Sections,
		Current:      state.Current,
		Completed:    completed,
		Progress:     state.Progress,
		IsFirst:      state.IsFirst,
		IsLast:       state.IsLast,
		SaveDisabled: state.SaveDisabled,
		UpdatedAt:    formatTime(state.UpdatedAt),
		Data:         state.Data,
	}
}
