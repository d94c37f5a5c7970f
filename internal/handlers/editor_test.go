package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
)

func newEditorRouter(t *testing.T) (chi.Router, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t)
	r := chi.NewRouter()
	r.Route("/editor", NewEditorHandlers(testAuthenticator(), f.editor).Routes)
	r.Route("/demos", NewDemoHandlers(testAuthenticator(), f.demos).Routes)
	return r, f
}

func TestEditorHandlersSessionLifecycle(t *testing.T) {
	r, _ := newEditorRouter(t)

	rr := doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var state editorStatePayload
	decodeBody(t, rr, &state)
	if state.SessionID != "session-1" || state.Flow != "advanced" {
		t.Fatalf("unexpected session %+v", state)
	}
	if state.Current != domain.SectionNavbar || !state.IsFirst || len(state.Sections) != 7 {
		t.Fatalf("expected advanced flow starting at navbar, got %+v", state)
	}
	if state.Completed == nil || len(state.Completed) != 0 {
		t.Fatalf("expected empty completed list, got %v", state.Completed)
	}

	rr = doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:next", "uid-1", nil)
	decodeBody(t, rr, &state)
	if state.Current != domain.SectionHero {
		t.Fatalf("expected hero after next, got %s", state.Current)
	}

	rr = doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:jump", "uid-1", map[string]string{"section": "booking"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &state)
	if state.Current != domain.SectionBooking {
		t.Fatalf("expected booking after jump, got %s", state.Current)
	}

	rr = doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:previous", "uid-1", nil)
	decodeBody(t, rr, &state)
	if state.Current != domain.SectionTestimonials {
		t.Fatalf("expected testimonials before booking, got %s", state.Current)
	}

	rr = doRequest(t, r, http.MethodGet, "/editor/sessions/session-1", "uid-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestEditorHandlersJumpRejectsUnknownSection(t *testing.T) {
	r, _ := newEditorRouter(t)
	doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", nil)

	rr := doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:jump", "uid-1", map[string]string{"section": "pricing"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestEditorHandlersUpdateSection(t *testing.T) {
	r, _ := newEditorRouter(t)
	doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", map[string]any{"flow": "simple"})

	rr := doRequest(t, r, http.MethodPut, "/editor/sessions/session-1/sections/hero", "uid-1", `{"hero":{"heroTitle":"Walk-ins welcome"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var state editorStatePayload
	decodeBody(t, rr, &state)
	if state.Data.Hero.HeroTitle != "Walk-ins welcome" {
		t.Fatalf("expected hero title applied, got %+v", state.Data.Hero)
	}
	if len(state.Completed) != 1 || state.Completed[0] != domain.SectionHero {
		t.Fatalf("expected hero completed, got %v", state.Completed)
	}
	if state.Progress.Total != 5 || state.Progress.Completed != 1 {
		t.Fatalf("unexpected progress %+v", state.Progress)
	}

	rr = doRequest(t, r, http.MethodPut, "/editor/sessions/session-1/sections/pricing", "uid-1", `{"hero":{"heroTitle":"x"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown section, got %d", rr.Code)
	}

	rr = doRequest(t, r, http.MethodPut, "/editor/sessions/session-1/sections/navbar", "uid-1", `{"businessName":"Fade Lab"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a section outside the simple flow, got %d", rr.Code)
	}

	rr = doRequest(t, r, http.MethodPut, "/editor/sessions/session-1/sections/services", "uid-1", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty update, got %d", rr.Code)
	}
}

func TestEditorHandlersSave(t *testing.T) {
	r, _ := newEditorRouter(t)
	doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", map[string]any{"data": samplePage()})

	rr := doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:save", "uid-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out editorSaveResponse
	decodeBody(t, rr, &out)
	if !out.Result.Success || out.Result.DemoID != "demo-1" {
		t.Fatalf("unexpected result %+v", out.Result)
	}
	if out.Toast.Title != "Demo saved" || out.Toast.Destructive {
		t.Fatalf("unexpected toast %+v", out.Toast)
	}
	if out.State.DemoID != "demo-1" {
		t.Fatalf("expected state to carry demo id, got %q", out.State.DemoID)
	}

	rr = doRequest(t, r, http.MethodGet, "/editor/sessions/session-1", "uid-1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected draft to be cleared after save, got %d", rr.Code)
	}

	rr = doRequest(t, r, http.MethodGet, "/demos/demo-1", "uid-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected saved demo, got %d", rr.Code)
	}
}

func TestEditorHandlersSavePublishDisabled(t *testing.T) {
	r, _ := newEditorRouter(t)
	doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", map[string]any{"data": samplePage()})

	rr := doRequest(t, r, http.MethodPost, "/editor/sessions/session-1:save", "uid-1", map[string]any{"publish": true})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	decodeBody(t, rr, &body)
	if _, ok := body["toast"]; !ok {
		t.Fatalf("expected toast details, got %v", body)
	}
}

func TestEditorHandlersOwnership(t *testing.T) {
	r, _ := newEditorRouter(t)
	doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", nil)

	rr := doRequest(t, r, http.MethodGet, "/editor/sessions/session-1", "uid-2", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	rr = doRequest(t, r, http.MethodGet, "/editor/sessions/session-1", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	rr = doRequest(t, r, http.MethodGet, "/editor/sessions/missing", "uid-1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEditorHandlersInvalidFlow(t *testing.T) {
	r, _ := newEditorRouter(t)

	rr := doRequest(t, r, http.MethodPost, "/editor/sessions", "uid-1", map[string]any{"flow": "express"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
