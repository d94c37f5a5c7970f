package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/editor"
	"github.com/chairlinked/api/internal/repositories"
	"github.com/chairlinked/api/internal/repositories/memory"
)

type editorFixture struct {
	svc     EditorService
	demos   *demoFixture
	drafts  *memory.DraftRepository
	metrics *recordingMetrics
}

func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	demos := newDemoFixture(t)
	f := &editorFixture{
		demos:   demos,
		drafts:  memory.NewDraftRepository(func() time.Time { return demos.now }),
		metrics: &recordingMetrics{},
	}
	svc, err := NewEditorService(EditorServiceDeps{
		Drafts:      f.drafts,
		Demos:       demos.svc,
		DraftTTL:    time.Hour,
		Metrics:     f.metrics,
		Clock:       func() time.Time { return demos.now },
		IDGenerator: sequentialIDs("session"),
	})
	if err != nil {
		t.Fatalf("NewEditorService: %v", err)
	}
	f.svc = svc
	return f
}

func TestNewEditorServiceRequiresDependencies(t *testing.T) {
	if _, err := NewEditorService(EditorServiceDeps{}); err == nil {
		t.Fatalf("expected error without drafts")
	}
	if _, err := NewEditorService(EditorServiceDeps{Drafts: memory.NewDraftRepository(nil)}); err == nil {
		t.Fatalf("expected error without demo service")
	}
}

func TestStartSessionSeedsFromData(t *testing.T) {
	f := newEditorFixture(t)
	data := samplePageData()

	state, err := f.svc.StartSession(context.Background(), StartSessionCommand{Actor: Actor{UID: "user-1"}, Data: &data})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if state.SessionID != "session-1" {
		t.Fatalf("unexpected session id %s", state.SessionID)
	}
	if state.Flow != editor.FlowAdvanced || state.Current != domain.SectionNavbar {
		t.Fatalf("expected advanced flow at navbar, got %s/%s", state.Flow, state.Current)
	}
	if !state.IsFirst || state.IsLast {
		t.Fatalf("expected first section flags")
	}
	want := []domain.Section{domain.SectionNavbar, domain.SectionHero, domain.SectionServices, domain.SectionFooter}
	if len(state.Completed) != len(want) {
		t.Fatalf("expected completed %v, got %v", want, state.Completed)
	}
	for i := range want {
		if state.Completed[i] != want[i] {
			t.Fatalf("expected completed %v, got %v", want, state.Completed)
		}
	}
	if state.Progress.Total != 7 || state.Progress.Completed != 4 {
		t.Fatalf("unexpected progress %+v", state.Progress)
	}
	if state.SaveDisabled {
		t.Fatalf("expected save to be enabled")
	}

	if _, err := f.drafts.Get(context.Background(), state.SessionID); err != nil {
		t.Fatalf("expected draft to be stored: %v", err)
	}
}

func TestStartSessionRejectsUnknownFlow(t *testing.T) {
	f := newEditorFixture(t)
	_, err := f.svc.StartSession(context.Background(), StartSessionCommand{Flow: "wizard"})
	if !errors.Is(err, ErrSessionInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStartSessionLoadsDemo(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	saved, err := f.demos.svc.SaveDemo(ctx, SaveDemoCommand{Actor: actor, Data: samplePageData()})
	if err != nil {
		t.Fatalf("SaveDemo: %v", err)
	}

	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, DemoID: saved.DemoID, Flow: "simple"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if state.DemoID != saved.DemoID || state.Data.BusinessName != "Café Rosé" {
		t.Fatalf("expected demo data in session, got %+v", state)
	}
	if state.Current != domain.SectionHero {
		t.Fatalf("expected simple flow to start at hero, got %s", state.Current)
	}

	_, err = f.svc.StartSession(ctx, StartSessionCommand{Actor: Actor{UID: "intruder"}, DemoID: saved.DemoID})
	if !errors.Is(err, ErrDemoForbidden) {
		t.Fatalf("expected forbidden for foreign demo, got %v", err)
	}
}

func TestStartSessionResumesDraft(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	first, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: first.SessionID, Action: NavigateNext}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	resumed, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, SessionID: first.SessionID})
	if err != nil {
		t.Fatalf("StartSession resume: %v", err)
	}
	if resumed.SessionID != first.SessionID || resumed.Current != domain.SectionHero {
		t.Fatalf("expected resumed session at hero, got %s/%s", resumed.SessionID, resumed.Current)
	}

	fresh, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, SessionID: "missing"})
	if err != nil {
		t.Fatalf("StartSession with unknown draft: %v", err)
	}
	if fresh.SessionID == "missing" {
		t.Fatalf("expected a new session when the draft is gone")
	}
}

func TestNavigateMovesAndClamps(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, Flow: "simple"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	id := state.SessionID

	state, err = f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: id, Action: NavigatePrevious})
	if err != nil || state.Current != domain.SectionHero {
		t.Fatalf("expected previous to clamp at hero, got %s (%v)", state.Current, err)
	}

	state, err = f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: id, Action: NavigateJump, Section: domain.SectionBooking})
	if err != nil || state.Current != domain.SectionBooking || !state.IsLast {
		t.Fatalf("expected jump to booking, got %s (%v)", state.Current, err)
	}

	state, err = f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: id, Action: NavigateNext})
	if err != nil || state.Current != domain.SectionBooking {
		t.Fatalf("expected next to clamp at booking, got %s (%v)", state.Current, err)
	}

	_, err = f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: id, Action: NavigateJump, Section: domain.SectionNavbar})
	if !errors.Is(err, ErrSessionInvalidInput) || !errors.Is(err, editor.ErrUnknownSection) {
		t.Fatalf("expected unknown section error, got %v", err)
	}

	_, err = f.svc.Navigate(ctx, NavigateCommand{Actor: actor, SessionID: id, Action: "sideways"})
	if !errors.Is(err, ErrSessionInvalidInput) {
		t.Fatalf("expected invalid action error, got %v", err)
	}

	persisted, err := f.svc.State(ctx, actor, id)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if persisted.Current != domain.SectionBooking {
		t.Fatalf("expected navigation to be persisted, got %s", persisted.Current)
	}
}

func TestUpdateSectionAutosaves(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	name := "Glow Studio"
	state, err = f.svc.UpdateSection(ctx, UpdateSectionCommand{
		Actor:     actor,
		SessionID: state.SessionID,
		Section:   domain.SectionNavbar,
		Update:    editor.SectionUpdate{BusinessName: &name},
	})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if len(state.Completed) != 1 || state.Completed[0] != domain.SectionNavbar {
		t.Fatalf("expected navbar completed, got %v", state.Completed)
	}

	draft, err := f.drafts.Get(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("draft Get: %v", err)
	}
	if draft.Data.BusinessName != "Glow Studio" {
		t.Fatalf("expected autosaved business name, got %q", draft.Data.BusinessName)
	}
	if f.metrics.count("autosave:success") != 1 {
		t.Fatalf("expected autosave metric")
	}

	empty := ""
	state, err = f.svc.UpdateSection(ctx, UpdateSectionCommand{
		Actor:     actor,
		SessionID: state.SessionID,
		Section:   domain.SectionNavbar,
		Update:    editor.SectionUpdate{BusinessName: &empty},
	})
	if err != nil {
		t.Fatalf("UpdateSection clear: %v", err)
	}
	if len(state.Completed) != 0 {
		t.Fatalf("expected navbar to flip back to incomplete, got %v", state.Completed)
	}
}

func TestUpdateSectionRejectsBadUpdates(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, err = f.svc.UpdateSection(ctx, UpdateSectionCommand{Actor: actor, SessionID: state.SessionID, Section: domain.SectionHero})
	if !errors.Is(err, editor.ErrEmptyUpdate) {
		t.Fatalf("expected empty update error, got %v", err)
	}

	bad := "not-an-email"
	_, err = f.svc.UpdateSection(ctx, UpdateSectionCommand{
		Actor:     actor,
		SessionID: state.SessionID,
		Section:   domain.SectionFooter,
		Update:    editor.SectionUpdate{Email: &bad},
	})
	if !errors.Is(err, ErrSessionInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.metrics.count("autosave:success") != 0 {
		t.Fatalf("expected rejected updates not to autosave")
	}
}

func TestSessionAccessChecks(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: Actor{UID: "user-1"}})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := f.svc.State(ctx, Actor{UID: "user-2"}, state.SessionID); !errors.Is(err, ErrSessionForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.State(ctx, Actor{UID: "admin", Admin: true}, state.SessionID); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
	if _, err := f.svc.State(ctx, Actor{UID: "user-1"}, "unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	f.demos.now = f.demos.now.Add(2 * time.Hour)
	if _, err := f.svc.State(ctx, Actor{UID: "user-1"}, state.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired draft to be not found, got %v", err)
	}
}

func TestSaveRequiresAuthKeepsDraft(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	data := samplePageData()
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Data: &data})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	out, err := f.svc.Save(ctx, SaveSessionCommand{SessionID: state.SessionID})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !out.Result.RequiresAuth || out.Result.Success {
		t.Fatalf("expected requires auth result, got %+v", out.Result)
	}
	if out.Toast.Title != "Authentication required" || !out.Toast.Destructive {
		t.Fatalf("unexpected toast %+v", out.Toast)
	}
	if _, err := f.drafts.Get(ctx, state.SessionID); err != nil {
		t.Fatalf("expected draft to survive a failed save: %v", err)
	}
}

func TestSaveStoresDemoAndClearsDraft(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	data := samplePageData()
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, Data: &data})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	out, err := f.svc.Save(ctx, SaveSessionCommand{Actor: actor, SessionID: state.SessionID, Options: SaveOptions{Title: "Launch"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !out.Result.Success || out.Result.DemoID == "" {
		t.Fatalf("expected success, got %+v", out.Result)
	}
	if out.Toast.Title != "Demo saved" || out.Toast.Destructive {
		t.Fatalf("unexpected toast %+v", out.Toast)
	}
	if out.State.DemoID != out.Result.DemoID || out.State.SaveDisabled {
		t.Fatalf("unexpected state after save %+v", out.State)
	}

	demo, err := f.demos.svc.GetDemo(ctx, actor, out.Result.DemoID)
	if err != nil {
		t.Fatalf("GetDemo: %v", err)
	}
	if demo.Title != "Launch" {
		t.Fatalf("expected title option to be applied, got %q", demo.Title)
	}

	_, err = f.drafts.Get(ctx, state.SessionID)
	if !repositories.IsNotFound(err) {
		t.Fatalf("expected draft to be cleared, got %v", err)
	}
}

type failingDraftRepository struct {
	*memory.DraftRepository
}

func (failingDraftRepository) Save(context.Context, domain.Draft, time.Duration) error {
	return repositories.Unavailable("drafts.save", errors.New("connection refused"))
}

func TestAutosaveFailureSurfaces(t *testing.T) {
	demos := newDemoFixture(t)
	svc, err := NewEditorService(EditorServiceDeps{
		Drafts: failingDraftRepository{memory.NewDraftRepository(nil)},
		Demos:  demos.svc,
	})
	if err != nil {
		t.Fatalf("NewEditorService: %v", err)
	}
	_, err = svc.StartSession(context.Background(), StartSessionCommand{Actor: Actor{UID: "user-1"}})
	if !errors.Is(err, ErrDraftStoreUnavailable) {
		t.Fatalf("expected draft store error, got %v", err)
	}
}

func TestSaveRetryAfterPublishFailureReusesDemo(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	data := samplePageData()
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, Data: &data})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	f.demos.publisher.err = errors.New("bucket missing")
	cmd := SaveSessionCommand{Actor: actor, SessionID: state.SessionID, Options: SaveOptions{Publish: true}}
	first, err := f.svc.Save(ctx, cmd)
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected publish failure, got %v", err)
	}
	if first.Result.DemoID == "" || first.State.DemoID != first.Result.DemoID {
		t.Fatalf("expected the stored demo to be linked to the session, got %+v", first.State)
	}
	draft, err := f.drafts.Get(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("expected draft to survive a failed publish: %v", err)
	}
	if draft.DemoID != first.Result.DemoID {
		t.Fatalf("expected draft to carry demo %s, got %q", first.Result.DemoID, draft.DemoID)
	}

	second, err := f.svc.Save(ctx, cmd)
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected publish failure on retry, got %v", err)
	}
	if second.Result.DemoID != first.Result.DemoID {
		t.Fatalf("expected retry to update %s, got %s", first.Result.DemoID, second.Result.DemoID)
	}

	f.demos.publisher.err = nil
	third, err := f.svc.Save(ctx, cmd)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if third.Result.DemoID != first.Result.DemoID {
		t.Fatalf("expected final save to update %s, got %s", first.Result.DemoID, third.Result.DemoID)
	}

	page, err := f.demos.repo.ListByOwner(ctx, actor.UID, repositories.DemoListFilter{})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected a single stored demo, got %d", len(page.Items))
	}
	if page.Items[0].Status != domain.DemoStatusPublished {
		t.Fatalf("expected demo to be published, got %s", page.Items[0].Status)
	}
}

func TestSaveBlockedWhileAutosaving(t *testing.T) {
	f := newEditorFixture(t)
	ctx := context.Background()
	actor := Actor{UID: "user-1"}
	data := samplePageData()
	state, err := f.svc.StartSession(ctx, StartSessionCommand{Actor: actor, Data: &data})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	svc := f.svc.(*editorService)
	if !svc.autosaving.acquire(state.SessionID) {
		t.Fatalf("expected autosave slot to be free")
	}
	busy, err := f.svc.State(ctx, actor, state.SessionID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !busy.SaveDisabled {
		t.Fatalf("expected save to be disabled during an autosave")
	}
	out, err := f.svc.Save(ctx, SaveSessionCommand{Actor: actor, SessionID: state.SessionID})
	if !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected save in flight, got %v", err)
	}
	if out.Result.Success || !out.Toast.Destructive {
		t.Fatalf("unexpected blocked save result %+v", out)
	}
	svc.autosaving.release(state.SessionID)

	if !svc.saving.acquire(state.SessionID) {
		t.Fatalf("expected save slot to be free")
	}
	if _, err := f.svc.Save(ctx, SaveSessionCommand{Actor: actor, SessionID: state.SessionID}); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected concurrent save to be refused, got %v", err)
	}
	svc.saving.release(state.SessionID)

	out, err = f.svc.Save(ctx, SaveSessionCommand{Actor: actor, SessionID: state.SessionID})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !out.Result.Success || out.State.SaveDisabled {
		t.Fatalf("expected save to go through once idle, got %+v", out)
	}
}
