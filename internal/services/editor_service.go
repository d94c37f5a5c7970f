package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/editor"
	"github.com/chairlinked/api/internal/repositories"
)

var (
	// ErrSessionNotFound indicates the session is unknown or its draft expired.
	ErrSessionNotFound = errors.New("editor: session not found")
	// ErrSessionInvalidInput indicates a bad section, flow or update.
	ErrSessionInvalidInput = errors.New("editor: validation failed")
	// ErrSessionForbidden indicates the session belongs to another user.
	ErrSessionForbidden = errors.New("editor: permission denied")
	// ErrDraftStoreUnavailable indicates the draft store could not be reached.
	ErrDraftStoreUnavailable = errors.New("editor: network error, draft store unavailable")
)

const defaultDraftTTL = 24 * time.Hour

// EditorServiceDeps bundles the collaborators of the editor service.
type EditorServiceDeps struct {
	Drafts repositories.DraftRepository
	Demos  DemoService
	// DraftTTL bounds how long an idle session survives. Defaults to 24h.
	DraftTTL    time.Duration
	Metrics     Metrics
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type editorService struct {
	drafts  repositories.DraftRepository
	demos   DemoService
	ttl     time.Duration
	metrics Metrics
	now     func() time.Time
	newID   func() string
	logger  func(context.Context, string, map[string]any)

	// per session, so a restored session reports work still running
	saving     *inflightGuard
	autosaving *inflightGuard
}

var _ EditorService = (*editorService)(nil)

// NewEditorService wires the editor service.
func NewEditorService(deps EditorServiceDeps) (EditorService, error) {
	if deps.Drafts == nil {
		return nil, errors.New("editor service: draft repository is required")
	}
	if deps.Demos == nil {
		return nil, errors.New("editor service: demo service is required")
	}
	ttl := deps.DraftTTL
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return strings.ToLower(ulid.Make().String()) }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &editorService{
		drafts:  deps.Drafts,
		demos:   deps.Demos,
		ttl:     ttl,
		metrics: metrics,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:      idGen,
		logger:     logger,
		saving:     newInflightGuard(),
		autosaving: newInflightGuard(),
	}, nil
}

func (s *editorService) StartSession(ctx context.Context, cmd StartSessionCommand) (EditorState, error) {
	if id := strings.TrimSpace(cmd.SessionID); id != "" {
		session, err := s.load(ctx, cmd.Actor, id)
		switch {
		case err == nil:
			return stateOf(session), nil
		case !errors.Is(err, ErrSessionNotFound):
			return EditorState{}, err
		}
	}

	flow := editor.FlowAdvanced
	if raw := strings.TrimSpace(cmd.Flow); raw != "" {
		parsed, ok := editor.ParseFlow(raw)
		if !ok {
			return EditorState{}, fmt.Errorf("%w: unknown flow %q", ErrSessionInvalidInput, raw)
		}
		flow = parsed
	}

	var data domain.PageData
	demoID := strings.TrimSpace(cmd.DemoID)
	switch {
	case demoID != "":
		demo, err := s.demos.GetDemo(ctx, cmd.Actor, demoID)
		if err != nil {
			return EditorState{}, err
		}
		data = demo.Data
	case cmd.Data != nil:
		data = *cmd.Data
	}

	now := s.now()
	session := editor.NewSession(s.newID(), flow, data, now)
	session.DemoID = demoID
	session.OwnerID = cmd.Actor.UID
	if err := s.persist(ctx, session, now); err != nil {
		return EditorState{}, err
	}
	s.logger(ctx, "editor.session_started", map[string]any{"sessionId": session.ID, "demoId": demoID, "flow": string(flow)})
	return stateOf(session), nil
}

func (s *editorService) State(ctx context.Context, actor Actor, sessionID string) (EditorState, error) {
	session, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return EditorState{}, err
	}
	return stateOf(session), nil
}

func (s *editorService) Navigate(ctx context.Context, cmd NavigateCommand) (EditorState, error) {
	session, err := s.load(ctx, cmd.Actor, cmd.SessionID)
	if err != nil {
		return EditorState{}, err
	}
	switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
	case NavigateNext:
		session.Next()
	case NavigatePrevious:
		session.Previous()
	case NavigateJump:
		if err := session.JumpTo(cmd.Section); err != nil {
			return EditorState{}, fmt.Errorf("%w: %w", ErrSessionInvalidInput, err)
		}
	default:
		return EditorState{}, fmt.Errorf("%w: unknown action %q", ErrSessionInvalidInput, cmd.Action)
	}
	if err := s.persist(ctx, session, s.now()); err != nil {
		return EditorState{}, err
	}
	return stateOf(session), nil
}

// UpdateSection applies the update and autosaves the draft.
func (s *editorService) UpdateSection(ctx context.Context, cmd UpdateSectionCommand) (EditorState, error) {
	session, err := s.load(ctx, cmd.Actor, cmd.SessionID)
	if err != nil {
		return EditorState{}, err
	}
	now := s.now()
	if err := session.UpdateSection(cmd.Section, cmd.Update, now); err != nil {
		return EditorState{}, fmt.Errorf("%w: %w", ErrSessionInvalidInput, err)
	}

	if s.autosaving.acquire(session.ID) {
		defer s.autosaving.release(session.ID)
	}
	session.AutoSaving = true
	err = s.persist(ctx, session, now)
	session.AutoSaving = false
	if err != nil {
		s.metrics.IncAutosave("error")
		return EditorState{}, err
	}
	s.metrics.IncAutosave("success")
	return stateOf(session), nil
}

// Save hands the session data to the demo service. The draft is removed once
// the demo is stored. When the demo was stored but a later step failed, the
// draft keeps its demo id so a retry updates that demo instead of inserting
// another one.
func (s *editorService) Save(ctx context.Context, cmd SaveSessionCommand) (EditorSaveResult, error) {
	session, err := s.load(ctx, cmd.Actor, cmd.SessionID)
	if err != nil {
		return EditorSaveResult{}, err
	}
	if session.SaveDisabled() || !s.saving.acquire(session.ID) {
		return EditorSaveResult{
			Result: domain.SaveResult{Error: ErrSaveInFlight.Error(), DemoID: session.DemoID},
			Toast:  editor.ClassifySaveError(ErrSaveInFlight),
			State:  stateOf(session),
		}, ErrSaveInFlight
	}
	defer s.saving.release(session.ID)

	session.Saving = true
	result, saveErr := s.demos.SaveDemo(ctx, SaveDemoCommand{
		Actor:   cmd.Actor,
		DemoID:  session.DemoID,
		Data:    session.Data,
		Options: cmd.Options,
	})
	session.Saving = false

	stored := result.DemoID != "" && result.DemoID != session.DemoID
	if result.DemoID != "" {
		session.DemoID = result.DemoID
		if session.OwnerID == "" {
			session.OwnerID = cmd.Actor.UID
		}
	}

	out := EditorSaveResult{Result: result}
	switch {
	case saveErr != nil:
		out.Toast = editor.ClassifySaveError(saveErr)
	case result.RequiresAuth:
		out.Toast = editor.ClassifySaveMessageToast(result.Error)
	case !result.Success:
		out.Toast = editor.ClassifySaveMessageToast(result.Error)
	default:
		out.Toast = editor.SavedToast()
		if err := s.drafts.Delete(ctx, session.ID); err != nil {
			s.logger(ctx, "editor.draft_delete_failed", map[string]any{"sessionId": session.ID, "error": err.Error()})
		}
		out.State = stateOf(session)
		return out, nil
	}
	if stored {
		if err := s.persist(ctx, session, s.now()); err != nil {
			s.logger(ctx, "editor.draft_link_failed", map[string]any{"sessionId": session.ID, "demoId": session.DemoID, "error": err.Error()})
		}
	}
	out.State = stateOf(session)
	return out, saveErr
}

func (s *editorService) load(ctx context.Context, actor Actor, sessionID string) (*editor.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrSessionInvalidInput)
	}
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if draft.OwnerID != "" && !actor.canManage(draft.OwnerID) {
		return nil, ErrSessionForbidden
	}
	session := editor.Restore(draft, s.now())
	session.Saving = s.saving.held(session.ID)
	session.AutoSaving = s.autosaving.held(session.ID)
	return session, nil
}

func (s *editorService) persist(ctx context.Context, session *editor.Session, now time.Time) error {
	if err := s.drafts.Save(ctx, session.Snapshot(now), s.ttl); err != nil {
		s.logger(ctx, "editor.autosave_failed", map[string]any{"sessionId": session.ID, "error": err.Error()})
		return s.mapRepositoryError(err)
	}
	session.UpdatedAt = now
	return nil
}

func (s *editorService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrDraftStoreUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrDraftStoreUnavailable, err)
}

func stateOf(session *editor.Session) EditorState {
	return EditorState{
		SessionID:    session.ID,
		DemoID:       session.DemoID,
		Flow:         session.Flow,
		Sections:     session.Flow.Sections(),
		Current:      session.Current,
		Completed:    session.CompletedList(),
		Progress:     session.Progress(),
		IsFirst:      session.IsFirst(),
		IsLast:       session.IsLast(),
		SaveDisabled: session.SaveDisabled(),
		Data:         session.Data,
		UpdatedAt:    session.UpdatedAt,
	}
}
