package services

import (
	"context"
	"strings"
	"time"

	"github.com/chairlinked/api/internal/content"
	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/editor"
	"github.com/chairlinked/api/internal/platform/pagination"
	"github.com/chairlinked/api/internal/preview"
)

// Actor is the caller of a service operation. The zero value is anonymous.
type Actor struct {
	UID   string
	Admin bool
}

// Anonymous reports whether no user is signed in.
func (a Actor) Anonymous() bool {
	return strings.TrimSpace(a.UID) == ""
}

func (a Actor) canManage(ownerID string) bool {
	if a.Anonymous() {
		return false
	}
	return a.Admin || a.UID == ownerID
}

// DemoService persists, lists and publishes saved demos.
type DemoService interface {
	// SaveDemo never returns an error for anonymous callers; the result carries
	// RequiresAuth instead. Concurrent saves of the same demo fail with ErrSaveInFlight.
	SaveDemo(ctx context.Context, cmd SaveDemoCommand) (domain.SaveResult, error)
	GetDemo(ctx context.Context, actor Actor, demoID string) (domain.Demo, error)
	ListDemos(ctx context.Context, actor Actor, filter DemoListFilter) (domain.CursorPage[domain.Demo], error)
	DeleteDemo(ctx context.Context, actor Actor, demoID string) error
	PublishDemo(ctx context.Context, actor Actor, demoID string) (domain.Demo, error)
	RenderDemo(ctx context.Context, actor Actor, demoID string) ([]byte, error)
}

// EditorService drives editor sessions whose state lives in the draft store.
type EditorService interface {
	StartSession(ctx context.Context, cmd StartSessionCommand) (EditorState, error)
	State(ctx context.Context, actor Actor, sessionID string) (EditorState, error)
	Navigate(ctx context.Context, cmd NavigateCommand) (EditorState, error)
	UpdateSection(ctx context.Context, cmd UpdateSectionCommand) (EditorState, error)
	Save(ctx context.Context, cmd SaveSessionCommand) (EditorSaveResult, error)
}

// ContentGenerationService produces starter copy and imagery for a new demo.
type ContentGenerationService interface {
	GenerateContent(ctx context.Context, req GenerationRequest) (content.Generated, error)
}

// PreviewService renders unsaved page data.
type PreviewService interface {
	RenderPreview(ctx context.Context, data domain.PageData) ([]byte, error)
}

// SystemService reports dependency health for the readiness probe.
type SystemService interface {
	HealthReport(ctx context.Context) (domain.HealthReport, error)
}

// Demo lifecycle event types.
const (
	DemoEventSaved     = "demo.saved"
	DemoEventPublished = "demo.published"
	DemoEventDeleted   = "demo.deleted"
)

// DemoEvent is emitted after a demo changes state.
type DemoEvent struct {
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	DemoID       string    `json:"demo_id"`
	OwnerID      string    `json:"owner_id"`
	Status       string    `json:"status"`
	PublishedURL string    `json:"published_url,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// DemoEventPublisher delivers demo lifecycle events.
type DemoEventPublisher interface {
	PublishDemoEvent(ctx context.Context, event DemoEvent) (string, error)
}

// SitePublisher uploads rendered demos.
type SitePublisher interface {
	PublishPage(ctx context.Context, demoID string, html []byte) (string, error)
	Unpublish(ctx context.Context, demoID string) error
}

// PageRenderer renders page data to an HTML document.
type PageRenderer interface {
	Render(page preview.Page) ([]byte, error)
}

// Metrics receives service-level counters. Every method must tolerate a nil receiver.
type Metrics interface {
	IncSave(outcome string)
	IncAutosave(outcome string)
	IncGeneration(source string)
	IncClientError(client string)
	IncPublish(outcome string)
}

// Command and DTO definitions ------------------------------------------------

// SaveOptions tweaks an explicit save.
type SaveOptions struct {
	Title   string
	Publish bool
}

type SaveDemoCommand struct {
	Actor   Actor
	DemoID  string
	Data    domain.PageData
	Options SaveOptions
}

type DemoListFilter struct {
	Status     domain.DemoStatus
	Pagination pagination.Params
}

type StartSessionCommand struct {
	Actor Actor
	// SessionID resumes an autosaved draft when it is still stored.
	SessionID string
	DemoID    string
	Flow      string
	// Data seeds a new session when no demo is given.
	Data *domain.PageData
}

// Navigation actions accepted by EditorService.Navigate.
const (
	NavigateNext     = "next"
	NavigatePrevious = "previous"
	NavigateJump     = "jump"
)

type NavigateCommand struct {
	Actor     Actor
	SessionID string
	Action    string
	Section   domain.Section
}

type UpdateSectionCommand struct {
	Actor     Actor
	SessionID string
	Section   domain.Section
	Update    editor.SectionUpdate
}

type SaveSessionCommand struct {
	Actor     Actor
	SessionID string
	Options   SaveOptions
}

// EditorState is the client view of a session.
type EditorState struct {
	SessionID    string
	DemoID       string
	Flow         editor.Flow
	Sections     []domain.Section
	Current      domain.Section
	Completed    []domain.Section
	Progress     editor.Progress
	IsFirst      bool
	IsLast       bool
	SaveDisabled bool
	Data         domain.PageData
	UpdatedAt    time.Time
}

// EditorSaveResult pairs the save outcome with the toast the editor shows.
type EditorSaveResult struct {
	Result domain.SaveResult
	Toast  editor.Toast
	State  EditorState
}

type GenerationRequest struct {
	BusinessName string
	Industry     string
	Location     string
	Vibe         string
	Services     []string
}
