package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/preview"
	"github.com/chairlinked/api/internal/repositories"
)

var (
	// ErrDemoNotFound indicates the requested demo does not exist or was deleted.
	ErrDemoNotFound = errors.New("demo: not found")
	// ErrDemoInvalidInput indicates the page data failed validation.
	ErrDemoInvalidInput = errors.New("demo: validation failed")
	// ErrDemoConflict indicates a concurrent write won.
	ErrDemoConflict = errors.New("demo: conflict")
	// ErrDemoRepositoryUnavailable indicates the backing store could not be reached.
	ErrDemoRepositoryUnavailable = errors.New("demo: network error, repository unavailable")
	// ErrDemoUnauthenticated indicates the caller is not signed in.
	ErrDemoUnauthenticated = errors.New("demo: authentication required")
	// ErrDemoForbidden indicates the caller does not own the demo.
	ErrDemoForbidden = errors.New("demo: permission denied")
	// ErrSaveInFlight indicates another save of the same demo has not finished.
	ErrSaveInFlight = errors.New("demo: save already in progress")
	// ErrPublishingDisabled indicates no site publisher is configured.
	ErrPublishingDisabled = errors.New("demo: publishing disabled")
	// ErrPublishFailed indicates the rendered site could not be uploaded.
	ErrPublishFailed = errors.New("demo: publish failed")
)

const maxSlugLength = 60

// DemoServiceDeps bundles the collaborators of the demo service.
type DemoServiceDeps struct {
	Repository repositories.DemoRepository
	Renderer   PageRenderer
	// Publisher is optional; PublishDemo fails with ErrPublishingDisabled without it.
	Publisher   SitePublisher
	Events      DemoEventPublisher
	Metrics     Metrics
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type demoService struct {
	repo      repositories.DemoRepository
	renderer  PageRenderer
	publisher SitePublisher
	events    DemoEventPublisher
	metrics   Metrics
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
	inflight  *inflightGuard
}

var _ DemoService = (*demoService)(nil)

// NewDemoService wires the demo service.
func NewDemoService(deps DemoServiceDeps) (DemoService, error) {
	if deps.Repository == nil {
		return nil, errors.New("demo service: repository is required")
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = preview.NewRenderer()
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

	return &demoService{
		repo:      deps.Repository,
		renderer:  renderer,
		publisher: deps.Publisher,
		events:    deps.Events,
		metrics:   metrics,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:    idGen,
		logger:   logger,
		inflight: newInflightGuard(),
	}, nil
}

func (s *demoService) SaveDemo(ctx context.Context, cmd SaveDemoCommand) (domain.SaveResult, error) {
	if cmd.Actor.Anonymous() {
		s.metrics.IncSave("unauthenticated")
		return domain.SaveResult{
			Success:      false,
			RequiresAuth: true,
			Error:        "Authentication required. Please sign in to save your demo.",
		}, nil
	}

	demoID := strings.TrimSpace(cmd.DemoID)
	key := cmd.Actor.UID + "|" + demoID
	if !s.inflight.acquire(key) {
		s.metrics.IncSave("in_flight")
		return domain.SaveResult{Error: ErrSaveInFlight.Error(), DemoID: demoID}, ErrSaveInFlight
	}
	defer s.inflight.release(key)

	data := cmd.Data
	domain.EnsureItemIDs(&data, nil)
	if err := domain.ValidatePageData(data); err != nil {
		s.metrics.IncSave("invalid")
		wrapped := fmt.Errorf("%w: %w", ErrDemoInvalidInput, err)
		return domain.SaveResult{Error: wrapped.Error(), DemoID: demoID}, wrapped
	}
	if cmd.Options.Publish && s.publisher == nil {
		s.metrics.IncSave("publishing_disabled")
		return domain.SaveResult{Error: ErrPublishingDisabled.Error(), DemoID: demoID}, ErrPublishingDisabled
	}

	now := s.now()
	var (
		demo domain.Demo
		err  error
	)
	if demoID == "" {
		demo, err = s.insert(ctx, cmd, data, now)
	} else {
		demo, err = s.update(ctx, cmd.Actor, demoID, cmd.Options, data, now)
	}
	if err != nil {
		s.metrics.IncSave("error")
		s.logger(ctx, "demo.save_failed", map[string]any{"demoId": demoID, "error": err.Error()})
		return domain.SaveResult{Error: err.Error(), DemoID: demoID}, err
	}

	s.metrics.IncSave("success")
	s.emit(ctx, DemoEventSaved, demo)
	s.logger(ctx, "demo.saved", map[string]any{"demoId": demo.ID, "ownerId": demo.OwnerID})

	if cmd.Options.Publish {
		if _, err := s.publish(ctx, demo); err != nil {
			return domain.SaveResult{Error: err.Error(), DemoID: demo.ID}, err
		}
	}
	return domain.SaveResult{Success: true, DemoID: demo.ID}, nil
}

func (s *demoService) insert(ctx context.Context, cmd SaveDemoCommand, data domain.PageData, now time.Time) (domain.Demo, error) {
	demo := domain.Demo{
		ID:        s.newID(),
		OwnerID:   cmd.Actor.UID,
		Slug:      Slugify(data.BusinessName),
		Title:     chooseFirstNonEmpty(strings.TrimSpace(cmd.Options.Title), strings.TrimSpace(data.BusinessName), "Untitled demo"),
		Industry:  industryOf(data),
		Data:      data,
		Status:    domain.DemoStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if demo.Slug == "" {
		demo.Slug = demo.ID
	}
	if err := s.repo.Insert(ctx, demo); err != nil {
		return domain.Demo{}, s.mapRepositoryError(err)
	}
	return demo, nil
}

func (s *demoService) update(ctx context.Context, actor Actor, demoID string, opts SaveOptions, data domain.PageData, now time.Time) (domain.Demo, error) {
	demo, err := s.load(ctx, actor, demoID)
	if err != nil {
		return domain.Demo{}, err
	}
	demo.Data = data
	demo.Industry = industryOf(data)
	if title := strings.TrimSpace(opts.Title); title != "" {
		demo.Title = title
	}
	demo.UpdatedAt = now
	if err := s.repo.Update(ctx, demo); err != nil {
		return domain.Demo{}, s.mapRepositoryError(err)
	}
	return demo, nil
}

func (s *demoService) GetDemo(ctx context.Context, actor Actor, demoID string) (domain.Demo, error) {
	return s.load(ctx, actor, demoID)
}

func (s *demoService) ListDemos(ctx context.Context, actor Actor, filter DemoListFilter) (domain.CursorPage[domain.Demo], error) {
	if actor.Anonymous() {
		return domain.CursorPage[domain.Demo]{}, ErrDemoUnauthenticated
	}
	switch filter.Status {
	case "", domain.DemoStatusDraft, domain.DemoStatusPublished:
	default:
		return domain.CursorPage[domain.Demo]{}, fmt.Errorf("%w: unknown status %q", ErrDemoInvalidInput, filter.Status)
	}
	page, err := s.repo.ListByOwner(ctx, actor.UID, repositories.DemoListFilter{
		Status:     filter.Status,
		Pagination: filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[domain.Demo]{}, s.mapRepositoryError(err)
	}
	return page, nil
}

func (s *demoService) DeleteDemo(ctx context.Context, actor Actor, demoID string) error {
	demo, err := s.load(ctx, actor, demoID)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.repo.SoftDelete(ctx, demo.ID, now); err != nil {
		return s.mapRepositoryError(err)
	}
	if demo.Status == domain.DemoStatusPublished && s.publisher != nil {
		if err := s.publisher.Unpublish(ctx, demo.ID); err != nil {
			s.logger(ctx, "demo.unpublish_failed", map[string]any{"demoId": demo.ID, "error": err.Error()})
		}
	}
	demo.DeletedAt = &now
	s.emit(ctx, DemoEventDeleted, demo)
	return nil
}

func (s *demoService) PublishDemo(ctx context.Context, actor Actor, demoID string) (domain.Demo, error) {
	if s.publisher == nil {
		return domain.Demo{}, ErrPublishingDisabled
	}
	demo, err := s.load(ctx, actor, demoID)
	if err != nil {
		return domain.Demo{}, err
	}
	return s.publish(ctx, demo)
}

func (s *demoService) publish(ctx context.Context, demo domain.Demo) (domain.Demo, error) {
	if s.publisher == nil {
		return domain.Demo{}, ErrPublishingDisabled
	}
	html, err := s.renderer.Render(preview.Page{Data: demo.Data, Title: demo.Title})
	if err != nil {
		s.metrics.IncPublish("error")
		return domain.Demo{}, fmt.Errorf("%w: render: %v", ErrPublishFailed, err)
	}
	url, err := s.publisher.PublishPage(ctx, demo.ID, html)
	if err != nil {
		s.metrics.IncPublish("error")
		s.logger(ctx, "demo.publish_failed", map[string]any{"demoId": demo.ID, "error": err.Error()})
		return domain.Demo{}, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	now := s.now()
	demo.Status = domain.DemoStatusPublished
	demo.PublishedURL = url
	demo.PublishedAt = &now
	demo.UpdatedAt = now
	if err := s.repo.Update(ctx, demo); err != nil {
		s.metrics.IncPublish("error")
		return domain.Demo{}, s.mapRepositoryError(err)
	}

	s.metrics.IncPublish("success")
	s.emit(ctx, DemoEventPublished, demo)
	s.logger(ctx, "demo.published", map[string]any{"demoId": demo.ID, "url": url})
	return demo, nil
}

func (s *demoService) RenderDemo(ctx context.Context, actor Actor, demoID string) ([]byte, error) {
	demo, err := s.load(ctx, actor, demoID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(preview.Page{
		Data:         demo.Data,
		Title:        demo.Title,
		CanonicalURL: demo.PublishedURL,
		NoIndex:      demo.Status != domain.DemoStatusPublished,
	})
}

func (s *demoService) load(ctx context.Context, actor Actor, demoID string) (domain.Demo, error) {
	if actor.Anonymous() {
		return domain.Demo{}, ErrDemoUnauthenticated
	}
	demoID = strings.TrimSpace(demoID)
	if demoID == "" {
		return domain.Demo{}, fmt.Errorf("%w: demo id is required", ErrDemoInvalidInput)
	}
	demo, err := s.repo.FindByID(ctx, demoID)
	if err != nil {
		return domain.Demo{}, s.mapRepositoryError(err)
	}
	if demo.DeletedAt != nil {
		return domain.Demo{}, ErrDemoNotFound
	}
	if !actor.canManage(demo.OwnerID) {
		return domain.Demo{}, ErrDemoForbidden
	}
	return demo, nil
}

func (s *demoService) emit(ctx context.Context, eventType string, demo domain.Demo) {
	if s.events == nil {
		return
	}
	event := DemoEvent{
		EventID:      s.newID(),
		Type:         eventType,
		DemoID:       demo.ID,
		OwnerID:      demo.OwnerID,
		Status:       string(demo.Status),
		PublishedURL: demo.PublishedURL,
		OccurredAt:   s.now(),
	}
	if _, err := s.events.PublishDemoEvent(ctx, event); err != nil {
		s.logger(ctx, "demo.event_failed", map[string]any{"type": eventType, "demoId": demo.ID, "error": err.Error()})
	}
}

func (s *demoService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrDemoNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrDemoConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrDemoRepositoryUnavailable, err)
		}
	}
	return fmt.Errorf("demo: %w", err)
}

func industryOf(data domain.PageData) string {
	return chooseFirstNonEmpty(strings.TrimSpace(data.Style.Industry), strings.TrimSpace(data.Industry))
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a business name into a URL path segment, e.g. "Café Rosé" → "cafe-rose".
func Slugify(name string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		folded = strings.ToLower(name)
	}
	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimSuffix(slug[:maxSlugLength], "-")
	}
	return slug
}

type inflightGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{keys: make(map[string]struct{})}
}

func (g *inflightGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

func (g *inflightGuard) held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.keys[key]
	return busy
}

func (g *inflightGuard) release(key string) {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
}

type noopMetrics struct{}

func (noopMetrics) IncSave(string)        {}
func (noopMetrics) IncAutosave(string)    {}
func (noopMetrics) IncGeneration(string)  {}
func (noopMetrics) IncClientError(string) {}
func (noopMetrics) IncPublish(string)     {}
