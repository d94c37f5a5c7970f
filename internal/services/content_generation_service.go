package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chairlinked/api/internal/content"
	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/ai"
	"github.com/chairlinked/api/internal/platform/images"
	"github.com/chairlinked/api/internal/theme"
)

// ErrContentInvalidInput indicates the generation request is incomplete.
var ErrContentInvalidInput = errors.New("content: validation failed")

const (
	defaultGalleryCount = 6
	maxRequestServices  = 12
)

// CopyGenerator writes marketing copy for a business.
type CopyGenerator interface {
	GenerateCopy(ctx context.Context, prompt ai.Prompt) (ai.Copy, error)
}

// ImageCurator finds stock photography for a business.
type ImageCurator interface {
	HeroImage(ctx context.Context, industry, vibe string) (images.Photo, error)
	GalleryImages(ctx context.Context, industry string, count int, vibe string) ([]images.Photo, error)
	ServiceImages(ctx context.Context, industry string, count int) ([]images.Photo, error)
}

// ContentGenerationServiceDeps bundles the collaborators of the generation service.
// Both clients are optional; without them every request is served from the
// static industry templates.
type ContentGenerationServiceDeps struct {
	Copy         CopyGenerator
	Images       ImageCurator
	GalleryCount int
	Metrics      Metrics
	Logger       func(context.Context, string, map[string]any)
}

type contentGenerationService struct {
	copy         CopyGenerator
	images       ImageCurator
	galleryCount int
	metrics      Metrics
	logger       func(context.Context, string, map[string]any)
}

var _ ContentGenerationService = (*contentGenerationService)(nil)

// NewContentGenerationService wires the generation service.
func NewContentGenerationService(deps ContentGenerationServiceDeps) (ContentGenerationService, error) {
	count := deps.GalleryCount
	if count <= 0 {
		count = defaultGalleryCount
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &contentGenerationService{
		copy:         deps.Copy,
		images:       deps.Images,
		galleryCount: count,
		metrics:      metrics,
		logger:       logger,
	}, nil
}

// generation collects the client outputs. Fields are written by separate goroutines.
type generation struct {
	mu       sync.Mutex
	copy     *ai.Copy
	hero     *images.Photo
	gallery  []images.Photo
	services []images.Photo
	imageHit bool
}

func (s *contentGenerationService) GenerateContent(ctx context.Context, req GenerationRequest) (content.Generated, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return content.Generated{}, fmt.Errorf("%w: business name is required", ErrContentInvalidInput)
	}
	industry := string(theme.DefaultIndustry)
	if id, ok := theme.NormalizeIndustry(req.Industry); ok {
		industry = string(id)
	}

	tmpl := content.Fallback(industry).Personalize(name, req.Location)
	gen := content.FromTemplate(tmpl, name)
	gen.Industry = industry

	started := time.Now()
	out := &generation{}
	var g errgroup.Group

	if s.copy != nil {
		g.Go(func() error {
			generated, err := s.copy.GenerateCopy(ctx, ai.Prompt{
				BusinessName: name,
				Industry:     industry,
				Location:     strings.TrimSpace(req.Location),
				Vibe:         strings.TrimSpace(req.Vibe),
				Services:     trimServices(req.Services),
			})
			if err != nil {
				s.clientFailed(ctx, "ai", err)
				return nil
			}
			if generated.Empty() {
				return nil
			}
			out.mu.Lock()
			out.copy = &generated
			out.mu.Unlock()
			return nil
		})
	}

	if s.images != nil {
		g.Go(func() error {
			photo, err := s.images.HeroImage(ctx, industry, req.Vibe)
			if err != nil {
				s.clientFailed(ctx, "images", err)
				return nil
			}
			out.mu.Lock()
			out.hero = &photo
			out.imageHit = true
			out.mu.Unlock()
			return nil
		})
		g.Go(func() error {
			photos, err := s.images.GalleryImages(ctx, industry, s.galleryCount, req.Vibe)
			if err != nil {
				s.clientFailed(ctx, "images", err)
				return nil
			}
			out.mu.Lock()
			out.gallery = photos
			out.imageHit = out.imageHit || len(photos) > 0
			out.mu.Unlock()
			return nil
		})
		g.Go(func() error {
			photos, err := s.images.ServiceImages(ctx, industry, len(gen.Services))
			if err != nil {
				s.clientFailed(ctx, "images", err)
				return nil
			}
			out.mu.Lock()
			out.services = photos
			out.imageHit = out.imageHit || len(photos) > 0
			out.mu.Unlock()
			return nil
		})
	}

	// Client failures are swallowed above, so Wait only synchronises.
	_ = g.Wait()

	gen = mergeGeneration(gen, out)
	gen.Source = sourceOf(s.copy != nil || s.images != nil, out)

	s.metrics.IncGeneration(string(gen.Source))
	s.logger(ctx, "content.generated", map[string]any{
		"industry":   industry,
		"source":     string(gen.Source),
		"durationMs": time.Since(started).Milliseconds(),
	})
	return gen, nil
}

func (s *contentGenerationService) clientFailed(ctx context.Context, client string, err error) {
	if errors.Is(err, ai.ErrDisabled) || errors.Is(err, images.ErrDisabled) {
		return
	}
	s.metrics.IncClientError(client)
	s.logger(ctx, "content.client_failed", map[string]any{"client": client, "error": err.Error()})
}

func mergeGeneration(gen content.Generated, out *generation) content.Generated {
	if c := out.copy; c != nil {
		gen.Tagline = chooseFirstNonEmpty(c.Tagline, gen.Tagline)
		gen.HeroTitle = chooseFirstNonEmpty(c.HeroTitle, gen.HeroTitle)
		gen.HeroSubtitle = chooseFirstNonEmpty(c.HeroSubtitle, gen.HeroSubtitle)
		gen.CTALabel = chooseFirstNonEmpty(c.CTALabel, gen.CTALabel)

		if len(c.Services) > 0 {
			curated := content.ServiceImages(gen.Industry, len(c.Services))
			services := make([]domain.ServiceItem, 0, len(c.Services))
			for i, svc := range c.Services {
				item := domain.ServiceItem{
					Name:        strings.TrimSpace(svc.Name),
					Description: strings.TrimSpace(svc.Description),
					Price:       strings.TrimSpace(svc.Price),
					Duration:    strings.TrimSpace(svc.Duration),
				}
				if item.Name == "" {
					continue
				}
				if i < len(curated) {
					item.ImageURL = curated[i]
				}
				services = append(services, item)
			}
			if len(services) > 0 {
				gen.Services = services
			}
		}

		if len(c.Testimonials) > 0 {
			reviews := make([]domain.Testimonial, 0, len(c.Testimonials))
			for _, r := range c.Testimonials {
				if strings.TrimSpace(r.Text) == "" {
					continue
				}
				reviews = append(reviews, domain.Testimonial{
					Author: strings.TrimSpace(r.Author),
					Text:   strings.TrimSpace(r.Text),
					Rating: clampRating(r.Rating),
				})
			}
			if len(reviews) > 0 {
				gen.Testimonials = reviews
			}
		}
	}

	if out.hero != nil && out.hero.URL != "" {
		gen.HeroImage = out.hero.URL
	}
	if len(out.gallery) > 0 {
		gallery := make([]domain.GalleryImage, 0, len(out.gallery))
		for _, photo := range out.gallery {
			if photo.URL == "" {
				continue
			}
			gallery = append(gallery, domain.GalleryImage{URL: photo.URL, Alt: chooseFirstNonEmpty(photo.Alt, gen.BusinessName)})
		}
		if len(gallery) > 0 {
			gen.GalleryImages = gallery
		}
	}
	for i := range gen.Services {
		if i < len(out.services) && out.services[i].URL != "" {
			gen.Services[i].ImageURL = out.services[i].URL
		}
	}
	return gen
}

func sourceOf(clientsConfigured bool, out *generation) content.Source {
	if !clientsConfigured {
		return content.SourceFallback
	}
	textHit := out.copy != nil
	switch {
	case textHit && out.imageHit:
		return content.SourceAI
	case textHit || out.imageHit:
		return content.SourcePartial
	default:
		return content.SourceFallback
	}
}

func trimServices(in []string) []string {
	out := make([]string, 0, len(in))
	for _, svc := range in {
		if svc = strings.TrimSpace(svc); svc != "" {
			out = append(out, svc)
		}
		if len(out) == maxRequestServices {
			break
		}
	}
	return out
}

func clampRating(r int) int {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	default:
		return r
	}
}
