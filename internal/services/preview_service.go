package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/preview"
)

// ErrPreviewInvalidInput indicates the submitted page data failed validation.
var ErrPreviewInvalidInput = errors.New("preview: validation failed")

type previewService struct {
	renderer PageRenderer
}

var _ PreviewService = (*previewService)(nil)

// NewPreviewService renders unsaved page data with renderer, or the default
// renderer when nil.
func NewPreviewService(renderer PageRenderer) PreviewService {
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	return &previewService{renderer: renderer}
}

func (s *previewService) RenderPreview(ctx context.Context, data domain.PageData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	domain.EnsureItemIDs(&data, nil)
	if err := domain.ValidatePageData(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreviewInvalidInput, err)
	}
	return s.renderer.Render(preview.Page{Data: data, NoIndex: true})
}
