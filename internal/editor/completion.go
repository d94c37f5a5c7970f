package editor

import (
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

func filled(v string) bool {
	return strings.TrimSpace(v) != ""
}

// IsSectionCompleted reports whether data carries the minimum content for section.
// The check is recomputed from scratch each time, so clearing a required field
// marks the section incomplete again.
func IsSectionCompleted(section domain.Section, data domain.PageData) bool {
	switch section {
	case domain.SectionNavbar:
		return filled(data.BusinessName)
	case domain.SectionHero:
		return filled(data.Hero.HeroTitle)
	case domain.SectionServices:
		for _, svc := range data.Services {
			if filled(svc.Name) {
				return true
			}
		}
		return false
	case domain.SectionGallery:
		return len(data.Gallery.Images) > 0 && filled(data.Gallery.Images[0].URL)
	case domain.SectionTestimonials:
		for _, t := range data.Testimonials {
			if filled(t.Text) {
				return true
			}
		}
		return false
	case domain.SectionBooking:
		return filled(data.Booking.URL) || filled(data.Booking.Phone)
	case domain.SectionFooter:
		return filled(data.BusinessName) && (filled(data.Phone) || filled(data.Email) || filled(data.Address))
	default:
		return false
	}
}

// CompletedSections returns the completed sections of flow, in flow order.
func CompletedSections(flow Flow, data domain.PageData) []domain.Section {
	out := make([]domain.Section, 0, len(flowSections[flow]))
	for _, section := range flow.Sections() {
		if IsSectionCompleted(section, data) {
			out = append(out, section)
		}
	}
	return out
}
