// Package editor models the multi-step site editor: the fixed section flows,
// the session that walks them, per-section completion and save feedback.
package editor

import (
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// Flow selects which sections an editing session walks through.
type Flow string

const (
	FlowSimple   Flow = "simple"
	FlowAdvanced Flow = "advanced"
)

var flowSections = map[Flow][]domain.Section{
	FlowAdvanced: {
		domain.SectionNavbar,
		domain.SectionHero,
		domain.SectionServices,
		domain.SectionGallery,
		domain.SectionTestimonials,
		domain.SectionBooking,
		domain.SectionFooter,
	},
	FlowSimple: {
		domain.SectionHero,
		domain.SectionServices,
		domain.SectionGallery,
		domain.SectionTestimonials,
		domain.SectionBooking,
	},
}

// ParseFlow maps raw input to a Flow. Empty input selects the advanced flow.
func ParseFlow(raw string) (Flow, bool) {
	switch Flow(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FlowAdvanced:
		return FlowAdvanced, true
	case FlowSimple:
		return FlowSimple, true
	default:
		return "", false
	}
}

// Sections returns the ordered sections of the flow.
func (f Flow) Sections() []domain.Section {
	sections, ok := flowSections[f]
	if !ok {
		sections = flowSections[FlowAdvanced]
	}
	out := make([]domain.Section, len(sections))
	copy(out, sections)
	return out
}

// Index returns the position of section within the flow, or -1.
func (f Flow) Index(section domain.Section) int {
	for i, s := range flowSections[f] {
		if s == section {
			return i
		}
	}
	return -1
}

// Contains reports whether the flow includes section.
func (f Flow) Contains(section domain.Section) bool {
	return f.Index(section) >= 0
}
