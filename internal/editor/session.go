package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/chairlinked/api/internal/domain"
)

var (
	// ErrUnknownSection indicates the section is not part of the session's flow.
	ErrUnknownSection = errors.New("editor: unknown section")
	// ErrEmptyUpdate indicates a section update carried no fields for the section.
	ErrEmptyUpdate = errors.New("editor: update has no fields for section")
)

// Session is the state of one editing run over a flow. It is not safe for concurrent use.
type Session struct {
	ID          string
	DemoID      string
	OwnerID     string
	Flow        Flow
	Current     domain.Section
	Completed   map[domain.Section]bool
	Data        domain.PageData
	Saving      bool
	AutoSaving  bool
	AuthLoading bool
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession starts a session on the first section of flow.
func NewSession(id string, flow Flow, data domain.PageData, now time.Time) *Session {
	if _, ok := flowSections[flow]; !ok {
		flow = FlowAdvanced
	}
	domain.EnsureItemIDs(&data, nil)
	s := &Session{
		ID:        id,
		Flow:      flow,
		Current:   flowSections[flow][0],
		Data:      data,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.Recompute()
	return s
}

// Restore rebuilds a session from an autosaved draft.
func Restore(draft domain.Draft, now time.Time) *Session {
	flow, ok := ParseFlow(draft.Flow)
	if !ok {
		flow = FlowAdvanced
	}
	s := NewSession(draft.SessionID, flow, draft.Data, now)
	s.DemoID = draft.DemoID
	s.OwnerID = draft.OwnerID
	if flow.Contains(draft.Current) {
		s.Current = draft.Current
	}
	if !draft.SavedAt.IsZero() {
		s.UpdatedAt = draft.SavedAt
	}
	return s
}

// Snapshot converts the session into an autosave draft.
func (s *Session) Snapshot(now time.Time) domain.Draft {
	return domain.Draft{
		SessionID: s.ID,
		DemoID:    s.DemoID,
		OwnerID:   s.OwnerID,
		Flow:      string(s.Flow),
		Current:   s.Current,
		Data:      s.Data,
		SavedAt:   now,
	}
}

// Index returns the position of the current section.
func (s *Session) Index() int {
	return s.Flow.Index(s.Current)
}

// IsFirst reports whether the current section is the first of the flow.
func (s *Session) IsFirst() bool { return s.Index() == 0 }

// IsLast reports whether the current section is the last of the flow.
func (s *Session) IsLast() bool { return s.Index() == len(flowSections[s.Flow])-1 }

// Next advances to the following section; it stays put on the last one.
func (s *Session) Next() domain.Section {
	sections := flowSections[s.Flow]
	if i := s.Index(); i >= 0 && i < len(sections)-1 {
		s.Current = sections[i+1]
	}
	return s.Current
}

// Previous moves back one section; it stays put on the first one.
func (s *Session) Previous() domain.Section {
	sections := flowSections[s.Flow]
	if i := s.Index(); i > 0 {
		s.Current = sections[i-1]
	}
	return s.Current
}

// JumpTo moves directly to section. Incomplete sections never block a jump.
func (s *Session) JumpTo(section domain.Section) error {
	if !s.Flow.Contains(section) {
		return fmt.Errorf("%w: %q is not part of the %s flow", ErrUnknownSection, section, s.Flow)
	}
	s.Current = section
	return nil
}

// SectionUpdate carries replacement content for one section. Only the fields
// owned by the targeted section are applied.
type SectionUpdate struct {
	BusinessName *string              `json:"businessName,omitempty"`
	Tagline      *string              `json:"tagline,omitempty"`
	Phone        *string              `json:"phone,omitempty"`
	Email        *string              `json:"email,omitempty"`
	Address      *string              `json:"address,omitempty"`
	Navbar       *domain.Navbar       `json:"navbar,omitempty"`
	Hero         *domain.Hero         `json:"hero,omitempty"`
	Services     []domain.ServiceItem `json:"services,omitempty"`
	Gallery      *domain.Gallery      `json:"gallery,omitempty"`
	Testimonials []domain.Testimonial `json:"testimonials,omitempty"`
	Booking      *domain.Booking      `json:"booking,omitempty"`
	Footer       *domain.Footer       `json:"footer,omitempty"`
	Style        *domain.Style        `json:"style,omitempty"`
	// Clear empties the list sections (services, testimonials) when set.
	Clear bool `json:"clear,omitempty"`
}

// Apply returns a copy of data with the update applied to section.
func (u SectionUpdate) Apply(section domain.Section, data domain.PageData) (domain.PageData, error) {
	applied := false
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			applied = true
		}
	}

	switch section {
	case domain.SectionNavbar:
		set(&data.BusinessName, u.BusinessName)
		set(&data.Tagline, u.Tagline)
		if u.Navbar != nil {
			data.Navbar = *u.Navbar
			applied = true
		}
	case domain.SectionHero:
		if u.Hero != nil {
			hero := *u.Hero
			// once the user picks or clears an image the legacy fallback stays off
			hero.HeroImageExplicitlySet = hero.HeroImageExplicitlySet ||
				data.Hero.HeroImageExplicitlySet ||
				hero.HeroImage != data.Hero.HeroImage
			if hero.LegacyHeroImage == "" {
				hero.LegacyHeroImage = data.Hero.LegacyHeroImage
			}
			data.Hero = hero
			applied = true
		}
	case domain.SectionServices:
		if u.Services != nil || u.Clear {
			data.Services = append([]domain.ServiceItem(nil), u.Services...)
			applied = true
		}
	case domain.SectionGallery:
		if u.Gallery != nil {
			data.Gallery = domain.Gallery{Images: append([]domain.GalleryImage(nil), u.Gallery.Images...)}
			applied = true
		}
	case domain.SectionTestimonials:
		if u.Testimonials != nil || u.Clear {
			data.Testimonials = append([]domain.Testimonial(nil), u.Testimonials...)
			applied = true
		}
	case domain.SectionBooking:
		set(&data.Phone, u.Phone)
		if u.Booking != nil {
			data.Booking = *u.Booking
			applied = true
		}
	case domain.SectionFooter:
		set(&data.Phone, u.Phone)
		set(&data.Email, u.Email)
		set(&data.Address, u.Address)
		if u.Footer != nil {
			data.Footer = *u.Footer
			applied = true
		}
	default:
		return data, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	if u.Style != nil {
		data.Style = *u.Style
		applied = true
	}
	if !applied {
		return data, fmt.Errorf("%w %q", ErrEmptyUpdate, section)
	}
	return data, nil
}

// UpdateSection validates and applies an update, then recomputes completion.
// On error the session is left unchanged.
func (s *Session) UpdateSection(section domain.Section, update SectionUpdate, now time.Time) error {
	if !s.Flow.Contains(section) {
		return fmt.Errorf("%w: %q is not part of the %s flow", ErrUnknownSection, section, s.Flow)
	}
	next, err := update.Apply(section, cloneData(s.Data))
	if err != nil {
		return err
	}
	domain.EnsureItemIDs(&next, nil)
	if err := domain.ValidatePageData(next); err != nil {
		return err
	}
	s.Data = next
	s.UpdatedAt = now
	s.Recompute()
	return nil
}

// Recompute rebuilds the completed set from the current data.
func (s *Session) Recompute() {
	completed := make(map[domain.Section]bool, len(flowSections[s.Flow]))
	for _, section := range flowSections[s.Flow] {
		if IsSectionCompleted(section, s.Data) {
			completed[section] = true
		}
	}
	s.Completed = completed
}

// CompletedList returns the completed sections in flow order.
func (s *Session) CompletedList() []domain.Section {
	out := make([]domain.Section, 0, len(s.Completed))
	for _, section := range flowSections[s.Flow] {
		if s.Completed[section] {
			out = append(out, section)
		}
	}
	return out
}

// Progress summarises how much of the flow is complete.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Progress reports completion across the flow.
func (s *Session) Progress() Progress {
	total := len(flowSections[s.Flow])
	done := len(s.CompletedList())
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	return Progress{Completed: done, Total: total, Percent: pct}
}

// SaveDisabled reports whether the session's save button is disabled.
func (s *Session) SaveDisabled() bool {
	return SaveButtonDisabled(s.Saving, s.AutoSaving, s.AuthLoading)
}

func cloneData(data domain.PageData) domain.PageData {
	out := data
	out.Navbar.Links = append([]domain.NavLink(nil), data.Navbar.Links...)
	out.Services = append([]domain.ServiceItem(nil), data.Services...)
	out.Gallery.Images = append([]domain.GalleryImage(nil), data.Gallery.Images...)
	out.Testimonials = append([]domain.Testimonial(nil), data.Testimonials...)
	out.Booking.Hours = append([]domain.BusinessHours(nil), data.Booking.Hours...)
	out.Footer.SocialLinks = append([]domain.SocialLink(nil), data.Footer.SocialLinks...)
	return out
}
