package domain

import (
	"time"
)

// Section identifies one editable content block of a generated site.
type Section string

const (
	SectionNavbar       Section = "navbar"
	SectionHero         Section = "hero"
	SectionServices     Section = "services"
	SectionGallery      Section = "gallery"
	SectionTestimonials Section = "testimonials"
	SectionBooking      Section = "booking"
	SectionFooter       Section = "footer"
)

// AllSections lists every section in rendering order.
var AllSections = []Section{
	SectionNavbar,
	SectionHero,
	SectionServices,
	SectionGallery,
	SectionTestimonials,
	SectionBooking,
	SectionFooter,
}

// ParseSection normalises a raw section identifier.
func ParseSection(raw string) (Section, bool) {
	for _, section := range AllSections {
		if string(section) == raw {
			return section, true
		}
	}
	return "", false
}

// PageData is the editable content of one demo site.
type PageData struct {
	BusinessName string `json:"businessName" validate:"max=120"`
	Industry     string `json:"industry,omitempty" validate:"omitempty,max=64"`
	Tagline      string `json:"tagline,omitempty" validate:"max=240"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Address      string `json:"address,omitempty" validate:"max=240"`
	Location     string `json:"location,omitempty" validate:"max=120"`

	Navbar       Navbar        `json:"navbar"`
	Hero         Hero          `json:"hero"`
	Services     []ServiceItem `json:"services" validate:"max=50,dive"`
	Gallery      Gallery       `json:"gallery"`
	Testimonials []Testimonial `json:"testimonials" validate:"max=50,dive"`
	Booking      Booking       `json:"booking"`
	Footer       Footer        `json:"footer"`
	Style        Style         `json:"style"`
}

// NavLink is a single navigation entry.
type NavLink struct {
	Label string `json:"label" validate:"required,max=40"`
	Href  string `json:"href" validate:"required,max=512"`
}

// Navbar holds the site header content.
type Navbar struct {
	Logo  string    `json:"logo,omitempty" validate:"omitempty,url"`
	Links []NavLink `json:"links,omitempty" validate:"max=12,dive"`
}

// CallToAction describes a button rendered in the hero section.
type CallToAction struct {
	Label string `json:"label,omitempty" validate:"max=40"`
	Href  string `json:"href,omitempty" validate:"max=512"`
}

// Hero holds the above-the-fold content.
//
// HeroImageExplicitlySet records that the owner picked (or cleared) the hero
// image in the editor; LegacyHeroImage carries the value older saved sites
// stored before the flag existed.
type Hero struct {
	HeroTitle              string       `json:"heroTitle" validate:"max=160"`
	HeroSubtitle           string       `json:"heroSubtitle,omitempty" validate:"max=320"`
	HeroImage              string       `json:"heroImage,omitempty" validate:"omitempty,url"`
	HeroImageExplicitlySet bool         `json:"heroImageExplicitlySet,omitempty"`
	LegacyHeroImage        string       `json:"legacyHeroImage,omitempty" validate:"omitempty,url"`
	CTA                    CallToAction `json:"cta"`
}

// ServiceItem is one bookable service.
type ServiceItem struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"max=120"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Price       string `json:"price,omitempty" validate:"max=40"`
	Duration    string `json:"duration,omitempty" validate:"max=40"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Featured    bool   `json:"featured,omitempty"`
}

// GalleryImage is one picture in the gallery section.
type GalleryImage struct {
	ID      string `json:"id"`
	URL     string `json:"url" validate:"omitempty,url"`
	Alt     string `json:"alt,omitempty" validate:"max=200"`
	Caption string `json:"caption,omitempty" validate:"max=200"`
}

// Gallery holds the ordered gallery images.
type Gallery struct {
	Images []GalleryImage `json:"images" validate:"max=60,dive"`
}

// Testimonial is a client review.
type Testimonial struct {
	ID        string `json:"id"`
	Author    string `json:"author" validate:"max=120"`
	Text      string `json:"text" validate:"max=1200"`
	Rating    int    `json:"rating,omitempty" validate:"min=0,max=5"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Featured  bool   `json:"featured,omitempty"`
}

// BusinessHours describes the opening times for a weekday.
type BusinessHours struct {
	Day    string `json:"day" validate:"required,weekday"`
	Open   string `json:"open,omitempty" validate:"omitempty,clock"`
	Close  string `json:"close,omitempty" validate:"omitempty,clock"`
	Closed bool   `json:"closed,omitempty"`
}

// Booking holds the reservation details.
type Booking struct {
	URL   string          `json:"url,omitempty" validate:"omitempty,url"`
	Phone string          `json:"phone,omitempty" validate:"max=40"`
	Hours []BusinessHours `json:"hours,omitempty" validate:"max=7,dive"`
}

// SocialLink points at one of the owner's social profiles.
type SocialLink struct {
	Platform string `json:"platform" validate:"required,max=40"`
	URL      string `json:"url" validate:"required,url"`
}

// Footer holds the closing content of the page.
type Footer struct {
	Copyright   string       `json:"copyright,omitempty" validate:"max=200"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty" validate:"max=12,dive"`
}

// BrandColors overrides the palette of the selected design system.
type BrandColors struct {
	Primary   string `json:"primary,omitempty" validate:"omitempty,hexcolor"`
	Secondary string `json:"secondary,omitempty" validate:"omitempty,hexcolor"`
	Accent    string `json:"accent,omitempty" validate:"omitempty,hexcolor"`
}

// IsZero reports whether no override was supplied.
func (b BrandColors) IsZero() bool {
	return b.Primary == "" && b.Secondary == "" && b.Accent == ""
}

// Style holds per-site presentation overrides.
type Style struct {
	SectionTheme string      `json:"sectionTheme,omitempty" validate:"omitempty,oneof=light dark auto industry beauty"`
	Industry     string      `json:"industry,omitempty" validate:"max=64"`
	BeautyID     string      `json:"beautyId,omitempty" validate:"max=64"`
	BrandColors  BrandColors `json:"brandColors"`
	FontOverride string      `json:"fontOverride,omitempty" validate:"omitempty,max=80,printascii,excludesall={}<>;'\\"`
}

// DemoStatus enumerates the lifecycle states of a saved demo.
type DemoStatus string

const (
	DemoStatusDraft     DemoStatus = "draft"
	DemoStatusPublished DemoStatus = "published"
)

// Demo is a saved, shareable instance of a generated site.
type Demo struct {
	ID           string
	OwnerID      string
	Slug         string
	Title        string
	Industry     string
	Data         PageData
	Status       DemoStatus
	PublishedURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  *time.Time
	DeletedAt    *time.Time
}

// Draft is an autosaved editor snapshot that has not been saved as a demo yet.
type Draft struct {
	SessionID string
	DemoID    string
	OwnerID   string
	Flow      string
	Current   Section
	Data      PageData
	SavedAt   time.Time
}

// SaveResult reports the outcome of an explicit save.
type SaveResult struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	RequiresAuth bool   `json:"requires_auth,omitempty"`
	DemoID       string `json:"demo_id,omitempty"`
}

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}
