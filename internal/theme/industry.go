package theme

import (
	"sort"
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// IndustryID identifies a vertical served by the industry design system.
type IndustryID string

const (
	IndustryHairStylist      IndustryID = "hair_stylist"
	IndustryBarber           IndustryID = "barber"
	IndustryNailTechnician   IndustryID = "nail_technician"
	IndustryEsthetician      IndustryID = "esthetician"
	IndustryMassageTherapist IndustryID = "massage_therapist"
	IndustryMakeupArtist     IndustryID = "makeup_artist"
	IndustryLashTechnician   IndustryID = "lash_technician"
	IndustrySpa              IndustryID = "spa"
	IndustryTattooArtist     IndustryID = "tattoo_artist"
	IndustryPhotographer     IndustryID = "photographer"
	IndustryFitnessTrainer   IndustryID = "fitness_trainer"

	// DefaultIndustry is returned for unknown identifiers.
	DefaultIndustry = IndustryHairStylist
)

const industryVarPrefix = "--industry-"

// DesignConfig is the static style record for one industry.
type DesignConfig struct {
	ID   IndustryID `json:"id"`
	Name string     `json:"name"`
	System
}

// ResolvedTheme is a flat map of CSS-ready values for one section.
type ResolvedTheme struct {
	ID      string            `json:"id"`
	Section string            `json:"section,omitempty"`
	Values  map[string]string `json:"values"`
}

func font(family string, weights ...int) GoogleFont {
	return GoogleFont{Family: family, Weights: weights}
}

var industryConfigs = map[IndustryID]DesignConfig{
	IndustryHairStylist: {
		ID:   IndustryHairStylist,
		Name: "Hair Stylist",
		System: newSystem(
			Palette{Primary: "#8b5cf6", Secondary: "#ec4899", Accent: "#f59e0b", Background: "#faf5ff", Surface: "#ffffff", Text: "#1f2937", TextMuted: "#6b7280", Border: "#e9d5ff"},
			font("Playfair Display", 400, 600, 700), font("Inter", 400, 500, 600),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	IndustryBarber: {
		ID:   IndustryBarber,
		Name: "Barber",
		System: newSystem(
			Palette{Primary: "#1e3a8a", Secondary: "#b91c1c", Accent: "#d4af37", Background: "#f8fafc", Surface: "#ffffff", Text: "#111827", TextMuted: "#4b5563", Border: "#cbd5e1"},
			font("Oswald", 500, 700), font("Roboto", 400, 500),
			crispSpacing, crispShadows, snappyMotion,
			map[string]SectionStyle{"services": {Background: "#0f172a", Text: "#f8fafc", Padding: crispSpacing.SectionPadding, Layout: "list"}},
		),
	},
	IndustryNailTechnician: {
		ID:   IndustryNailTechnician,
		Name: "Nail Technician",
		System: newSystem(
			Palette{Primary: "#ec4899", Secondary: "#f472b6", Accent: "#a855f7", Background: "#fdf2f8", Surface: "#ffffff", Text: "#1f2937", TextMuted: "#6b7280", Border: "#fbcfe8"},
			font("Poppins", 500, 600, 700), font("Nunito", 400, 600),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	IndustryEsthetician: {
		ID:   IndustryEsthetician,
		Name: "Esthetician",
		System: newSystem(
			Palette{Primary: "#10b981", Secondary: "#6ee7b7", Accent: "#f9a8d4", Background: "#f0fdf4", Surface: "#ffffff", Text: "#064e3b", TextMuted: "#4b5563", Border: "#bbf7d0"},
			font("Cormorant Garamond", 500, 600, 700), font("Lato", 400, 700),
			airySpacing, softShadows, relaxedMotion, nil,
		),
	},
	IndustryMassageTherapist: {
		ID:   IndustryMassageTherapist,
		Name: "Massage Therapist",
		System: newSystem(
			Palette{Primary: "#0d9488", Secondary: "#5eead4", Accent: "#d97706", Background: "#f0fdfa", Surface: "#ffffff", Text: "#134e4a", TextMuted: "#4b5563", Border: "#99f6e4"},
			font("Lora", 400, 600), font("Open Sans", 400, 600),
			airySpacing, softShadows, relaxedMotion, nil,
		),
	},
	IndustryMakeupArtist: {
		ID:   IndustryMakeupArtist,
		Name: "Makeup Artist",
		System: newSystem(
			Palette{Primary: "#db2777", Secondary: "#1f2937", Accent: "#fbbf24", Background: "#fff1f2", Surface: "#ffffff", Text: "#1f2937", TextMuted: "#6b7280", Border: "#fecdd3"},
			font("Playfair Display", 400, 700), font("Montserrat", 400, 500, 600),
			softSpacing, softShadows, gentleMotion,
			map[string]SectionStyle{"gallery": {Background: "#1f2937", Text: "#fff1f2", Padding: softSpacing.SectionPadding, Layout: "masonry"}},
		),
	},
	IndustryLashTechnician: {
		ID:   IndustryLashTechnician,
		Name: "Lash Technician",
		System: newSystem(
			Palette{Primary: "#7c3aed", Secondary: "#f0abfc", Accent: "#111827", Background: "#faf5ff", Surface: "#ffffff", Text: "#111827", TextMuted: "#6b7280", Border: "#e9d5ff"},
			font("Cormorant Garamond", 500, 700), font("Raleway", 400, 500),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	IndustrySpa: {
		ID:   IndustrySpa,
		Name: "Spa",
		System: newSystem(
			Palette{Primary: "#059669", Secondary: "#a7f3d0", Accent: "#c084fc", Background: "#ecfdf5", Surface: "#ffffff", Text: "#064e3b", TextMuted: "#4b5563", Border: "#a7f3d0"},
			font("Cormorant Garamond", 400, 600), font("Nunito Sans", 400, 600),
			airySpacing, softShadows, relaxedMotion, nil,
		),
	},
	IndustryTattooArtist: {
		ID:   IndustryTattooArtist,
		Name: "Tattoo Artist",
		System: newSystem(
			Palette{Primary: "#dc2626", Secondary: "#111827", Accent: "#facc15", Background: "#0a0a0a", Surface: "#171717", Text: "#f5f5f5", TextMuted: "#a3a3a3", Border: "#262626"},
			font("Bebas Neue", 400), font("Inter", 400, 600),
			crispSpacing, crispShadows, snappyMotion,
			map[string]SectionStyle{"footer": {Background: "#000000", Text: "#a3a3a3", Padding: "3rem 1.5rem", Layout: "columns"}},
		),
	},
	IndustryPhotographer: {
		ID:   IndustryPhotographer,
		Name: "Photographer",
		System: newSystem(
			Palette{Primary: "#111827", Secondary: "#6b7280", Accent: "#f59e0b", Background: "#ffffff", Surface: "#f9fafb", Text: "#111827", TextMuted: "#6b7280", Border: "#e5e7eb"},
			font("DM Serif Display", 400), font("DM Sans", 400, 500, 700),
			airySpacing, crispShadows, gentleMotion,
			map[string]SectionStyle{"gallery": {Background: "#ffffff", Text: "#111827", Padding: "2rem 0", Layout: "masonry"}},
		),
	},
	IndustryFitnessTrainer: {
		ID:   IndustryFitnessTrainer,
		Name: "Fitness Trainer",
		System: newSystem(
			Palette{Primary: "#f97316", Secondary: "#0f172a", Accent: "#22c55e", Background: "#fff7ed", Surface: "#ffffff", Text: "#0f172a", TextMuted: "#475569", Border: "#fed7aa"},
			font("Montserrat", 600, 800), font("Inter", 400, 500),
			crispSpacing, crispShadows, snappyMotion, nil,
		),
	},
}

// NormalizeIndustry maps free-form input (e.g. "Hair Stylist") to a known id.
func NormalizeIndustry(raw string) (IndustryID, bool) {
	key := IndustryID(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	key = IndustryID(strings.ReplaceAll(string(key), "-", "_"))
	_, ok := industryConfigs[key]
	return key, ok
}

// GetDesignConfig returns the config for an industry. Unknown ids get the default config.
func GetDesignConfig(id string) DesignConfig {
	key, ok := NormalizeIndustry(id)
	if !ok {
		key = DefaultIndustry
	}
	cfg := industryConfigs[key]
	cfg.System = cfg.System.clone()
	return cfg
}

// ListIndustries returns the known industry ids in lexical order.
func ListIndustries() []IndustryID {
	ids := make([]IndustryID, 0, len(industryConfigs))
	for id := range industryConfigs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ApplyBrandColors returns a copy of cfg with the non-empty brand colors applied.
func ApplyBrandColors(cfg DesignConfig, brand domain.BrandColors) DesignConfig {
	cfg.System = cfg.System.withBrand(brand)
	return cfg
}

// SectionStyleFor looks up the per-section style of an industry config.
func SectionStyleFor(cfg DesignConfig, section string) SectionStyle {
	return cfg.SectionStyle(section)
}

// ResolveIndustryTheme performs lookup, brand override and section lookup in one step.
func ResolveIndustryTheme(id, section string, brand *domain.BrandColors) ResolvedTheme {
	cfg := GetDesignConfig(id)
	if brand != nil {
		cfg = ApplyBrandColors(cfg, *brand)
	}
	return ResolvedTheme{
		ID:      string(cfg.ID),
		Section: strings.TrimSpace(section),
		Values:  cfg.flatten(section),
	}
}

// GenerateCSSVariables renders the config as --industry-* custom properties.
func GenerateCSSVariables(cfg DesignConfig) string {
	return renderRoot(cfg.variables(industryVarPrefix))
}

// GoogleFontsURL returns the stylesheet URL for the config's web fonts.
func GoogleFontsURL(cfg DesignConfig) string {
	return googleFontsURL(cfg.Typography.Fonts)
}
