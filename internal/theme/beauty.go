package theme

import (
	"sort"
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// BeautyID identifies a salon type in the beauty design system.
type BeautyID string

const (
	BeautyHairSalon    BeautyID = "hair_salon"
	BeautyNailSalon    BeautyID = "nail_salon"
	BeautySpa          BeautyID = "spa"
	BeautyBarbershop   BeautyID = "barbershop"
	BeautyLashStudio   BeautyID = "lash_studio"
	BeautyBrowBar      BeautyID = "brow_bar"
	BeautyMakeupStudio BeautyID = "makeup_studio"
	BeautyWellness     BeautyID = "wellness"

	DefaultBeauty = BeautyHairSalon
)

const beautyVarPrefix = "--beauty-"

// BeautyConfig is the static style record for one salon type.
type BeautyConfig struct {
	ID   BeautyID `json:"id"`
	Name string   `json:"name"`
	Mood string   `json:"mood"`
	System
}

var beautyConfigs = map[BeautyID]BeautyConfig{
	BeautyHairSalon: {
		ID: BeautyHairSalon, Name: "Hair Salon", Mood: "modern-chic",
		System: newSystem(
			Palette{Primary: "#9333ea", Secondary: "#f472b6", Accent: "#fcd34d", Background: "#fdf4ff", Surface: "#ffffff", Text: "#1e1b4b", TextMuted: "#6b7280", Border: "#f5d0fe"},
			font("Playfair Display", 400, 700), font("Poppins", 300, 400, 500),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	BeautyNailSalon: {
		ID: BeautyNailSalon, Name: "Nail Salon", Mood: "playful",
		System: newSystem(
			Palette{Primary: "#f43f5e", Secondary: "#fda4af", Accent: "#14b8a6", Background: "#fff1f2", Surface: "#ffffff", Text: "#4c0519", TextMuted: "#9f1239", Border: "#fecdd3"},
			font("Quicksand", 500, 700), font("Nunito", 400, 600),
			softSpacing, softShadows, snappyMotion, nil,
		),
	},
	BeautySpa: {
		ID: BeautySpa, Name: "Spa", Mood: "serene",
		System: newSystem(
			Palette{Primary: "#0f766e", Secondary: "#ccfbf1", Accent: "#b45309", Background: "#f0fdfa", Surface: "#ffffff", Text: "#134e4a", TextMuted: "#5b7c79", Border: "#99f6e4"},
			font("Cormorant Garamond", 400, 600), font("Jost", 300, 400),
			airySpacing, softShadows, relaxedMotion, nil,
		),
	},
	BeautyBarbershop: {
		ID: BeautyBarbershop, Name: "Barbershop", Mood: "classic",
		System: newSystem(
			Palette{Primary: "#78350f", Secondary: "#1c1917", Accent: "#ca8a04", Background: "#fafaf9", Surface: "#ffffff", Text: "#1c1917", TextMuted: "#57534e", Border: "#d6d3d1"},
			font("Oswald", 500, 700), font("Source Sans 3", 400, 600),
			crispSpacing, crispShadows, snappyMotion, nil,
		),
	},
	BeautyLashStudio: {
		ID: BeautyLashStudio, Name: "Lash Studio", Mood: "glam",
		System: newSystem(
			Palette{Primary: "#6d28d9", Secondary: "#fbcfe8", Accent: "#000000", Background: "#faf5ff", Surface: "#ffffff", Text: "#111827", TextMuted: "#6b7280", Border: "#ddd6fe"},
			font("Cinzel", 400, 600), font("Raleway", 400, 500),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	BeautyBrowBar: {
		ID: BeautyBrowBar, Name: "Brow Bar", Mood: "refined",
		System: newSystem(
			Palette{Primary: "#a16207", Secondary: "#fde68a", Accent: "#7c2d12", Background: "#fffbeb", Surface: "#ffffff", Text: "#422006", TextMuted: "#78716c", Border: "#fde68a"},
			font("Libre Baskerville", 400, 700), font("Work Sans", 400, 500),
			softSpacing, softShadows, gentleMotion, nil,
		),
	},
	BeautyMakeupStudio: {
		ID: BeautyMakeupStudio, Name: "Makeup Studio", Mood: "bold",
		System: newSystem(
			Palette{Primary: "#be123c", Secondary: "#111827", Accent: "#f59e0b", Background: "#fff1f2", Surface: "#ffffff", Text: "#111827", TextMuted: "#6b7280", Border: "#fecdd3"},
			font("Playfair Display", 700), font("Montserrat", 400, 600),
			softSpacing, crispShadows, snappyMotion,
			map[string]SectionStyle{"gallery": {Background: "#111827", Text: "#fff1f2", Padding: softSpacing.SectionPadding, Layout: "masonry"}},
		),
	},
	BeautyWellness: {
		ID: BeautyWellness, Name: "Wellness", Mood: "natural",
		System: newSystem(
			Palette{Primary: "#4d7c0f", Secondary: "#d9f99d", Accent: "#c2410c", Background: "#f7fee7", Surface: "#ffffff", Text: "#1a2e05", TextMuted: "#57534e", Border: "#d9f99d"},
			font("Fraunces", 400, 600), font("Karla", 400, 500),
			airySpacing, softShadows, relaxedMotion, nil,
		),
	},
}

// GetBeautyConfig returns the config for a salon type. Unknown ids get the default config.
func GetBeautyConfig(id string) BeautyConfig {
	key := BeautyID(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), "-", "_"))
	cfg, ok := beautyConfigs[key]
	if !ok {
		cfg = beautyConfigs[DefaultBeauty]
	}
	cfg.System = cfg.System.clone()
	return cfg
}

// ListBeautyConfigs returns the known salon ids in lexical order.
func ListBeautyConfigs() []BeautyID {
	ids := make([]BeautyID, 0, len(beautyConfigs))
	for id := range beautyConfigs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ApplyBeautyBrandColors returns a copy of cfg with the non-empty brand colors applied.
func ApplyBeautyBrandColors(cfg BeautyConfig, brand domain.BrandColors) BeautyConfig {
	cfg.System = cfg.System.withBrand(brand)
	return cfg
}

// ResolveBeautyTheme mirrors ResolveIndustryTheme for the beauty tables.
func ResolveBeautyTheme(id, section string, brand *domain.BrandColors) ResolvedTheme {
	cfg := GetBeautyConfig(id)
	if brand != nil {
		cfg = ApplyBeautyBrandColors(cfg, *brand)
	}
	values := cfg.flatten(section)
	values["mood"] = cfg.Mood
	return ResolvedTheme{
		ID:      string(cfg.ID),
		Section: strings.TrimSpace(section),
		Values:  values,
	}
}

// GenerateBeautyCSSVariables renders the config as --beauty-* custom properties.
func GenerateBeautyCSSVariables(cfg BeautyConfig) string {
	return renderRoot(cfg.variables(beautyVarPrefix))
}

// BeautyGoogleFontsURL returns the stylesheet URL for the config's web fonts.
func BeautyGoogleFontsURL(cfg BeautyConfig) string {
	return googleFontsURL(cfg.Typography.Fonts)
}
