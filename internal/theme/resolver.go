package theme

import (
	"fmt"
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// SectionTheme selects how a page section is colored.
type SectionTheme string

const (
	SectionThemeLight    SectionTheme = "light"
	SectionThemeDark     SectionTheme = "dark"
	SectionThemeAuto     SectionTheme = "auto"
	SectionThemeIndustry SectionTheme = "industry"
	SectionThemeBeauty   SectionTheme = "beauty"
)

// ParseSectionTheme maps raw input to a SectionTheme, defaulting to light.
func ParseSectionTheme(raw string) SectionTheme {
	switch SectionTheme(strings.ToLower(strings.TrimSpace(raw))) {
	case SectionThemeDark:
		return SectionThemeDark
	case SectionThemeAuto:
		return SectionThemeAuto
	case SectionThemeIndustry:
		return SectionThemeIndustry
	case SectionThemeBeauty:
		return SectionThemeBeauty
	default:
		return SectionThemeLight
	}
}

// SectionClasses is the resolved presentation of one section.
type SectionClasses struct {
	Theme   SectionTheme `json:"theme"`
	Section string       `json:"section"`
	Wrapper string       `json:"wrapper"`
	Heading string       `json:"heading"`
	Body    string       `json:"body"`
	Card    string       `json:"card"`
	Accent  string       `json:"accent"`
	Button  string       `json:"button"`
	Style   string       `json:"style,omitempty"`
}

var staticClasses = map[SectionTheme]SectionClasses{
	SectionThemeLight: {
		Wrapper: "bg-white text-gray-900",
		Heading: "text-gray-900 font-bold",
		Body:    "text-gray-600",
		Card:    "bg-white border border-gray-200 shadow-sm",
		Accent:  "text-purple-600",
		Button:  "bg-purple-600 text-white hover:bg-purple-700",
	},
	SectionThemeDark: {
		Wrapper: "bg-gray-900 text-white",
		Heading: "text-white font-bold",
		Body:    "text-gray-300",
		Card:    "bg-gray-800 border border-gray-700 shadow-lg",
		Accent:  "text-purple-400",
		Button:  "bg-purple-500 text-white hover:bg-purple-400",
	},
	SectionThemeAuto: {
		Wrapper: "bg-white text-gray-900 dark:bg-gray-900 dark:text-white",
		Heading: "text-gray-900 dark:text-white font-bold",
		Body:    "text-gray-600 dark:text-gray-300",
		Card:    "bg-white border border-gray-200 shadow-sm dark:bg-gray-800 dark:border-gray-700",
		Accent:  "text-purple-600 dark:text-purple-400",
		Button:  "bg-purple-600 text-white hover:bg-purple-700 dark:bg-purple-500",
	},
}

// ResolveSectionClasses computes classes for a section. The industry and beauty
// themes delegate to their design systems and carry the values as inline custom
// properties; every other theme uses the static class tables.
func ResolveSectionClasses(t SectionTheme, section, industry, beauty string, brand *domain.BrandColors) SectionClasses {
	section = strings.TrimSpace(section)
	switch t {
	case SectionThemeIndustry:
		resolved := ResolveIndustryTheme(industry, section, brand)
		return systemClasses(t, section, "industry", resolved)
	case SectionThemeBeauty:
		resolved := ResolveBeautyTheme(beauty, section, brand)
		return systemClasses(t, section, "beauty", resolved)
	}

	classes, ok := staticClasses[t]
	if !ok {
		t = SectionThemeLight
		classes = staticClasses[t]
	}
	classes.Theme = t
	classes.Section = section
	return classes
}

func systemClasses(t SectionTheme, section, prefix string, resolved ResolvedTheme) SectionClasses {
	v := resolved.Values
	base := prefix + "-section"
	return SectionClasses{
		Theme:   t,
		Section: section,
		Wrapper: fmt.Sprintf("%s %s--%s %s--layout-%s", base, base, section, base, v["section-layout"]),
		Heading: prefix + "-heading",
		Body:    prefix + "-body",
		Card:    prefix + "-card",
		Accent:  prefix + "-accent",
		Button:  prefix + "-button",
		Style: fmt.Sprintf("background: %s; color: %s; padding: %s; font-family: %s;",
			v["section-background"], v["section-text"], v["section-padding"], v["font-body"]),
	}
}

// StylesheetRequest selects the design systems included in a generated stylesheet.
type StylesheetRequest struct {
	Theme    SectionTheme
	Industry string
	BeautyID string
	Brand    domain.BrandColors
}

// Stylesheet returns the complete CSS for a site: base tokens followed by the
// selected design system's custom properties and component rules.
func Stylesheet(req StylesheetRequest) string {
	var b strings.Builder
	b.WriteString(TokenCSS())

	if req.Theme == SectionThemeBeauty {
		cfg := ApplyBeautyBrandColors(GetBeautyConfig(req.BeautyID), req.Brand)
		b.WriteString(GenerateBeautyCSSVariables(cfg))
		b.WriteString(componentRules("beauty"))
		return b.String()
	}

	cfg := ApplyBrandColors(GetDesignConfig(req.Industry), req.Brand)
	b.WriteString(GenerateCSSVariables(cfg))
	b.WriteString(componentRules("industry"))
	return b.String()
}

// FontsURL returns the Google Fonts stylesheet matching Stylesheet.
func FontsURL(req StylesheetRequest) string {
	if req.Theme == SectionThemeBeauty {
		return BeautyGoogleFontsURL(GetBeautyConfig(req.BeautyID))
	}
	return GoogleFontsURL(GetDesignConfig(req.Industry))
}

func componentRules(prefix string) string {
	p := "--" + prefix + "-"
	return fmt.Sprintf(`.%[1]s-heading { font-family: var(%[2]sfont-heading); }
.%[1]s-body { font-family: var(%[2]sfont-body); color: var(%[2]stext); }
.%[1]s-card { background: var(%[2]ssurface); border: 1px solid var(%[2]sborder); border-radius: var(%[2]sborder-radius); box-shadow: var(%[2]sshadow-card); }
.%[1]s-accent { color: var(%[2]saccent); }
.%[1]s-button { background: var(%[2]sprimary); color: #ffffff; box-shadow: var(%[2]sshadow-button); transition: all var(%[2]sanimation-duration) var(%[2]sanimation-easing); }
`, prefix, p)
}
