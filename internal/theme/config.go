package theme

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// Palette holds the semantic colors of a design system.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	TextMuted  string `json:"text_muted"`
	Border     string `json:"border"`
}

// GoogleFont names a family served by Google Fonts and the weights to load.
type GoogleFont struct {
	Family  string `json:"family"`
	Weights []int  `json:"weights"`
}

// Typography holds font stacks and the web fonts backing them.
type Typography struct {
	HeadingFont string       `json:"heading_font"`
	BodyFont    string       `json:"body_font"`
	Fonts       []GoogleFont `json:"fonts"`
}

// Spacing holds layout rhythm values.
type Spacing struct {
	SectionPadding    string `json:"section_padding"`
	ContainerMaxWidth string `json:"container_max_width"`
	CardGap           string `json:"card_gap"`
	BorderRadius      string `json:"border_radius"`
}

// Shadows holds elevation styles.
type Shadows struct {
	Card     string `json:"card"`
	Button   string `json:"button"`
	Elevated string `json:"elevated"`
}

// Animation holds motion timing.
type Animation struct {
	Duration string `json:"duration"`
	Easing   string `json:"easing"`
}

// SectionStyle describes how a single page section is painted.
type SectionStyle struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Padding    string `json:"padding"`
	Layout     string `json:"layout"`
}

// System is the common shape of the industry and beauty design systems.
type System struct {
	Palette    Palette                 `json:"colors"`
	Typography Typography              `json:"typography"`
	Spacing    Spacing                 `json:"spacing"`
	Shadows    Shadows                 `json:"shadows"`
	Animation  Animation               `json:"animation"`
	Sections   map[string]SectionStyle `json:"sections"`
}

func (s System) clone() System {
	out := s
	out.Typography.Fonts = make([]GoogleFont, len(s.Typography.Fonts))
	for i, f := range s.Typography.Fonts {
		out.Typography.Fonts[i] = GoogleFont{Family: f.Family, Weights: append([]int(nil), f.Weights...)}
	}
	out.Sections = make(map[string]SectionStyle, len(s.Sections))
	for k, v := range s.Sections {
		out.Sections[k] = v
	}
	return out
}

func (s System) withBrand(brand domain.BrandColors) System {
	out := s.clone()
	if v := strings.TrimSpace(brand.Primary); v != "" {
		out.Palette.Primary = v
	}
	if v := strings.TrimSpace(brand.Secondary); v != "" {
		out.Palette.Secondary = v
	}
	if v := strings.TrimSpace(brand.Accent); v != "" {
		out.Palette.Accent = v
	}
	return out
}

// SectionStyle returns the style for a named section, falling back to the base surface.
func (s System) SectionStyle(section string) SectionStyle {
	if style, ok := s.Sections[strings.TrimSpace(section)]; ok {
		return style
	}
	return SectionStyle{
		Background: s.Palette.Background,
		Text:       s.Palette.Text,
		Padding:    s.Spacing.SectionPadding,
		Layout:     "default",
	}
}

func (s System) variables(prefix string) []cssVar {
	p := prefix
	return []cssVar{
		{name: p + "primary", value: s.Palette.Primary},
		{name: p + "secondary", value: s.Palette.Secondary},
		{name: p + "accent", value: s.Palette.Accent},
		{name: p + "background", value: s.Palette.Background},
		{name: p + "surface", value: s.Palette.Surface},
		{name: p + "text", value: s.Palette.Text},
		{name: p + "text-muted", value: s.Palette.TextMuted},
		{name: p + "border", value: s.Palette.Border},
		{name: p + "font-heading", value: s.Typography.HeadingFont},
		{name: p + "font-body", value: s.Typography.BodyFont},
		{name: p + "section-padding", value: s.Spacing.SectionPadding},
		{name: p + "container-max-width", value: s.Spacing.ContainerMaxWidth},
		{name: p + "card-gap", value: s.Spacing.CardGap},
		{name: p + "border-radius", value: s.Spacing.BorderRadius},
		{name: p + "shadow-card", value: s.Shadows.Card},
		{name: p + "shadow-button", value: s.Shadows.Button},
		{name: p + "shadow-elevated", value: s.Shadows.Elevated},
		{name: p + "animation-duration", value: s.Animation.Duration},
		{name: p + "animation-easing", value: s.Animation.Easing},
	}
}

// flatten returns CSS-ready values keyed by property name, including the selected section.
func (s System) flatten(section string) map[string]string {
	out := make(map[string]string, 24)
	for _, v := range s.variables("") {
		out[v.name] = v.value
	}
	style := s.SectionStyle(section)
	out["section-background"] = style.Background
	out["section-text"] = style.Text
	out["section-padding"] = style.Padding
	out["section-layout"] = style.Layout
	return out
}

const googleFontsBase = "https://fonts.googleapis.com/css2"

// googleFontsURL builds a css2 URL loading every distinct family once.
func googleFontsURL(fonts []GoogleFont) string {
	if len(fonts) == 0 {
		return ""
	}
	seen := make(map[string]int, len(fonts))
	merged := make([]GoogleFont, 0, len(fonts))
	for _, f := range fonts {
		family := strings.TrimSpace(f.Family)
		if family == "" {
			continue
		}
		if idx, ok := seen[family]; ok {
			merged[idx].Weights = mergeWeights(merged[idx].Weights, f.Weights)
			continue
		}
		seen[family] = len(merged)
		merged = append(merged, GoogleFont{Family: family, Weights: mergeWeights(nil, f.Weights)})
	}
	if len(merged) == 0 {
		return ""
	}

	params := make([]string, 0, len(merged)+1)
	for _, f := range merged {
		param := "family=" + url.QueryEscape(f.Family)
		if len(f.Weights) > 0 {
			weights := make([]string, len(f.Weights))
			for i, w := range f.Weights {
				weights[i] = strconv.Itoa(w)
			}
			param += ":wght@" + strings.Join(weights, ";")
		}
		params = append(params, param)
	}
	params = append(params, "display=swap")
	return fmt.Sprintf("%s?%s", googleFontsBase, strings.Join(params, "&"))
}

func mergeWeights(current, extra []int) []int {
	set := make(map[int]struct{}, len(current)+len(extra))
	out := make([]int, 0, len(current)+len(extra))
	for _, list := range [][]int{current, extra} {
		for _, w := range list {
			if w <= 0 {
				continue
			}
			if _, ok := set[w]; ok {
				continue
			}
			set[w] = struct{}{}
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// defaultSections derives the per-section table from a palette.
func defaultSections(p Palette, sp Spacing) map[string]SectionStyle {
	return map[string]SectionStyle{
		"navbar":       {Background: p.Surface, Text: p.Text, Padding: "1rem 1.5rem", Layout: "split"},
		"hero":         {Background: fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 100%%)", p.Primary, p.Secondary), Text: "#ffffff", Padding: "6rem 1.5rem", Layout: "centered"},
		"services":     {Background: p.Background, Text: p.Text, Padding: sp.SectionPadding, Layout: "grid"},
		"gallery":      {Background: p.Surface, Text: p.Text, Padding: sp.SectionPadding, Layout: "grid"},
		"testimonials": {Background: p.Background, Text: p.Text, Padding: sp.SectionPadding, Layout: "carousel"},
		"booking":      {Background: p.Primary, Text: "#ffffff", Padding: sp.SectionPadding, Layout: "centered"},
		"footer":       {Background: p.Text, Text: p.Background, Padding: "3rem 1.5rem", Layout: "columns"},
	}
}

func newSystem(p Palette, heading, body GoogleFont, sp Spacing, sh Shadows, anim Animation, overrides map[string]SectionStyle) System {
	sections := defaultSections(p, sp)
	for k, v := range overrides {
		sections[k] = v
	}
	return System{
		Palette: p,
		Typography: Typography{
			HeadingFont: fontStack(heading.Family, "serif"),
			BodyFont:    fontStack(body.Family, "sans-serif"),
			Fonts:       []GoogleFont{heading, body},
		},
		Spacing:   sp,
		Shadows:   sh,
		Animation: anim,
		Sections:  sections,
	}
}

func fontStack(family, generic string) string {
	return fmt.Sprintf("'%s', %s", family, generic)
}

var (
	softSpacing   = Spacing{SectionPadding: "5rem 1.5rem", ContainerMaxWidth: "72rem", CardGap: "1.5rem", BorderRadius: "1rem"}
	crispSpacing  = Spacing{SectionPadding: "4rem 1.5rem", ContainerMaxWidth: "76rem", CardGap: "1.25rem", BorderRadius: "0.25rem"}
	airySpacing   = Spacing{SectionPadding: "6rem 2rem", ContainerMaxWidth: "70rem", CardGap: "2rem", BorderRadius: "1.5rem"}
	softShadows   = Shadows{Card: "0 10px 30px -12px rgb(0 0 0 / 0.15)", Button: "0 4px 14px 0 rgb(0 0 0 / 0.12)", Elevated: "0 25px 50px -12px rgb(0 0 0 / 0.25)"}
	crispShadows  = Shadows{Card: "0 1px 3px 0 rgb(0 0 0 / 0.2)", Button: "0 1px 2px 0 rgb(0 0 0 / 0.25)", Elevated: "0 10px 15px -3px rgb(0 0 0 / 0.3)"}
	gentleMotion  = Animation{Duration: "400ms", Easing: "cubic-bezier(0.4, 0, 0.2, 1)"}
	snappyMotion  = Animation{Duration: "200ms", Easing: "cubic-bezier(0.2, 0.8, 0.2, 1)"}
	relaxedMotion = Animation{Duration: "700ms", Easing: "cubic-bezier(0.25, 0.1, 0.25, 1)"}
)
