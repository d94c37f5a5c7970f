package theme

import (
	"fmt"
	"strings"
)

// TokenGroup is an ordered set of named design values.
type TokenGroup struct {
	Names  []string
	Values map[string]string
}

func (g TokenGroup) clone() TokenGroup {
	names := make([]string, len(g.Names))
	copy(names, g.Names)
	values := make(map[string]string, len(g.Values))
	for k, v := range g.Values {
		values[k] = v
	}
	return TokenGroup{Names: names, Values: values}
}

// Value returns the token value, or the empty string when it is not declared.
func (g TokenGroup) Value(name string) string {
	return g.Values[name]
}

// TokenSet holds the base design tokens shared by every site.
type TokenSet struct {
	ColorNames []string
	Colors     map[string]TokenGroup
	Spacing    TokenGroup
	FontFamily TokenGroup
	FontSize   TokenGroup
	FontWeight TokenGroup
	Radius     TokenGroup
	Shadow     TokenGroup
	LineHeight TokenGroup
}

// Shades lists the color scale steps every semantic color declares.
var Shades = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}

func scale(values ...string) TokenGroup {
	if len(values) != len(Shades) {
		panic(fmt.Sprintf("theme: color scale needs %d shades, got %d", len(Shades), len(values)))
	}
	g := TokenGroup{Names: Shades, Values: make(map[string]string, len(values))}
	for i, shade := range Shades {
		g.Values[shade] = values[i]
	}
	return g
}

func group(pairs ...string) TokenGroup {
	g := TokenGroup{Values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Names = append(g.Names, pairs[i])
		g.Values[pairs[i]] = pairs[i+1]
	}
	return g
}

var baseTokens = TokenSet{
	ColorNames: []string{"primary", "secondary", "accent", "neutral", "success", "warning", "error"},
	Colors: map[string]TokenGroup{
		"primary":   scale("#f5f3ff", "#ede9fe", "#ddd6fe", "#c4b5fd", "#a78bfa", "#8b5cf6", "#7c3aed", "#6d28d9", "#5b21b6", "#4c1d95"),
		"secondary": scale("#fdf2f8", "#fce7f3", "#fbcfe8", "#f9a8d4", "#f472b6", "#ec4899", "#db2777", "#be185d", "#9d174d", "#831843"),
		"accent":    scale("#fffbeb", "#fef3c7", "#fde68a", "#fcd34d", "#fbbf24", "#f59e0b", "#d97706", "#b45309", "#92400e", "#78350f"),
		"neutral":   scale("#f9fafb", "#f3f4f6", "#e5e7eb", "#d1d5db", "#9ca3af", "#6b7280", "#4b5563", "#374151", "#1f2937", "#111827"),
		"success":   scale("#f0fdf4", "#dcfce7", "#bbf7d0", "#86efac", "#4ade80", "#22c55e", "#16a34a", "#15803d", "#166534", "#14532d"),
		"warning":   scale("#fefce8", "#fef9c3", "#fef08a", "#fde047", "#facc15", "#eab308", "#ca8a04", "#a16207", "#854d0e", "#713f12"),
		"error":     scale("#fef2f2", "#fee2e2", "#fecaca", "#fca5a5", "#f87171", "#ef4444", "#dc2626", "#b91c1c", "#991b1b", "#7f1d1d"),
	},
	Spacing: group(
		"xs", "0.25rem",
		"sm", "0.5rem",
		"md", "1rem",
		"lg", "1.5rem",
		"xl", "2rem",
		"2xl", "3rem",
		"3xl", "4rem",
	),
	FontFamily: group(
		"sans", "'Inter', system-ui, -apple-system, sans-serif",
		"serif", "'Playfair Display', Georgia, serif",
		"mono", "'JetBrains Mono', ui-monospace, monospace",
	),
	FontSize: group(
		"xs", "0.75rem",
		"sm", "0.875rem",
		"base", "1rem",
		"lg", "1.125rem",
		"xl", "1.25rem",
		"2xl", "1.5rem",
		"3xl", "1.875rem",
		"4xl", "2.25rem",
		"5xl", "3rem",
	),
	FontWeight: group(
		"light", "300",
		"normal", "400",
		"medium", "500",
		"semibold", "600",
		"bold", "700",
	),
	Radius: group(
		"none", "0",
		"sm", "0.125rem",
		"md", "0.375rem",
		"lg", "0.5rem",
		"xl", "0.75rem",
		"full", "9999px",
	),
	Shadow: group(
		"sm", "0 1px 2px 0 rgb(0 0 0 / 0.05)",
		"md", "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
		"lg", "0 10px 15px -3px rgb(0 0 0 / 0.1), 0 4px 6px -4px rgb(0 0 0 / 0.1)",
		"xl", "0 20px 25px -5px rgb(0 0 0 / 0.1), 0 8px 10px -6px rgb(0 0 0 / 0.1)",
		"2xl", "0 25px 50px -12px rgb(0 0 0 / 0.25)",
	),
	LineHeight: group(
		"tight", "1.25",
		"normal", "1.5",
		"relaxed", "1.75",
	),
}

// Tokens returns a copy of the base design tokens.
func Tokens() TokenSet {
	out := TokenSet{
		ColorNames: append([]string(nil), baseTokens.ColorNames...),
		Colors:     make(map[string]TokenGroup, len(baseTokens.Colors)),
		Spacing:    baseTokens.Spacing.clone(),
		FontFamily: baseTokens.FontFamily.clone(),
		FontSize:   baseTokens.FontSize.clone(),
		FontWeight: baseTokens.FontWeight.clone(),
		Radius:     baseTokens.Radius.clone(),
		Shadow:     baseTokens.Shadow.clone(),
		LineHeight: baseTokens.LineHeight.clone(),
	}
	for name, g := range baseTokens.Colors {
		out.Colors[name] = g.clone()
	}
	return out
}

// Color looks up a semantic color shade, e.g. Color("primary", "500").
func Color(name, shade string) (string, bool) {
	g, ok := baseTokens.Colors[name]
	if !ok {
		return "", false
	}
	v, ok := g.Values[shade]
	return v, ok
}

// TokenCSS renders every base token as a CSS custom property inside one :root block.
func TokenCSS() string {
	var vars []cssVar
	for _, name := range baseTokens.ColorNames {
		g := baseTokens.Colors[name]
		for _, shade := range g.Names {
			vars = append(vars, cssVar{name: "--color-" + name + "-" + shade, value: g.Values[shade]})
		}
	}
	vars = appendGroup(vars, "--spacing-", baseTokens.Spacing)
	vars = appendGroup(vars, "--font-family-", baseTokens.FontFamily)
	vars = appendGroup(vars, "--font-size-", baseTokens.FontSize)
	vars = appendGroup(vars, "--font-weight-", baseTokens.FontWeight)
	vars = appendGroup(vars, "--radius-", baseTokens.Radius)
	vars = appendGroup(vars, "--shadow-", baseTokens.Shadow)
	vars = appendGroup(vars, "--line-height-", baseTokens.LineHeight)
	return renderRoot(vars)
}

// TokenCount reports how many custom properties TokenCSS declares.
func TokenCount() int {
	n := 0
	for _, name := range baseTokens.ColorNames {
		n += len(baseTokens.Colors[name].Names)
	}
	for _, g := range []TokenGroup{baseTokens.Spacing, baseTokens.FontFamily, baseTokens.FontSize, baseTokens.FontWeight, baseTokens.Radius, baseTokens.Shadow, baseTokens.LineHeight} {
		n += len(g.Names)
	}
	return n
}

type cssVar struct {
	name  string
	value string
}

func appendGroup(vars []cssVar, prefix string, g TokenGroup) []cssVar {
	for _, name := range g.Names {
		vars = append(vars, cssVar{name: prefix + name, value: g.Values[name]})
	}
	return vars
}

func renderRoot(vars []cssVar) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range vars {
		b.WriteString("  ")
		b.WriteString(v.name)
		b.WriteString(": ")
		b.WriteString(v.value)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
