package theme

import (
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/chairlinked/api/internal/domain"
)

var declPattern = regexp.MustCompile(`(?m)^\s*(--[a-z0-9-]+):\s*(.+);$`)

func declarations(t *testing.T, css string) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, m := range declPattern.FindAllStringSubmatch(css, -1) {
		if _, dup := out[m[1]]; dup {
			t.Fatalf("custom property %s declared more than once", m[1])
		}
		out[m[1]] = m[2]
	}
	return out
}

func TestGetDesignConfigHairStylistPrimary(t *testing.T) {
	cfg := GetDesignConfig("hair_stylist")
	if cfg.ID != IndustryHairStylist {
		t.Fatalf("expected hair_stylist, got %s", cfg.ID)
	}
	if cfg.Palette.Primary != "#8b5cf6" {
		t.Fatalf("expected primary #8b5cf6, got %s", cfg.Palette.Primary)
	}
}

func TestGetDesignConfigUnknownFallsBackToDefault(t *testing.T) {
	want := GetDesignConfig("hair_stylist")
	for _, id := range []string{"foo", "", "  ", "dentist"} {
		got := GetDesignConfig(id)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %q to resolve to the hair_stylist config", id)
		}
	}
}

func TestGetDesignConfigNormalisesInput(t *testing.T) {
	if cfg := GetDesignConfig("Tattoo Artist"); cfg.ID != IndustryTattooArtist {
		t.Fatalf("expected tattoo_artist, got %s", cfg.ID)
	}
	if cfg := GetDesignConfig("massage-therapist"); cfg.ID != IndustryMassageTherapist {
		t.Fatalf("expected massage_therapist, got %s", cfg.ID)
	}
}

func TestGetDesignConfigReturnsCopy(t *testing.T) {
	cfg := GetDesignConfig("barber")
	cfg.Sections["hero"] = SectionStyle{Background: "mutated"}
	cfg.Typography.Fonts[0].Family = "mutated"

	again := GetDesignConfig("barber")
	if again.Sections["hero"].Background == "mutated" {
		t.Fatalf("section table leaked a mutation")
	}
	if again.Typography.Fonts[0].Family == "mutated" {
		t.Fatalf("font table leaked a mutation")
	}
}

func TestApplyBrandColors(t *testing.T) {
	base := GetDesignConfig("spa")
	branded := ApplyBrandColors(base, domain.BrandColors{Primary: "#123456"})

	if branded.Palette.Primary != "#123456" {
		t.Fatalf("expected primary override, got %s", branded.Palette.Primary)
	}
	if branded.Palette.Secondary != base.Palette.Secondary {
		t.Fatalf("expected secondary to be kept, got %s", branded.Palette.Secondary)
	}
	if GetDesignConfig("spa").Palette.Primary == "#123456" {
		t.Fatalf("brand override mutated the static table")
	}
}

func TestResolveIndustryTheme(t *testing.T) {
	resolved := ResolveIndustryTheme("photographer", "gallery", &domain.BrandColors{Accent: "#ff0000"})
	if resolved.ID != string(IndustryPhotographer) {
		t.Fatalf("unexpected id %s", resolved.ID)
	}
	if resolved.Values["accent"] != "#ff0000" {
		t.Fatalf("expected accent override, got %s", resolved.Values["accent"])
	}
	if resolved.Values["section-layout"] != "masonry" {
		t.Fatalf("expected masonry gallery, got %s", resolved.Values["section-layout"])
	}

	missing := ResolveIndustryTheme("photographer", "pricing", nil)
	if missing.Values["section-background"] != missing.Values["background"] {
		t.Fatalf("expected unknown section to use the base background")
	}
}

func TestGenerateCSSVariablesDeclaresEveryTokenOnce(t *testing.T) {
	brands := []domain.BrandColors{{}, {Primary: "#000000"}, {Primary: "#111111", Secondary: "#222222", Accent: "#333333"}}
	for _, id := range ListIndustries() {
		for _, brand := range brands {
			cfg := ApplyBrandColors(GetDesignConfig(string(id)), brand)
			css := GenerateCSSVariables(cfg)
			decls := declarations(t, css)
			vars := cfg.variables(industryVarPrefix)
			if len(decls) != len(vars) {
				t.Fatalf("%s: expected %d declarations, got %d", id, len(vars), len(decls))
			}
			for _, v := range vars {
				if decls[v.name] != v.value {
					t.Fatalf("%s: expected %s=%q, got %q", id, v.name, v.value, decls[v.name])
				}
			}
			if !strings.HasPrefix(css, ":root {") {
				t.Fatalf("expected :root block, got %q", css[:20])
			}
		}
	}
}

func TestGenerateBeautyCSSVariables(t *testing.T) {
	for _, id := range ListBeautyConfigs() {
		cfg := GetBeautyConfig(string(id))
		decls := declarations(t, GenerateBeautyCSSVariables(cfg))
		if len(decls) != len(cfg.variables(beautyVarPrefix)) {
			t.Fatalf("%s: unexpected declaration count %d", id, len(decls))
		}
		for name := range decls {
			if !strings.HasPrefix(name, beautyVarPrefix) {
				t.Fatalf("%s: unexpected property %s", id, name)
			}
		}
	}
}

func TestGetBeautyConfigFallback(t *testing.T) {
	if cfg := GetBeautyConfig("unknown"); cfg.ID != DefaultBeauty {
		t.Fatalf("expected default beauty config, got %s", cfg.ID)
	}
	if cfg := GetBeautyConfig("lash-studio"); cfg.ID != BeautyLashStudio {
		t.Fatalf("expected lash_studio, got %s", cfg.ID)
	}
}

func TestTokenCSSDeclaresEveryTokenOnce(t *testing.T) {
	decls := declarations(t, TokenCSS())
	if len(decls) != TokenCount() {
		t.Fatalf("expected %d tokens, got %d", TokenCount(), len(decls))
	}
	if decls["--color-primary-500"] != "#8b5cf6" {
		t.Fatalf("unexpected primary-500 %q", decls["--color-primary-500"])
	}
	if _, ok := decls["--spacing-3xl"]; !ok {
		t.Fatalf("expected spacing-3xl token")
	}
}

func TestTokensReturnsCopy(t *testing.T) {
	tokens := Tokens()
	tokens.Colors["primary"].Values["500"] = "#000000"
	tokens.Spacing.Values["md"] = "99rem"

	if v, _ := Color("primary", "500"); v != "#8b5cf6" {
		t.Fatalf("token copy leaked a mutation: %s", v)
	}
	if Tokens().Spacing.Value("md") != "1rem" {
		t.Fatalf("spacing copy leaked a mutation")
	}
}

func TestGoogleFontsURL(t *testing.T) {
	got := googleFontsURL([]GoogleFont{
		{Family: "Inter", Weights: []int{400}},
		{Family: "Inter", Weights: []int{600, 400}},
		{Family: "Playfair Display", Weights: []int{700}},
		{Family: " "},
	})
	want := "https://fonts.googleapis.com/css2?family=Inter:wght@400;600&family=Playfair+Display:wght@700&display=swap"
	if got != want {
		t.Fatalf("expected %s\n got %s", want, got)
	}
	if googleFontsURL(nil) != "" {
		t.Fatalf("expected empty url for no fonts")
	}

	hair := GoogleFontsURL(GetDesignConfig("hair_stylist"))
	if !strings.Contains(hair, "family=Playfair+Display:wght@400;600;700") {
		t.Fatalf("unexpected hair stylist fonts url %s", hair)
	}
}

func TestParseSectionTheme(t *testing.T) {
	cases := map[string]SectionTheme{
		"dark":     SectionThemeDark,
		" Auto ":   SectionThemeAuto,
		"industry": SectionThemeIndustry,
		"beauty":   SectionThemeBeauty,
		"neon":     SectionThemeLight,
		"":         SectionThemeLight,
	}
	for raw, want := range cases {
		if got := ParseSectionTheme(raw); got != want {
			t.Fatalf("ParseSectionTheme(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestResolveSectionClasses(t *testing.T) {
	dark := ResolveSectionClasses(SectionThemeDark, "hero", "", "", nil)
	if dark.Wrapper != "bg-gray-900 text-white" || dark.Style != "" {
		t.Fatalf("unexpected dark classes %+v", dark)
	}

	fallback := ResolveSectionClasses(SectionTheme("neon"), "hero", "", "", nil)
	if fallback.Theme != SectionThemeLight {
		t.Fatalf("expected unknown theme to fall back to light, got %s", fallback.Theme)
	}

	industry := ResolveSectionClasses(SectionThemeIndustry, "booking", "hair_stylist", "", nil)
	if !strings.Contains(industry.Style, "background: #8b5cf6") {
		t.Fatalf("expected booking background from industry primary, got %q", industry.Style)
	}
	if !strings.Contains(industry.Wrapper, "industry-section--booking") {
		t.Fatalf("unexpected wrapper %q", industry.Wrapper)
	}

	beauty := ResolveSectionClasses(SectionThemeBeauty, "hero", "", "spa", nil)
	if !strings.HasPrefix(beauty.Wrapper, "beauty-section") {
		t.Fatalf("unexpected beauty wrapper %q", beauty.Wrapper)
	}
}

func TestStylesheet(t *testing.T) {
	css := Stylesheet(StylesheetRequest{Theme: SectionThemeIndustry, Industry: "foo", Brand: domain.BrandColors{Accent: "#abcdef"}})
	if strings.Count(css, "--industry-primary:") != 1 {
		t.Fatalf("expected exactly one industry primary declaration")
	}
	if !strings.Contains(css, "--industry-primary: #8b5cf6;") {
		t.Fatalf("expected default industry primary")
	}
	if !strings.Contains(css, "--industry-accent: #abcdef;") {
		t.Fatalf("expected accent override")
	}
	if !strings.Contains(css, "--color-neutral-900") {
		t.Fatalf("expected base tokens")
	}

	beauty := Stylesheet(StylesheetRequest{Theme: SectionThemeBeauty, BeautyID: "wellness"})
	if strings.Contains(beauty, "--industry-") || !strings.Contains(beauty, "--beauty-primary: #4d7c0f;") {
		t.Fatalf("unexpected beauty stylesheet")
	}
}
