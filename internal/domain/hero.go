package domain

import "strings"

// ResolveHeroImage picks the hero image to render.
//
// An explicit editor choice always wins, including an explicit removal. Sites
// saved before the flag existed keep whatever image they stored, and only pages
// with no stored image fall back to the industry default.
func ResolveHeroImage(hero Hero, industryDefault string) string {
	if hero.HeroImageExplicitlySet {
		return strings.TrimSpace(hero.HeroImage)
	}
	if legacy := strings.TrimSpace(hero.LegacyHeroImage); legacy != "" {
		return legacy
	}
	if current := strings.TrimSpace(hero.HeroImage); current != "" {
		return current
	}
	return industryDefault
}

// SetHeroImage records an editor choice for the hero image.
func (h *Hero) SetHeroImage(url string) {
	h.HeroImage = strings.TrimSpace(url)
	h.HeroImageExplicitlySet = true
}
