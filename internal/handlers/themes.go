package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/httpx"
	"github.com/chairlinked/api/internal/theme"
)

// ThemeHandlers exposes the static design systems to site renderers and the editor.
type ThemeHandlers struct{}

// NewThemeHandlers constructs the public theme endpoints.
func NewThemeHandlers() *ThemeHandlers {
	return &ThemeHandlers{}
}

// Routes registers the /themes endpoints.
func (h *ThemeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/industries", h.listIndustries)
	r.Get("/industries/{industryID}", h.getIndustry)
	r.Get("/industries/{industryID}/css", h.industryCSS)
	r.Get("/beauty", h.listBeauty)
	r.Get("/beauty/{beautyID}", h.getBeauty)
	r.Get("/beauty/{beautyID}/css", h.beautyCSS)
	r.Get("/resolve", h.resolve)
	r.Get("/tokens.css", h.tokensCSS)
	r.Get("/stylesheet.css", h.stylesheet)
}

type themeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mood string `json:"mood,omitempty"`
}

type themeListResponse struct {
	Items []themeSummary `json:"items"`
}

type industryResponse struct {
	theme.DesignConfig
	FontsURL string `json:"fonts_url"`
}

type beautyResponse struct {
	theme.BeautyConfig
	FontsURL string `json:"fonts_url"`
}

func (h *ThemeHandlers) listIndustries(w http.ResponseWriter, r *http.Request) {
	ids := theme.ListIndustries()
	items := make([]themeSummary, 0, len(ids))
	for _, id := range ids {
		cfg := theme.GetDesignConfig(string(id))
		items = append(items, themeSummary{ID: string(cfg.ID), Name: cfg.Name})
	}
	writeJSONResponse(w, http.StatusOK, themeListResponse{Items: items})
}

func (h *ThemeHandlers) getIndustry(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.industryConfig(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, industryResponse{DesignConfig: cfg, FontsURL: theme.GoogleFontsURL(cfg)})
}

func (h *ThemeHandlers) industryCSS(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.industryConfig(w, r)
	if !ok {
		return
	}
	writeCSSResponse(w, theme.GenerateCSSVariables(cfg))
}

func (h *ThemeHandlers) industryConfig(w http.ResponseWriter, r *http.Request) (theme.DesignConfig, bool) {
	ctx := r.Context()
	raw := chi.URLParam(r, "industryID")
	if _, ok := theme.NormalizeIndustry(raw); !ok {
		httpx.WriteError(ctx, w, httpx.NewError("theme_not_found", "unknown industry "+strings.TrimSpace(raw), http.StatusNotFound))
		return theme.DesignConfig{}, false
	}
	brand, ok := brandFromQuery(ctx, w, r)
	if !ok {
		return theme.DesignConfig{}, false
	}
	return theme.ApplyBrandColors(theme.GetDesignConfig(raw), brand), true
}

func (h *ThemeHandlers) listBeauty(w http.ResponseWriter, r *http.Request) {
	ids := theme.ListBeautyConfigs()
	items := make([]themeSummary, 0, len(ids))
	for _, id := range ids {
		cfg := theme.GetBeautyConfig(string(id))
		items = append(items, themeSummary{ID: string(cfg.ID), Name: cfg.Name, Mood: cfg.Mood})
	}
	writeJSONResponse(w, http.StatusOK, themeListResponse{Items: items})
}

func (h *ThemeHandlers) getBeauty(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.beautyConfig(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, beautyResponse{BeautyConfig: cfg, FontsURL: theme.BeautyGoogleFontsURL(cfg)})
}

func (h *ThemeHandlers) beautyCSS(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.beautyConfig(w, r)
	if !ok {
		return
	}
	writeCSSResponse(w, theme.GenerateBeautyCSSVariables(cfg))
}

func (h *ThemeHandlers) beautyConfig(w http.ResponseWriter, r *http.Request) (theme.BeautyConfig, bool) {
	ctx := r.Context()
	raw := chi.URLParam(r, "beautyID")
	if !knownBeauty(raw) {
		httpx.WriteError(ctx, w, httpx.NewError("theme_not_found", "unknown beauty theme "+strings.TrimSpace(raw), http.StatusNotFound))
		return theme.BeautyConfig{}, false
	}
	brand, ok := brandFromQuery(ctx, w, r)
	if !ok {
		return theme.BeautyConfig{}, false
	}
	return theme.ApplyBeautyBrandColors(theme.GetBeautyConfig(raw), brand), true
}

func (h *ThemeHandlers) resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	brand, ok := brandFromQuery(ctx, w, r)
	if !ok {
		return
	}
	var brandPtr *domain.BrandColors
	if !brand.IsZero() {
		brandPtr = &brand
	}
	classes := theme.ResolveSectionClasses(
		theme.ParseSectionTheme(query.Get("theme")),
		query.Get("section"),
		query.Get("industry"),
		query.Get("beauty"),
		brandPtr,
	)
	writeJSONResponse(w, http.StatusOK, classes)
}

func (h *ThemeHandlers) tokensCSS(w http.ResponseWriter, r *http.Request) {
	writeCSSResponse(w, theme.TokenCSS())
}

func (h *ThemeHandlers) stylesheet(w http.ResponseWriter, r *http.Request) {
	brand, ok := brandFromQuery(r.Context(), w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	writeCSSResponse(w, theme.Stylesheet(theme.StylesheetRequest{
		Theme:    theme.ParseSectionTheme(query.Get("theme")),
		Industry: query.Get("industry"),
		BeautyID: query.Get("beauty"),
		Brand:    brand,
	}))
}

// brandFromQuery reads brandPrimary, brandSecondary and brandAccent overrides.
func brandFromQuery(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.BrandColors, bool) {
	query := r.URL.Query()
	brand := domain.BrandColors{
		Primary:   strings.TrimSpace(query.Get("brandPrimary")),
		Secondary: strings.TrimSpace(query.Get("brandSecondary")),
		Accent:    strings.TrimSpace(query.Get("brandAccent")),
	}
	if brand.IsZero() {
		return brand, true
	}
	if err := domain.Validator().Struct(brand); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "brand colors must be hex values", http.StatusBadRequest))
		return domain.BrandColors{}, false
	}
	return brand, true
}

func knownBeauty(raw string) bool {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for _, id := range theme.ListBeautyConfigs() {
		if string(id) == key {
			return true
		}
	}
	return false
}
