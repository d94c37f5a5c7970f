// Package preview renders page data into a complete, self-contained HTML site.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/chairlinked/api/internal/content"
	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/theme"
	"github.com/chairlinked/api/internal/ui"
)

// Page describes one render.
type Page struct {
	Data         domain.PageData
	Title        string
	CanonicalURL string
	NoIndex      bool
}

// Renderer turns page data into HTML documents. It is safe for concurrent use.
type Renderer struct {
	markdown *Markdown
}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{markdown: NewMarkdown()}
}

type pageView struct {
	Title       string
	Description string
	Canonical   string
	NoIndex     bool
	FontsURL    string
	CSS         template.CSS
	FontFamily  template.CSS
	JSONLD      map[string]any
	Body        template.HTML
}

// Render produces the full HTML document for page.
func (r *Renderer) Render(page Page) ([]byte, error) {
	data := page.Data
	industry := industryOf(data)
	sectionTheme := sectionThemeOf(data.Style)
	req := theme.StylesheetRequest{
		Theme:    sectionTheme,
		Industry: industry,
		BeautyID: data.Style.BeautyID,
		Brand:    data.Style.BrandColors,
	}
	heroImage := domain.ResolveHeroImage(data.Hero, content.HeroImage(industry))

	ctx := sectionContext{
		theme:    sectionTheme,
		industry: industry,
		beauty:   data.Style.BeautyID,
	}
	if !data.Style.BrandColors.IsZero() {
		brand := data.Style.BrandColors
		ctx.brand = &brand
	}

	var body strings.Builder
	for _, section := range domain.AllSections {
		inner, ok, err := r.renderSection(section, data, heroImage)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		body.WriteString(string(ctx.wrap(section, inner)))
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = strings.TrimSpace(data.BusinessName)
	}
	if title == "" {
		title = theme.GetDesignConfig(industry).Name
	}

	view := pageView{
		Title:       title,
		Description: strings.TrimSpace(data.Tagline),
		Canonical:   page.CanonicalURL,
		NoIndex:     page.NoIndex,
		FontsURL:    theme.FontsURL(req),
		CSS:         template.CSS(theme.Stylesheet(req)),
		JSONLD:      LocalBusiness(data, industry, page.CanonicalURL, heroImage),
		Body:        template.HTML(body.String()),
	}
	if font := strings.TrimSpace(data.Style.FontOverride); font != "" {
		view.FontFamily = template.CSS(fmt.Sprintf("'%s', sans-serif", fontReplacer.Replace(font)))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("preview: render page: %w", err)
	}
	return buf.Bytes(), nil
}

type sectionContext struct {
	theme    theme.SectionTheme
	industry string
	beauty   string
	brand    *domain.BrandColors
}

func (c sectionContext) wrap(section domain.Section, inner template.HTML) template.HTML {
	padded := ui.Container{Size: ui.SizeLG, Content: inner}.Render()
	if section == domain.SectionNavbar {
		padded = inner
	}
	return ui.Section{
		ID:       string(section),
		Name:     string(section),
		Theme:    c.theme,
		Industry: c.industry,
		BeautyID: c.beauty,
		Brand:    c.brand,
		Content:  padded,
	}.Render()
}

func industryOf(data domain.PageData) string {
	for _, raw := range []string{data.Style.Industry, data.Industry} {
		if id, ok := theme.NormalizeIndustry(raw); ok {
			return string(id)
		}
	}
	return string(theme.DefaultIndustry)
}

// sectionThemeOf defaults unset themes to the industry design system.
func sectionThemeOf(style domain.Style) theme.SectionTheme {
	if strings.TrimSpace(style.SectionTheme) == "" {
		return theme.SectionThemeIndustry
	}
	return theme.ParseSectionTheme(style.SectionTheme)
}

// fontReplacer drops characters that could close the font-family declaration.
var fontReplacer = strings.NewReplacer("'", "", `"`, "", `\`, "", ";", "", "{", "", "}", "", "<", "", ">", "")

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">
{{end}}{{if .Canonical}}<link rel="canonical" href="{{.Canonical}}">
{{end}}{{if .NoIndex}}<meta name="robots" content="noindex">
{{end}}<meta property="og:title" content="{{.Title}}">
{{if .FontsURL}}<link rel="preconnect" href="https://fonts.googleapis.com">
<link rel="stylesheet" href="{{.FontsURL}}">
{{end}}<style>
{{.CSS}}
{{if .FontFamily}}body { font-family: {{.FontFamily}}; }
{{end}}</style>
<script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
{{.Body}}
</body>
</html>
`))
