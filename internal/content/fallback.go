// Package content holds the static per-industry copy and imagery used when
// generated content is unavailable, and merges generated content into page data.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chairlinked/api/internal/theme"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template is the fallback copy for one industry. Text fields may contain the
// {business} and {location} placeholders.
type Template struct {
	Industry     string                `yaml:"industry"`
	Name         string                `yaml:"name"`
	Tagline      string                `yaml:"tagline"`
	Hero         HeroTemplate          `yaml:"hero"`
	Services     []ServiceTemplate     `yaml:"services"`
	Testimonials []TestimonialTemplate `yaml:"testimonials"`
	Images       ImageSet              `yaml:"images"`
}

// HeroTemplate is the fallback hero copy.
type HeroTemplate struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	CTA      string `yaml:"cta"`
}

// ServiceTemplate is one fallback service.
type ServiceTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Duration    string `yaml:"duration"`
}

// TestimonialTemplate is one fallback review.
type TestimonialTemplate struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
	Rating int    `yaml:"rating"`
}

// ImageSet lists curated image URLs for an industry.
type ImageSet struct {
	Hero     string   `yaml:"hero"`
	Gallery  []string `yaml:"gallery"`
	Services []string `yaml:"services"`
}

var templates = mustLoadTemplates(templateFS)

func mustLoadTemplates(fsys fs.FS) map[theme.IndustryID]Template {
	out, err := loadTemplates(fsys)
	if err != nil {
		panic(err)
	}
	return out
}

func loadTemplates(fsys fs.FS) (map[theme.IndustryID]Template, error) {
	paths, err := fs.Glob(fsys, "templates/*.yaml")
	if err != nil {
		return nil, err
	}
	out := make(map[theme.IndustryID]Template, len(paths))
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", p, err)
		}
		var tmpl Template
		if err := yaml.Unmarshal(raw, &tmpl); err != nil {
			return nil, fmt.Errorf("content: parse %s: %w", p, err)
		}
		id, ok := theme.NormalizeIndustry(tmpl.Industry)
		if !ok {
			return nil, fmt.Errorf("content: %s declares unknown industry %q", p, tmpl.Industry)
		}
		if want := strings.TrimSuffix(path.Base(p), ".yaml"); string(id) != want {
			return nil, fmt.Errorf("content: %s declares industry %q", p, id)
		}
		out[id] = tmpl
	}
	if _, ok := out[theme.DefaultIndustry]; !ok {
		return nil, fmt.Errorf("content: missing template for default industry %s", theme.DefaultIndustry)
	}
	return out, nil
}

// Fallback returns the template for industry, falling back to the default industry.
func Fallback(industry string) Template {
	id, ok := theme.NormalizeIndustry(industry)
	tmpl, found := templates[id]
	if !ok || !found {
		tmpl = templates[theme.DefaultIndustry]
	}
	return tmpl.clone()
}

// Industries lists the industries with a fallback template.
func Industries() []string {
	out := make([]string, 0, len(templates))
	for id := range templates {
		out = append(out, string(id))
	}
	sort.Strings(out)
	return out
}

func (t Template) clone() Template {
	out := t
	out.Services = append([]ServiceTemplate(nil), t.Services...)
	out.Testimonials = append([]TestimonialTemplate(nil), t.Testimonials...)
	out.Images.Gallery = append([]string(nil), t.Images.Gallery...)
	out.Images.Services = append([]string(nil), t.Images.Services...)
	return out
}

// Personalize replaces the placeholders with the business name and location.
func (t Template) Personalize(businessName, location string) Template {
	business := strings.TrimSpace(businessName)
	if business == "" {
		business = t.Name
	}
	place := strings.TrimSpace(location)
	if place == "" {
		place = "your area"
	}
	r := strings.NewReplacer("{business}", business, "{location}", place)

	out := t.clone()
	out.Tagline = r.Replace(t.Tagline)
	out.Hero.Title = r.Replace(t.Hero.Title)
	out.Hero.Subtitle = r.Replace(t.Hero.Subtitle)
	out.Hero.CTA = r.Replace(t.Hero.CTA)
	for i := range out.Services {
		out.Services[i].Name = r.Replace(out.Services[i].Name)
		out.Services[i].Description = r.Replace(out.Services[i].Description)
	}
	for i := range out.Testimonials {
		out.Testimonials[i].Text = r.Replace(out.Testimonials[i].Text)
	}
	return out
}

// HeroImage returns the curated hero image for industry.
func HeroImage(industry string) string {
	return Fallback(industry).Images.Hero
}

// GalleryImages returns up to count curated gallery images, cycling when the
// curated list is shorter than count.
func GalleryImages(industry string, count int) []string {
	return cycle(Fallback(industry).Images.Gallery, count)
}

// ServiceImages returns count curated service images.
func ServiceImages(industry string, count int) []string {
	return cycle(Fallback(industry).Images.Services, count)
}

func cycle(src []string, count int) []string {
	if count <= 0 || len(src) == 0 {
		return nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = src[i%len(src)]
	}
	return out
}
