package content

import (
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

// Source records where generated content came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourcePartial  Source = "partial"
	SourceFallback Source = "fallback"
)

// Generated is the merged output of the text and image generators.
type Generated struct {
	Source        Source                `json:"source"`
	BusinessName  string                `json:"businessName"`
	Industry      string                `json:"industry"`
	Tagline       string                `json:"tagline"`
	HeroTitle     string                `json:"heroTitle"`
	HeroSubtitle  string                `json:"heroSubtitle"`
	CTALabel      string                `json:"ctaLabel"`
	HeroImage     string                `json:"heroImage"`
	Services      []domain.ServiceItem  `json:"services"`
	Testimonials  []domain.Testimonial  `json:"testimonials"`
	GalleryImages []domain.GalleryImage `json:"galleryImages"`
}

// FromTemplate converts a personalized template into generated content.
func FromTemplate(t Template, businessName string) Generated {
	out := Generated{
		Source:       SourceFallback,
		BusinessName: strings.TrimSpace(businessName),
		Industry:     t.Industry,
		Tagline:      t.Tagline,
		HeroTitle:    t.Hero.Title,
		HeroSubtitle: t.Hero.Subtitle,
		CTALabel:     t.Hero.CTA,
		HeroImage:    t.Images.Hero,
	}
	for i, svc := range t.Services {
		item := domain.ServiceItem{
			Name:        svc.Name,
			Description: svc.Description,
			Price:       svc.Price,
			Duration:    svc.Duration,
		}
		if i < len(t.Images.Services) {
			item.ImageURL = t.Images.Services[i]
		}
		out.Services = append(out.Services, item)
	}
	for _, r := range t.Testimonials {
		out.Testimonials = append(out.Testimonials, domain.Testimonial{Author: r.Author, Text: r.Text, Rating: r.Rating})
	}
	for _, url := range t.Images.Gallery {
		out.GalleryImages = append(out.GalleryImages, domain.GalleryImage{URL: url, Alt: t.Name})
	}
	return out
}

// ApplyToPageData fills the empty fields of data from generated content. Fields
// the owner already edited are left alone, and every new item gets a fresh id.
func ApplyToPageData(gen Generated, data domain.PageData) domain.PageData {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(v)
		}
	}

	fill(&data.BusinessName, gen.BusinessName)
	fill(&data.Industry, gen.Industry)
	fill(&data.Tagline, gen.Tagline)
	fill(&data.Hero.HeroTitle, gen.HeroTitle)
	fill(&data.Hero.HeroSubtitle, gen.HeroSubtitle)
	fill(&data.Hero.CTA.Label, gen.CTALabel)
	if data.Hero.CTA.Href == "" && data.Hero.CTA.Label != "" {
		data.Hero.CTA.Href = "#booking"
	}
	if !data.Hero.HeroImageExplicitlySet {
		fill(&data.Hero.HeroImage, gen.HeroImage)
	}
	if data.Style.Industry == "" {
		data.Style.Industry = data.Industry
	}

	if len(data.Services) == 0 && len(gen.Services) > 0 {
		data.Services = make([]domain.ServiceItem, len(gen.Services))
		for i, svc := range gen.Services {
			svc.ID = domain.NewItemID()
			data.Services[i] = svc
		}
	}
	if len(data.Testimonials) == 0 && len(gen.Testimonials) > 0 {
		data.Testimonials = make([]domain.Testimonial, len(gen.Testimonials))
		for i, r := range gen.Testimonials {
			r.ID = domain.NewItemID()
			data.Testimonials[i] = r
		}
	}
	if len(data.Gallery.Images) == 0 && len(gen.GalleryImages) > 0 {
		data.Gallery.Images = make([]domain.GalleryImage, len(gen.GalleryImages))
		for i, img := range gen.GalleryImages {
			img.ID = domain.NewItemID()
			data.Gallery.Images[i] = img
		}
	}
	return data
}
