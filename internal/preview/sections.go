package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/ui"
)

type link struct {
	Label string
	Href  string
}

type galleryView struct {
	URL     string
	Alt     string
	Caption string
}

type reviewView struct {
	Avatar template.HTML
	Author string
	Text   string
	Stars  string
	Badge  template.HTML
}

type hoursView struct {
	Day   string
	Hours string
}

func (r *Renderer) renderSection(section domain.Section, data domain.PageData, heroImage string) (template.HTML, bool, error) {
	var view any
	switch section {
	case domain.SectionNavbar:
		links := make([]link, 0, len(data.Navbar.Links))
		for _, l := range data.Navbar.Links {
			links = append(links, link{Label: l.Label, Href: l.Href})
		}
		if len(links) == 0 {
			links = defaultNavLinks(data)
		}
		view = struct {
			Name  string
			Logo  string
			Links []link
		}{strings.TrimSpace(data.BusinessName), data.Navbar.Logo, links}

	case domain.SectionHero:
		var cta template.HTML
		if label := strings.TrimSpace(data.Hero.CTA.Label); label != "" {
			href := strings.TrimSpace(data.Hero.CTA.Href)
			if href == "" {
				href = "#booking"
			}
			cta = ui.Button{Variant: ui.ButtonPrimary, Size: ui.SizeLG, Label: label, Href: href}.Render()
		}
		title := strings.TrimSpace(data.Hero.HeroTitle)
		if title == "" {
			title = strings.TrimSpace(data.BusinessName)
		}
		view = struct {
			Title    string
			Subtitle string
			Image    string
			CTA      template.HTML
		}{title, data.Hero.HeroSubtitle, heroImage, cta}

	case domain.SectionServices:
		cards := make([]template.HTML, 0, len(data.Services))
		for _, svc := range data.Services {
			if strings.TrimSpace(svc.Name) == "" {
				continue
			}
			cards = append(cards, r.serviceCard(svc))
		}
		if len(cards) == 0 {
			return "", false, nil
		}
		view = struct {
			Grid template.HTML
		}{ui.Grid{Cols: 3, Gap: ui.SizeMD, Content: join(cards)}.Render()}

	case domain.SectionGallery:
		images := make([]galleryView, 0, len(data.Gallery.Images))
		for _, img := range data.Gallery.Images {
			if strings.TrimSpace(img.URL) == "" {
				continue
			}
			alt := img.Alt
			if alt == "" {
				alt = img.Caption
			}
			images = append(images, galleryView{URL: img.URL, Alt: alt, Caption: img.Caption})
		}
		if len(images) == 0 {
			return "", false, nil
		}
		view = struct{ Images []galleryView }{images}

	case domain.SectionTestimonials:
		reviews := make([]reviewView, 0, len(data.Testimonials))
		for _, t := range data.Testimonials {
			if strings.TrimSpace(t.Text) == "" {
				continue
			}
			rv := reviewView{
				Avatar: ui.Avatar{Src: t.AvatarURL, Name: t.Author, Size: ui.SizeMD}.Render(),
				Author: t.Author,
				Text:   t.Text,
				Stars:  stars(t.Rating),
			}
			if t.Featured {
				rv.Badge = ui.Badge{Label: "Featured", Color: ui.ColorAccent, Variant: ui.BadgeSoft, Size: ui.SizeSM}.Render()
			}
			reviews = append(reviews, rv)
		}
		if len(reviews) == 0 {
			return "", false, nil
		}
		view = struct{ Reviews []reviewView }{reviews}

	case domain.SectionBooking:
		phone := strings.TrimSpace(data.Booking.Phone)
		if phone == "" {
			phone = strings.TrimSpace(data.Phone)
		}
		var button template.HTML
		if u := strings.TrimSpace(data.Booking.URL); u != "" {
			button = ui.Button{Variant: ui.ButtonSecondary, Size: ui.SizeLG, Label: "Book online", Href: u}.Render()
		}
		hours := make([]hoursView, 0, len(data.Booking.Hours))
		for _, h := range data.Booking.Hours {
			hours = append(hours, hoursView{Day: dayNames[strings.ToLower(h.Day)], Hours: formatHours(h)})
		}
		if button == "" && phone == "" && len(hours) == 0 {
			return "", false, nil
		}
		view = struct {
			Button template.HTML
			Phone  string
			Tel    string
			Hours  []hoursView
		}{button, phone, telHref(phone), hours}

	case domain.SectionFooter:
		socials := make([]link, 0, len(data.Footer.SocialLinks))
		for _, s := range data.Footer.SocialLinks {
			socials = append(socials, link{Label: s.Platform, Href: s.URL})
		}
		copyright := strings.TrimSpace(data.Footer.Copyright)
		if copyright == "" && data.BusinessName != "" {
			copyright = "© " + strings.TrimSpace(data.BusinessName)
		}
		view = struct {
			Name      string
			Address   string
			Phone     string
			Email     string
			Socials   []link
			Copyright string
			Divider   template.HTML
		}{data.BusinessName, data.Address, data.Phone, data.Email, socials, copyright, ui.Divider{Class: "my-6 opacity-30"}.Render()}

	default:
		return "", false, nil
	}

	var buf bytes.Buffer
	if err := sectionTemplates.ExecuteTemplate(&buf, string(section), view); err != nil {
		return "", false, fmt.Errorf("preview: render %s: %w", section, err)
	}
	return template.HTML(buf.String()), true, nil
}

func (r *Renderer) serviceCard(svc domain.ServiceItem) template.HTML {
	var meta []string
	if v := strings.TrimSpace(svc.Price); v != "" {
		meta = append(meta, v)
	}
	if v := strings.TrimSpace(svc.Duration); v != "" {
		meta = append(meta, v)
	}
	var buf bytes.Buffer
	_ = sectionTemplates.ExecuteTemplate(&buf, "service-body", struct {
		Image       string
		Name        string
		Description template.HTML
		Meta        string
	}{svc.ImageURL, svc.Name, r.markdown.Render(svc.Description), strings.Join(meta, " · ")})

	variant := ui.CardDefault
	if svc.Featured {
		variant = ui.CardElevated
	}
	return ui.Card{Variant: variant, Padding: ui.SizeMD, Body: template.HTML(buf.String()), Class: "industry-card"}.Render()
}

func defaultNavLinks(data domain.PageData) []link {
	links := []link{}
	if len(data.Services) > 0 {
		links = append(links, link{Label: "Services", Href: "#services"})
	}
	if len(data.Gallery.Images) > 0 {
		links = append(links, link{Label: "Gallery", Href: "#gallery"})
	}
	return append(links, link{Label: "Book", Href: "#booking"})
}

func stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	rating = min(rating, 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func formatHours(h domain.BusinessHours) string {
	if h.Closed || h.Open == "" || h.Close == "" {
		return "Closed"
	}
	return h.Open + " – " + h.Close
}

func telHref(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String()
}

func join(parts []template.HTML) template.HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return template.HTML(b.String())
}

var sectionTemplates = template.Must(template.New("sections").Parse(`
{{define "navbar"}}<nav class="mx-auto flex max-w-7xl items-center justify-between"><a href="#hero" class="industry-heading text-xl">{{if .Logo}}<img src="{{.Logo}}" alt="{{.Name}}" class="h-10 w-auto">{{else}}{{.Name}}{{end}}</a><ul class="flex gap-6">{{range .Links}}<li><a href="{{.Href}}">{{.Label}}</a></li>{{end}}</ul></nav>{{end}}
{{define "hero"}}<div class="hero grid items-center gap-10 lg:grid-cols-2"><div><h1 class="industry-heading text-5xl">{{.Title}}</h1>{{if .Subtitle}}<p class="mt-4 text-lg">{{.Subtitle}}</p>{{end}}{{if .CTA}}<div class="mt-8">{{.CTA}}</div>{{end}}</div>{{if .Image}}<img class="hero-image w-full rounded-2xl object-cover" src="{{.Image}}" alt="{{.Title}}" loading="eager">{{end}}</div>{{end}}
{{define "services"}}<h2 class="industry-heading mb-8 text-3xl">Services</h2>{{.Grid}}{{end}}
{{define "service-body"}}{{if .Image}}<img class="mb-4 w-full rounded-lg object-cover" src="{{.Image}}" alt="{{.Name}}" loading="lazy">{{end}}<h3 class="industry-heading text-xl">{{.Name}}</h3>{{if .Meta}}<p class="industry-accent text-sm">{{.Meta}}</p>{{end}}{{if .Description}}<div class="industry-body mt-2">{{.Description}}</div>{{end}}{{end}}
{{define "gallery"}}<h2 class="industry-heading mb-8 text-3xl">Gallery</h2><div class="gallery-grid">{{range .Images}}<figure><img src="{{.URL}}" alt="{{.Alt}}" loading="lazy">{{if .Caption}}<figcaption>{{.Caption}}</figcaption>{{end}}</figure>{{end}}</div>{{end}}
{{define "testimonials"}}<h2 class="industry-heading mb-8 text-3xl">What clients say</h2><div class="testimonials">{{range .Reviews}}<blockquote class="industry-card p-6">{{.Badge}}<p class="industry-body">{{.Text}}</p>{{if .Stars}}<p class="industry-accent" aria-label="rating">{{.Stars}}</p>{{end}}<footer class="mt-4 flex items-center gap-3">{{.Avatar}}<cite>{{.Author}}</cite></footer></blockquote>{{end}}</div>{{end}}
{{define "booking"}}<h2 class="industry-heading mb-6 text-3xl">Book an appointment</h2>{{if .Button}}<div class="mb-6">{{.Button}}</div>{{end}}{{if .Phone}}<p>Call us at {{if .Tel}}<a href="tel:{{.Tel}}">{{.Phone}}</a>{{else}}{{.Phone}}{{end}}</p>{{end}}{{if .Hours}}<dl class="hours mt-6">{{range .Hours}}<div><dt>{{.Day}}</dt><dd>{{.Hours}}</dd></div>{{end}}</dl>{{end}}{{end}}
{{define "footer"}}<div class="grid gap-8 sm:grid-cols-2"><div><p class="industry-heading text-lg">{{.Name}}</p>{{if .Address}}<address>{{.Address}}</address>{{end}}</div><div>{{if .Phone}}<p>{{.Phone}}</p>{{end}}{{if .Email}}<p><a href="mailto:{{.Email}}">{{.Email}}</a></p>{{end}}{{if .Socials}}<ul class="socials flex gap-4">{{range .Socials}}<li><a href="{{.Href}}" rel="noopener">{{.Label}}</a></li>{{end}}</ul>{{end}}</div></div>{{.Divider}}{{if .Copyright}}<p class="text-sm">{{.Copyright}}</p>{{end}}{{end}}
`))
