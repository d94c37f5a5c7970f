// Package ui renders the presentational components used by site previews.
// Components are plain values; Classes reports the utility classes a component
// resolves to and Render produces escaped markup.
package ui

import (
	"bytes"
	"html/template"
	"strings"
)

// Size is shared by components that come in small, medium and large variants.
type Size string

const (
	SizeSM Size = "sm"
	SizeMD Size = "md"
	SizeLG Size = "lg"
)

func (s Size) normalize() Size {
	switch s {
	case SizeSM, SizeLG:
		return s
	default:
		return SizeMD
	}
}

// Color names the semantic palette entries components accept.
type Color string

const (
	ColorPrimary   Color = "primary"
	ColorSecondary Color = "secondary"
	ColorAccent    Color = "accent"
	ColorNeutral   Color = "neutral"
	ColorSuccess   Color = "success"
	ColorWarning   Color = "warning"
	ColorError     Color = "error"
)

var colorFamilies = map[Color]string{
	ColorPrimary:   "purple",
	ColorSecondary: "pink",
	ColorAccent:    "amber",
	ColorNeutral:   "gray",
	ColorSuccess:   "green",
	ColorWarning:   "yellow",
	ColorError:     "red",
}

func (c Color) family() string {
	if f, ok := colorFamilies[c]; ok {
		return f
	}
	return colorFamilies[ColorPrimary]
}

// cx joins the non-empty class fragments.
func cx(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func render(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := components.ExecuteTemplate(&buf, name, data); err != nil {
		return template.HTML("<!-- ui: " + template.HTMLEscapeString(err.Error()) + " -->")
	}
	return template.HTML(buf.String())
}

var components = template.Must(template.New("ui").Parse(`
{{define "button"}}{{if .Href}}<a href="{{.Href}}" class="{{.Class}}"{{if .Disabled}} aria-disabled="true" tabindex="-1"{{end}}>{{.Spinner}}{{.Label}}</a>{{else}}<button type="{{.Type}}" class="{{.Class}}"{{if .Disabled}} disabled{{end}}{{if .Loading}} aria-busy="true"{{end}}>{{.Spinner}}{{.Label}}</button>{{end}}{{end}}
{{define "card"}}<div class="{{.Class}}">{{if .Title}}<h3 class="card-title text-lg font-semibold mb-2">{{.Title}}</h3>{{end}}<div class="card-body">{{.Body}}</div>{{if .Footer}}<div class="card-footer mt-4">{{.Footer}}</div>{{end}}</div>{{end}}
{{define "avatar"}}{{if .Src}}<img src="{{.Src}}" alt="{{.Alt}}" class="{{.Class}} object-cover">{{else if .Initials}}<span class="{{.Class}}" role="img" aria-label="{{.Alt}}">{{.Initials}}</span>{{else}}<span class="{{.Class}}" role="img" aria-label="{{.Alt}}"><svg class="avatar-icon h-1/2 w-1/2" viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M12 12a5 5 0 1 0 0-10 5 5 0 0 0 0 10zm0 2c-4.42 0-8 2.24-8 5v3h16v-3c0-2.76-3.58-5-8-5z"/></svg></span>{{end}}{{end}}
{{define "badge"}}<span class="{{.Class}}">{{.Label}}</span>{{end}}
{{define "input"}}<div class="form-field">{{if .Label}}<label for="{{.ID}}" class="block text-sm font-medium mb-1">{{.Label}}{{if .Required}} <span class="text-red-500" aria-hidden="true">*</span>{{end}}</label>{{end}}<input id="{{.ID}}" name="{{.Name}}" type="{{.Type}}" value="{{.Value}}" class="{{.Class}}"{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}{{if .Required}} required{{end}}{{if .Error}} aria-invalid="true" aria-describedby="{{.ID}}-error"{{end}}>{{if .Error}}<p id="{{.ID}}-error" class="mt-1 text-sm text-red-600">{{.Error}}</p>{{end}}</div>{{end}}
{{define "spinner"}}<span class="{{.Class}}" role="status" aria-label="Loading"></span>{{end}}
{{define "divider"}}{{if .Label}}<div class="{{.Class}}" role="separator"><span class="px-3 text-sm text-gray-500">{{.Label}}</span></div>{{else}}<hr class="{{.Class}}">{{end}}{{end}}
{{define "box"}}{{if eq .Tag "section"}}<section{{if .ID}} id="{{.ID}}"{{end}} class="{{.Class}}"{{if .Style}} style="{{.Style}}"{{end}}>{{.Content}}</section>{{else}}<div{{if .ID}} id="{{.ID}}"{{end}} class="{{.Class}}"{{if .Style}} style="{{.Style}}"{{end}}>{{.Content}}</div>{{end}}{{end}}
`))
