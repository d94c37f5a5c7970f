package ui

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var avatarSizes = map[Size]string{
	SizeSM: "h-8 w-8 text-xs",
	SizeMD: "h-12 w-12 text-sm",
	SizeLG: "h-16 w-16 text-lg",
}

// Avatar shows a person's picture, falling back to initials and then to an icon.
type Avatar struct {
	Src    string
	Name   string
	Alt    string
	Size   Size
	Locale string
	Class  string
}

// Classes returns the utility classes for the avatar.
func (a Avatar) Classes() string {
	return cx("inline-flex items-center justify-center overflow-hidden rounded-full bg-purple-100 text-purple-700 font-semibold", avatarSizes[a.Size.normalize()], a.Class)
}

// Initials returns at most two upper-cased letters taken from the first and last words of Name.
func (a Avatar) Initials() string {
	words := strings.FieldsFunc(a.Name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '.'
	})
	letters := make([]string, 0, 2)
	for i, w := range words {
		if i != 0 && i != len(words)-1 {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError || !unicode.IsLetter(r) {
			continue
		}
		letters = append(letters, string(r))
	}
	if len(letters) > 2 {
		letters = letters[:2]
	}
	tag := language.Und
	if a.Locale != "" {
		if parsed, err := language.Parse(a.Locale); err == nil {
			tag = parsed
		}
	}
	return cases.Upper(tag).String(strings.Join(letters, ""))
}

// Render returns the avatar markup.
func (a Avatar) Render() template.HTML {
	alt := strings.TrimSpace(a.Alt)
	if alt == "" {
		alt = strings.TrimSpace(a.Name)
	}
	if alt == "" {
		alt = "Avatar"
	}
	return render("avatar", struct {
		Class    string
		Src      string
		Alt      string
		Initials string
	}{a.Classes(), strings.TrimSpace(a.Src), alt, a.Initials()})
}
