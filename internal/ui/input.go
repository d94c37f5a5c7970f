package ui

import (
	"html/template"
	"strings"
)

var inputTypes = map[string]struct{}{
	"text": {}, "email": {}, "tel": {}, "url": {}, "password": {}, "number": {}, "search": {}, "time": {},
}

// Input is a labelled form field.
type Input struct {
	ID          string
	Name        string
	Type        string
	Label       string
	Value       string
	Placeholder string
	Error       string
	Required    bool
	Size        Size
	Class       string
}

// Classes returns the utility classes for the input element.
func (i Input) Classes() string {
	state := "border-gray-300 focus:border-purple-500 focus:ring-purple-500"
	if strings.TrimSpace(i.Error) != "" {
		state = "border-red-500 text-red-900 focus:border-red-500 focus:ring-red-500"
	}
	size := map[Size]string{SizeSM: "h-8 text-sm", SizeMD: "h-10 text-sm", SizeLG: "h-12 text-base"}[i.Size.normalize()]
	return cx("block w-full rounded-md border px-3 shadow-sm", size, state, i.Class)
}

// Render returns the label, input and error markup.
func (i Input) Render() template.HTML {
	kind := strings.ToLower(strings.TrimSpace(i.Type))
	if _, ok := inputTypes[kind]; !ok {
		kind = "text"
	}
	id := strings.TrimSpace(i.ID)
	if id == "" {
		id = strings.TrimSpace(i.Name)
	}
	return render("input", struct {
		ID          string
		Name        string
		Type        string
		Label       string
		Value       string
		Placeholder string
		Error       string
		Required    bool
		Class       string
	}{id, i.Name, kind, i.Label, i.Value, i.Placeholder, strings.TrimSpace(i.Error), i.Required, i.Classes()})
}
