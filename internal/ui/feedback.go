package ui

import (
	"fmt"
	"html/template"
)

var spinnerSizes = map[Size]string{
	SizeSM: "h-4 w-4 border-2",
	SizeMD: "h-6 w-6 border-2",
	SizeLG: "h-10 w-10 border-4",
}

// Spinner is an indeterminate progress indicator.
type Spinner struct {
	Size  Size
	Color Color
	Class string
}

// Classes returns the utility classes for the spinner.
func (s Spinner) Classes() string {
	return cx("inline-block animate-spin rounded-full border-solid border-r-transparent",
		spinnerSizes[s.Size.normalize()], fmt.Sprintf("border-%s-500", s.Color.family()), s.Class)
}

// Render returns the spinner markup.
func (s Spinner) Render() template.HTML {
	return render("spinner", struct{ Class string }{s.Classes()})
}

// Orientation is the axis a divider runs along.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Divider separates content, optionally with a centered label.
type Divider struct {
	Orientation Orientation
	Label       string
	Class       string
}

// Classes returns the utility classes for the divider.
func (d Divider) Classes() string {
	if d.Orientation == Vertical {
		return cx("inline-block h-full w-px bg-gray-200", d.Class)
	}
	if d.Label != "" {
		return cx("flex items-center before:flex-1 before:border-t before:border-gray-200 after:flex-1 after:border-t after:border-gray-200", d.Class)
	}
	return cx("border-t border-gray-200", d.Class)
}

// Render returns the divider markup.
func (d Divider) Render() template.HTML {
	label := d.Label
	if d.Orientation == Vertical {
		label = ""
	}
	return render("divider", struct {
		Class string
		Label string
	}{d.Classes(), label})
}
