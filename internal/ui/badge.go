package ui

import (
	"fmt"
	"html/template"
)

// BadgeVariant selects how strongly a badge is colored.
type BadgeVariant string

const (
	BadgeSolid   BadgeVariant = "solid"
	BadgeSoft    BadgeVariant = "soft"
	BadgeOutline BadgeVariant = "outline"
)

// Badge is a small status label.
type Badge struct {
	Label   string
	Color   Color
	Variant BadgeVariant
	Size    Size
	Class   string
}

// Classes returns the utility classes for the badge.
func (b Badge) Classes() string {
	f := b.Color.family()
	var variant string
	switch b.Variant {
	case BadgeSolid:
		variant = fmt.Sprintf("bg-%s-600 text-white", f)
	case BadgeOutline:
		variant = fmt.Sprintf("border border-%s-300 text-%s-700", f, f)
	default:
		variant = fmt.Sprintf("bg-%s-100 text-%s-800", f, f)
	}
	size := "px-2.5 py-0.5 text-xs"
	if b.Size == SizeLG {
		size = "px-3 py-1 text-sm"
	}
	return cx("inline-flex items-center rounded-full font-medium", variant, size, b.Class)
}

// Render returns the badge markup.
func (b Badge) Render() template.HTML {
	return render("badge", struct {
		Class string
		Label string
	}{b.Classes(), b.Label})
}
