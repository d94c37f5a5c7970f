package ui

import (
	"html/template"
	"strings"
)

// ButtonVariant selects the visual weight of a button.
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonOutline   ButtonVariant = "outline"
	ButtonGhost     ButtonVariant = "ghost"
	ButtonDanger    ButtonVariant = "danger"
)

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary:   "bg-purple-600 text-white hover:bg-purple-700 focus-visible:ring-purple-500",
	ButtonSecondary: "bg-gray-100 text-gray-900 hover:bg-gray-200 focus-visible:ring-gray-400",
	ButtonOutline:   "border border-gray-300 bg-transparent text-gray-900 hover:bg-gray-50 focus-visible:ring-gray-400",
	ButtonGhost:     "bg-transparent text-gray-700 hover:bg-gray-100 focus-visible:ring-gray-300",
	ButtonDanger:    "bg-red-600 text-white hover:bg-red-700 focus-visible:ring-red-500",
}

var buttonSizes = map[Size]string{
	SizeSM: "h-8 px-3 text-sm",
	SizeMD: "h-10 px-4 text-sm",
	SizeLG: "h-12 px-6 text-base",
}

const buttonBase = "inline-flex items-center justify-center gap-2 rounded-md font-medium transition-colors focus-visible:outline-none focus-visible:ring-2"

// Button is a clickable action, rendered as a link when Href is set.
type Button struct {
	Variant   ButtonVariant
	Size      Size
	Label     string
	Href      string
	Type      string
	Disabled  bool
	Loading   bool
	FullWidth bool
	Class     string
}

// IsDisabled reports whether the button cannot be activated. Loading buttons are disabled.
func (b Button) IsDisabled() bool {
	return b.Disabled || b.Loading
}

// Classes returns the utility classes for the button.
func (b Button) Classes() string {
	variant, ok := buttonVariants[b.Variant]
	if !ok {
		variant = buttonVariants[ButtonPrimary]
	}
	var state, width string
	if b.IsDisabled() {
		state = "opacity-50 cursor-not-allowed pointer-events-none"
	}
	if b.FullWidth {
		width = "w-full"
	}
	return cx(buttonBase, variant, buttonSizes[b.Size.normalize()], width, state, b.Class)
}

// Render returns the button markup.
func (b Button) Render() template.HTML {
	kind := strings.TrimSpace(b.Type)
	if kind == "" {
		kind = "button"
	}
	var spinner template.HTML
	if b.Loading {
		spinner = Spinner{Size: SizeSM, Color: ColorNeutral, Class: "border-current"}.Render()
	}
	return render("button", struct {
		Class    string
		Href     string
		Type     string
		Label    string
		Disabled bool
		Loading  bool
		Spinner  template.HTML
	}{
		Class:    b.Classes(),
		Href:     strings.TrimSpace(b.Href),
		Type:     kind,
		Label:    b.Label,
		Disabled: b.IsDisabled(),
		Loading:  b.Loading,
		Spinner:  spinner,
	})
}
