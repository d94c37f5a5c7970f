package ui

import "html/template"

// CardVariant selects the card surface treatment.
type CardVariant string

const (
	CardDefault  CardVariant = "default"
	CardElevated CardVariant = "elevated"
	CardOutlined CardVariant = "outlined"
)

var cardVariants = map[CardVariant]string{
	CardDefault:  "bg-white shadow-sm",
	CardElevated: "bg-white shadow-xl",
	CardOutlined: "bg-transparent border border-gray-200",
}

var cardPadding = map[Size]string{
	SizeSM: "p-4",
	SizeMD: "p-6",
	SizeLG: "p-8",
}

// Card groups related content on a raised surface.
type Card struct {
	Variant CardVariant
	Padding Size
	Title   string
	Body    template.HTML
	Footer  template.HTML
	Class   string
}

// Classes returns the utility classes for the card.
func (c Card) Classes() string {
	variant, ok := cardVariants[c.Variant]
	if !ok {
		variant = cardVariants[CardDefault]
	}
	return cx("rounded-xl", variant, cardPadding[c.Padding.normalize()], c.Class)
}

// Render returns the card markup.
func (c Card) Render() template.HTML {
	return render("card", struct {
		Class  string
		Title  string
		Body   template.HTML
		Footer template.HTML
	}{c.Classes(), c.Title, c.Body, c.Footer})
}
