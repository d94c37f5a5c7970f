package ui

import (
	"fmt"
	"html/template"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/theme"
)

var containerSizes = map[Size]string{
	SizeSM: "max-w-3xl",
	SizeMD: "max-w-5xl",
	SizeLG: "max-w-7xl",
}

var gapSizes = map[Size]string{
	SizeSM: "gap-2",
	SizeMD: "gap-4",
	SizeLG: "gap-8",
}

type box struct {
	Tag     string
	ID      string
	Class   string
	Style   template.CSS
	Content template.HTML
}

// Container centers content with a maximum width.
type Container struct {
	Size    Size
	Content template.HTML
	Class   string
}

func (c Container) Classes() string {
	return cx("mx-auto w-full px-4 sm:px-6 lg:px-8", containerSizes[c.Size.normalize()], c.Class)
}

func (c Container) Render() template.HTML {
	return render("box", box{Tag: "div", Class: c.Classes(), Content: c.Content})
}

// Direction is the main axis of a Stack.
type Direction string

const (
	Row    Direction = "row"
	Column Direction = "column"
)

// Stack lays children out along one axis.
type Stack struct {
	Direction Direction
	Gap       Size
	Align     string
	Content   template.HTML
	Class     string
}

func (s Stack) Classes() string {
	dir := "flex-col"
	if s.Direction == Row {
		dir = "flex-row flex-wrap"
	}
	var align string
	switch s.Align {
	case "start", "center", "end", "stretch":
		align = "items-" + s.Align
	}
	return cx("flex", dir, gapSizes[s.Gap.normalize()], align, s.Class)
}

func (s Stack) Render() template.HTML {
	return render("box", box{Tag: "div", Class: s.Classes(), Content: s.Content})
}

// Grid lays children out in responsive columns.
type Grid struct {
	Cols    int
	Gap     Size
	Content template.HTML
	Class   string
}

func (g Grid) Classes() string {
	cols := g.Cols
	if cols < 1 || cols > 6 {
		cols = 3
	}
	responsive := fmt.Sprintf("grid-cols-1 sm:grid-cols-%d lg:grid-cols-%d", min(cols, 2), cols)
	return cx("grid", responsive, gapSizes[g.Gap.normalize()], g.Class)
}

func (g Grid) Render() template.HTML {
	return render("box", box{Tag: "div", Class: g.Classes(), Content: g.Content})
}

// Section is a full-width page band painted by a SectionTheme.
type Section struct {
	ID       string
	Name     string
	Theme    theme.SectionTheme
	Industry string
	BeautyID string
	Brand    *domain.BrandColors
	Content  template.HTML
	Class    string
}

// Resolve returns the theme classes for the section.
func (s Section) Resolve() theme.SectionClasses {
	return theme.ResolveSectionClasses(s.Theme, s.Name, s.Industry, s.BeautyID, s.Brand)
}

func (s Section) Classes() string {
	return cx("w-full", s.Resolve().Wrapper, s.Class)
}

func (s Section) Render() template.HTML {
	resolved := s.Resolve()
	return render("box", box{
		Tag:     "section",
		ID:      s.ID,
		Class:   cx("w-full", resolved.Wrapper, s.Class),
		Style:   template.CSS(resolved.Style),
		Content: s.Content,
	})
}
