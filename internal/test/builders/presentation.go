package builders

import (
	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// PresentationBuilder helps build Presentation entities for testing
type PresentationBuilder struct {
	prs    *entities.Presentation
	layout *entities.SlideLayout
}

// NewPresentationBuilder creates a 10x7.5in presentation without slides
func NewPresentationBuilder() *PresentationBuilder {
	prs := entities.NewPresentation()
	prs.Title = "Test Presentation"
	prs.Author = "Test Author"
	layout, err := prs.SlideLayouts.Blank()
	if err != nil {
		panic(err)
	}
	return &PresentationBuilder{prs: prs, layout: layout}
}

// WithTitle sets the presentation title
func (b *PresentationBuilder) WithTitle(title string) *PresentationBuilder {
	b.prs.Title = title
	return b
}

// WithAuthor sets the presentation author
func (b *PresentationBuilder) WithAuthor(author string) *PresentationBuilder {
	b.prs.Author = author
	return b
}

// WithSlideSize sets the slide dimensions
func (b *PresentationBuilder) WithSlideSize(width, height entities.Length) *PresentationBuilder {
	b.prs.SetSlideSize(width, height)
	return b
}

// WithTextSlide adds a slide with a 4x1in text box at the top left
func (b *PresentationBuilder) WithTextSlide(text, notes string) *PresentationBuilder {
	slide := b.prs.Slides.AddSlide(b.layout)
	slide.AddTextbox(entities.Rect{Width: entities.Inches(4), Height: entities.Inches(1)}).SetText(text)
	slide.Notes = notes
	return b
}

// WithTableSlide adds a slide with a table of rows filling a 4x2in box
func (b *PresentationBuilder) WithTableSlide(rows [][]string) *PresentationBuilder {
	slide := b.prs.Slides.AddSlide(b.layout)
	if len(rows) == 0 {
		return b
	}
	shape, err := slide.AddTable(len(rows), len(rows[0]), entities.Rect{Width: entities.Inches(4), Height: entities.Inches(2)})
	if err != nil {
		panic(err)
	}
	for r, row := range rows {
		for c, value := range row {
			shape.Table.Cells[r][c].SetText(value)
		}
	}
	return b
}

// WithEmptySlides adds count blank slides
func (b *PresentationBuilder) WithEmptySlides(count int) *PresentationBuilder {
	for i := 0; i < count; i++ {
		b.prs.Slides.AddSlide(b.layout)
	}
	return b
}

// Build returns the presentation. The builder must not be used afterwards.
func (b *PresentationBuilder) Build() *entities.Presentation {
	return b.prs
}
