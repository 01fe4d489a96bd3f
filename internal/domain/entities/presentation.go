package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default slide size of the 4:3 template
var (
	DefaultSlideWidth  = Length(9144000)
	DefaultSlideHeight = Length(6858000)
)

// BlankLayoutIndex is the position of the blank layout in the default template
const BlankLayoutIndex = 6

// defaultLayoutNames lists the layouts of the default template in order
var defaultLayoutNames = []string{
	"Title Slide",
	"Title and Content",
	"Section Header",
	"Two Content",
	"Comparison",
	"Title Only",
	"Blank",
	"Content with Caption",
	"Picture with Caption",
	"Title and Vertical Text",
	"Vertical Title and Text",
}

// SlideLayout is a named slide layout of the presentation's master
type SlideLayout struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// SlideLayouts is the ordered list of layouts available to new slides
type SlideLayouts []*SlideLayout

// DefaultSlideLayouts returns the layouts of the default template
func DefaultSlideLayouts() SlideLayouts {
	layouts := make(SlideLayouts, len(defaultLayoutNames))
	for i, name := range defaultLayoutNames {
		layouts[i] = &SlideLayout{Index: i, Name: name}
	}
	return layouts
}

// ByName finds a layout by name, ignoring case
func (l SlideLayouts) ByName(name string) (*SlideLayout, error) {
	caser := cases.Title(language.English)
	want := caser.String(strings.ToLower(strings.TrimSpace(name)))
	for _, layout := range l {
		if caser.String(strings.ToLower(layout.Name)) == want {
			return layout, nil
		}
	}
	return nil, newLayoutError(ErrorKindPresentation, "unknown slide layout", fmt.Sprintf("%q", name))
}

// Get returns the layout at index
func (l SlideLayouts) Get(index int) (*SlideLayout, error) {
	if index < 0 || index >= len(l) {
		return nil, newLayoutError(ErrorKindIndex, "slide layout index out of range",
			fmt.Sprintf("index %d, %d layouts", index, len(l)))
	}
	return l[index], nil
}

// Blank returns the layout named "Blank", falling back to the default blank
// position and then to the last layout.
func (l SlideLayouts) Blank() (*SlideLayout, error) {
	if layout, err := l.ByName("Blank"); err == nil {
		return layout, nil
	}
	if layout, err := l.Get(BlankLayoutIndex); err == nil {
		return layout, nil
	}
	if len(l) == 0 {
		return nil, NewPresentationError("presentation has no slide layouts", "")
	}
	return l[len(l)-1], nil
}

// Slides is the ordered collection of slides of a presentation
type Slides []*Slide

// AddSlide appends a new empty slide using layout and returns it
func (s *Slides) AddSlide(layout *SlideLayout) *Slide {
	slide := &Slide{Index: len(*s), Layout: layout}
	*s = append(*s, slide)
	return slide
}

// Len returns the number of slides
func (s Slides) Len() int {
	return len(s)
}

// Get returns the slide at index
func (s Slides) Get(index int) (*Slide, error) {
	if index < 0 || index >= len(s) {
		return nil, newLayoutError(ErrorKindIndex, "slide index out of range",
			fmt.Sprintf("%d not in 0-%d", index, len(s)-1))
	}
	return s[index], nil
}

// Presentation is a presentation document
type Presentation struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Subject string    `json:"subject,omitempty"`
	Company string    `json:"company,omitempty"`
	Created time.Time `json:"created"`

	// SlideWidth and SlideHeight are nil when the size is unknown
	SlideWidth  *Length `json:"slide_width,omitempty"`
	SlideHeight *Length `json:"slide_height,omitempty"`

	Slides       Slides       `json:"slides"`
	SlideLayouts SlideLayouts `json:"slide_layouts"`
}

// NewPresentation creates an empty presentation with the default template
func NewPresentation() *Presentation {
	w, h := DefaultSlideWidth, DefaultSlideHeight
	return &Presentation{
		ID:           uuid.New().String(),
		Created:      time.Now(),
		SlideWidth:   &w,
		SlideHeight:  &h,
		SlideLayouts: DefaultSlideLayouts(),
	}
}

// SetSlideSize sets the slide dimensions
func (p *Presentation) SetSlideSize(width, height Length) {
	p.SlideWidth = &width
	p.SlideHeight = &height
}

// SlideSize returns the slide dimensions, failing when either is unknown
func (p *Presentation) SlideSize() (Length, Length, error) {
	if p.SlideWidth == nil {
		return 0, 0, NewPresentationError("unknown slide width", "")
	}
	if p.SlideHeight == nil {
		return 0, 0, NewPresentationError("unknown slide height", "")
	}
	if *p.SlideWidth <= 0 || *p.SlideHeight <= 0 {
		return 0, 0, NewPresentationError("slide size must be positive",
			fmt.Sprintf("%d x %d", *p.SlideWidth, *p.SlideHeight))
	}
	return *p.SlideWidth, *p.SlideHeight, nil
}

// Validate ensures the presentation can be serialized
func (p *Presentation) Validate() error {
	if _, _, err := p.SlideSize(); err != nil {
		return err
	}
	if len(p.SlideLayouts) == 0 {
		return NewPresentationError("presentation has no slide layouts", "")
	}
	for i, slide := range p.Slides {
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
	}
	return nil
}

// SlideCount returns the total number of slides
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}
