package entities

import (
	"errors"
	"fmt"
)

// ShapeKind is the kind of a slide shape
type ShapeKind string

const (
	// ShapeRectangle is an auto shape with rectangle geometry
	ShapeRectangle ShapeKind = "rectangle"
	// ShapeTextbox is a borderless text container
	ShapeTextbox ShapeKind = "textbox"
	// ShapeTable is a graphic frame holding a table
	ShapeTable ShapeKind = "table"
)

// Shape is an element placed on a slide
type Shape struct {
	// ID is unique within the slide; 1 is reserved for the shape tree
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Kind      ShapeKind  `json:"kind"`
	Rect      Rect       `json:"rect"`
	Fill      FillFormat `json:"fill"`
	Line      LineFormat `json:"line"`
	TextFrame *TextFrame `json:"text_frame,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Text returns the shape text, empty for shapes without a text frame
func (s *Shape) Text() string {
	return s.TextFrame.Text()
}

// SetText replaces the shape text, creating the text frame when needed
func (s *Shape) SetText(text string) {
	if s.TextFrame == nil {
		s.TextFrame = NewTextFrame()
	}
	s.TextFrame.SetText(text)
}

// HasTextFrame reports whether the shape can hold text
func (s *Shape) HasTextFrame() bool {
	return s.TextFrame != nil
}

// Slide is a single slide of a presentation
type Slide struct {
	// Index is the slide position in the presentation (0-based)
	Index  int          `json:"index"`
	Layout *SlideLayout `json:"layout"`
	Shapes []*Shape     `json:"shapes"`
	Notes  string       `json:"notes,omitempty"`
}

// Validate ensures every shape fits the rules of its kind
func (s *Slide) Validate() error {
	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}
	if s.Layout == nil {
		return errors.New("slide layout is required")
	}
	seen := make(map[int]bool, len(s.Shapes))
	for _, sh := range s.Shapes {
		if seen[sh.ID] {
			return fmt.Errorf("duplicate shape id %d", sh.ID)
		}
		seen[sh.ID] = true
		if sh.Rect.Width < 0 || sh.Rect.Height < 0 {
			return fmt.Errorf("shape %q has negative size", sh.Name)
		}
		if sh.Kind == ShapeTable && sh.Table == nil {
			return fmt.Errorf("table shape %q has no table", sh.Name)
		}
	}
	return nil
}

func (s *Slide) nextShapeID() int {
	id := 2
	for _, sh := range s.Shapes {
		if sh.ID >= id {
			id = sh.ID + 1
		}
	}
	return id
}

func (s *Slide) addShape(kind ShapeKind, name string, rect Rect) *Shape {
	id := s.nextShapeID()
	shape := &Shape{
		ID:   id,
		Name: fmt.Sprintf("%s %d", name, id-1),
		Kind: kind,
		Rect: rect,
		Fill: FillFormat{Type: FillNone},
	}
	s.Shapes = append(s.Shapes, shape)
	return shape
}

// AddShape adds an auto shape. Rectangles start with an empty text frame.
func (s *Slide) AddShape(rect Rect) *Shape {
	shape := s.addShape(ShapeRectangle, "Rectangle", rect)
	shape.TextFrame = NewTextFrame()
	shape.TextFrame.VerticalAnchor = AnchorMiddle
	return shape
}

// AddTextbox adds a text box
func (s *Slide) AddTextbox(rect Rect) *Shape {
	shape := s.addShape(ShapeTextbox, "TextBox", rect)
	shape.TextFrame = NewTextFrame()
	return shape
}

// AddTable adds a graphic frame holding a rows x cols table
func (s *Slide) AddTable(rows, cols int, rect Rect) (*Shape, error) {
	table, err := NewTable(rows, cols)
	if err != nil {
		return nil, err
	}
	shape := s.addShape(ShapeTable, "Table", rect)
	shape.Table = table
	return shape, nil
}

// ExtractTitle returns the first text found on the slide, or a generated title
func (s *Slide) ExtractTitle() string {
	for _, sh := range s.Shapes {
		if t := sh.Text(); t != "" {
			return t
		}
	}
	return fmt.Sprintf("Slide %d", s.Index+1)
}
