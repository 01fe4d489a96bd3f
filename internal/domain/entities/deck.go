package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ContentKind is the kind of content drawn into a layout area
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentRect  ContentKind = "rect"
	ContentTable ContentKind = "table"
	ContentDebug ContentKind = "debug"
)

// Deck is a declarative description of a whole presentation
type Deck struct {
	Title     string            `yaml:"title" json:"title"`
	Author    string            `yaml:"author" json:"author"`
	Subject   string            `yaml:"subject" json:"subject,omitempty"`
	SlideSize *SlideSize        `yaml:"slide_size" json:"slide_size,omitempty"`
	Slides    []DeckSlide       `yaml:"slides" json:"slides"`
	Metadata  map[string]string `yaml:"metadata" json:"metadata,omitempty"`
}

// SlideSize holds textual slide dimensions such as "13.333in"
type SlideSize struct {
	Width  string `yaml:"width" json:"width"`
	Height string `yaml:"height" json:"height"`
}

// Resolve parses the dimensions into EMUs
func (s SlideSize) Resolve() (Length, Length, error) {
	w, err := ParseLength(s.Width)
	if err != nil {
		return 0, 0, fmt.Errorf("slide width: %w", err)
	}
	h, err := ParseLength(s.Height)
	if err != nil {
		return 0, 0, fmt.Errorf("slide height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New("slide size must be positive")
	}
	return w, h, nil
}

// DeckSlide describes one slide: its layout tree and options
type DeckSlide struct {
	Layout string   `yaml:"layout" json:"layout,omitempty"`
	Notes  string   `yaml:"notes" json:"notes,omitempty"`
	Debug  bool     `yaml:"debug" json:"debug,omitempty"`
	Root   DeckNode `yaml:"root" json:"root"`
}

// DeckNode is one area of a slide layout tree
type DeckNode struct {
	Name     string       `yaml:"name" json:"name,omitempty"`
	Length   string       `yaml:"length" json:"length,omitempty"`
	Split    string       `yaml:"split" json:"split,omitempty"`
	Children []DeckNode   `yaml:"children" json:"children,omitempty"`
	Content  *ContentSpec `yaml:"content" json:"content,omitempty"`
}

// ContentSpec describes what is drawn into an area
type ContentSpec struct {
	Kind      ContentKind `yaml:"kind" json:"kind"`
	Text      string      `yaml:"text" json:"text,omitempty"`
	Markdown  bool        `yaml:"markdown" json:"markdown,omitempty"`
	Fill      string      `yaml:"fill" json:"fill,omitempty"`
	Line      string      `yaml:"line" json:"line,omitempty"`
	LineWidth string      `yaml:"line_width" json:"line_width,omitempty"`
	FontSize  string      `yaml:"font_size" json:"font_size,omitempty"`
	Bold      bool        `yaml:"bold" json:"bold,omitempty"`
	Color     string      `yaml:"color" json:"color,omitempty"`
	Align     string      `yaml:"align" json:"align,omitempty"`
	Anchor    string      `yaml:"anchor" json:"anchor,omitempty"`
	Source    string      `yaml:"source" json:"source,omitempty"`
	Sheet     string      `yaml:"sheet" json:"sheet,omitempty"`
	MaxRows   int         `yaml:"max_rows" json:"max_rows,omitempty"`
	Label     string      `yaml:"label" json:"label,omitempty"`
}

// Validate checks the whole deck for unparsable lengths, invalid splits and
// unknown content.
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return errors.New("deck must have at least one slide")
	}
	if d.SlideSize != nil {
		if _, _, err := d.SlideSize.Resolve(); err != nil {
			return err
		}
	}
	for i := range d.Slides {
		if err := d.Slides[i].Root.Validate(); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks the node and its descendants
func (n *DeckNode) Validate() error {
	if n.Length != "" {
		if _, err := ParseUnit(n.Length); err != nil {
			return fmt.Errorf("%s: %w", n.label(), err)
		}
	}
	if len(n.Children) > 0 {
		if _, err := ParseDirection(n.Split); err != nil {
			return fmt.Errorf("%s: %w", n.label(), err)
		}
	} else if n.Split != "" {
		return NewSpecMismatchError(fmt.Sprintf("%s: split %q without children", n.label(), n.Split))
	}
	if n.Content != nil {
		if err := n.Content.Validate(); err != nil {
			return fmt.Errorf("%s: %w", n.label(), err)
		}
	}
	for i := range n.Children {
		if err := n.Children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Unit returns the parsed length, or nil when unset
func (n *DeckNode) Unit() (Unit, error) {
	if strings.TrimSpace(n.Length) == "" {
		return nil, nil
	}
	return ParseUnit(n.Length)
}

func (n *DeckNode) label() string {
	if n.Name != "" {
		return "area " + n.Name
	}
	return "area"
}

// Validate checks the content fields that apply to its kind
func (c *ContentSpec) Validate() error {
	switch c.Kind {
	case ContentText:
		if c.FontSize != "" {
			if _, err := ParseLength(c.FontSize); err != nil {
				return fmt.Errorf("font_size: %w", err)
			}
		}
	case ContentRect, ContentDebug:
	case ContentTable:
		if c.Source == "" {
			return errors.New("table content requires a source")
		}
	default:
		return fmt.Errorf("unknown content kind %q", c.Kind)
	}
	for field, value := range map[string]string{"fill": c.Fill, "line": c.Line, "color": c.Color} {
		if value == "" {
			continue
		}
		if _, err := RGBColorFromString(value); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if c.LineWidth != "" {
		if _, err := ParseLength(c.LineWidth); err != nil {
			return fmt.Errorf("line_width: %w", err)
		}
	}
	if c.Align != "" {
		if _, err := ParseAlignment(c.Align); err != nil {
			return err
		}
	}
	if c.Anchor != "" {
		if _, err := ParseVerticalAnchor(c.Anchor); err != nil {
			return err
		}
	}
	return nil
}

// ParseAlignment parses "left", "center", "right" or "justify"
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a, nil
	case "centre", "ctr":
		return AlignCenter, nil
	default:
		return "", fmt.Errorf("invalid alignment %q", s)
	}
}

// ParseVerticalAnchor parses "top", "middle" or "bottom"
func ParseVerticalAnchor(s string) (VerticalAnchor, error) {
	switch a := VerticalAnchor(strings.ToLower(strings.TrimSpace(s))); a {
	case AnchorTop, AnchorMiddle, AnchorBottom:
		return a, nil
	case "center", "ctr":
		return AnchorMiddle, nil
	default:
		return "", fmt.Errorf("invalid vertical anchor %q", s)
	}
}
