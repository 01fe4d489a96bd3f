package entities

import "strings"

// Alignment is the horizontal alignment of a paragraph
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// VerticalAnchor is the vertical position of text inside its frame
type VerticalAnchor string

const (
	AnchorTop    VerticalAnchor = "top"
	AnchorMiddle VerticalAnchor = "middle"
	AnchorBottom VerticalAnchor = "bottom"
)

// Font holds character formatting. Zero values mean "inherit".
type Font struct {
	Size   Length    `json:"size,omitempty"`
	Bold   bool      `json:"bold,omitempty"`
	Italic bool      `json:"italic,omitempty"`
	Mono   bool      `json:"mono,omitempty"`
	Color  *RGBColor `json:"color,omitempty"`
}

// Run is a span of text sharing one font
type Run struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Paragraph is a sequence of runs
type Paragraph struct {
	Runs      []Run     `json:"runs"`
	Alignment Alignment `json:"alignment,omitempty"`
	Level     int       `json:"level,omitempty"`
	Bullet    bool      `json:"bullet,omitempty"`
}

// Text returns the concatenated text of the runs
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AddRun appends a run and returns a pointer to it
func (p *Paragraph) AddRun(text string) *Run {
	p.Runs = append(p.Runs, Run{Text: text})
	return &p.Runs[len(p.Runs)-1]
}

// TextFrame is the text container of a shape or table cell
type TextFrame struct {
	Paragraphs     []Paragraph    `json:"paragraphs"`
	VerticalAnchor VerticalAnchor `json:"vertical_anchor,omitempty"`
	WordWrap       bool           `json:"word_wrap"`
}

// NewTextFrame returns a frame holding one empty paragraph
func NewTextFrame() *TextFrame {
	return &TextFrame{Paragraphs: []Paragraph{{}}, WordWrap: true}
}

// Text joins paragraph texts with line feeds
func (tf *TextFrame) Text() string {
	if tf == nil {
		return ""
	}
	lines := make([]string, len(tf.Paragraphs))
	for i, p := range tf.Paragraphs {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// SetText replaces the content with one single-run paragraph per line
func (tf *TextFrame) SetText(text string) {
	lines := strings.Split(text, "\n")
	tf.Paragraphs = make([]Paragraph, len(lines))
	for i, line := range lines {
		tf.Paragraphs[i] = Paragraph{Runs: []Run{{Text: line}}}
	}
}

// AddParagraph appends an empty paragraph and returns it
func (tf *TextFrame) AddParagraph() *Paragraph {
	tf.Paragraphs = append(tf.Paragraphs, Paragraph{})
	return &tf.Paragraphs[len(tf.Paragraphs)-1]
}

// FirstParagraph returns the first paragraph, creating it when missing
func (tf *TextFrame) FirstParagraph() *Paragraph {
	if len(tf.Paragraphs) == 0 {
		tf.Paragraphs = append(tf.Paragraphs, Paragraph{})
	}
	return &tf.Paragraphs[0]
}

// SetFontSize applies size to every run of the frame
func (tf *TextFrame) SetFontSize(size Length) {
	for i := range tf.Paragraphs {
		for j := range tf.Paragraphs[i].Runs {
			tf.Paragraphs[i].Runs[j].Font.Size = size
		}
	}
}
