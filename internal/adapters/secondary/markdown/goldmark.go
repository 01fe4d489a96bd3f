// Package markdown turns inline markdown into formatted text paragraphs.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// GoldmarkConverter parses markdown with goldmark and maps the syntax tree
// onto paragraphs and runs. Headings and strong emphasis become bold, emphasis
// and block quotes italic, code monospace. List items become bulleted
// paragraphs indented by nesting level; ordered items keep their number.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with GitHub flavored markdown
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	return &GoldmarkConverter{md: md}
}

// ToParagraphs converts source into paragraphs
func (c *GoldmarkConverter) ToParagraphs(source string) ([]entities.Paragraph, error) {
	src := []byte(strings.ReplaceAll(source, "\r\n", "\n"))
	doc := c.md.Parser().Parse(text.NewReader(src))

	w := &walker{src: src}
	if err := w.blocks(doc, blockState{}); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return w.out, nil
}

type blockState struct {
	level  int
	italic bool
}

type walker struct {
	src []byte
	out []entities.Paragraph
}

func (w *walker) blocks(parent ast.Node, st blockState) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := w.block(n, st); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) block(n ast.Node, st blockState) error {
	switch node := n.(type) {
	case *ast.Heading:
		p := entities.Paragraph{}
		w.inlines(&p, node, entities.Font{Bold: true, Italic: st.italic})
		trimTrailingSpace(&p)
		w.out = append(w.out, p)

	case *ast.Paragraph, *ast.TextBlock:
		p := entities.Paragraph{}
		w.inlines(&p, node, entities.Font{Italic: st.italic})
		trimTrailingSpace(&p)
		w.out = append(w.out, p)

	case *ast.List:
		return w.list(node, st)

	case *ast.Blockquote:
		return w.blocks(node, blockState{level: st.level, italic: true})

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(w.src)), "\n")
			w.out = append(w.out, entities.Paragraph{
				Runs: []entities.Run{{Text: line, Font: entities.Font{Mono: true}}},
			})
		}

	case *east.Table:
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			p := entities.Paragraph{}
			header := row.Kind() == east.KindTableHeader
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				if cell.PreviousSibling() != nil {
					w.add(&p, " | ", entities.Font{})
				}
				w.inlines(&p, cell, entities.Font{Bold: header})
			}
			trimTrailingSpace(&p)
			w.out = append(w.out, p)
		}

	case *ast.ThematicBreak, *ast.HTMLBlock:

	default:
		return w.blocks(node, st)
	}
	return nil
}

func (w *walker) list(list *ast.List, st blockState) error {
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				if err := w.list(nested, blockState{level: st.level + 1, italic: st.italic}); err != nil {
					return err
				}
				continue
			}

			start := len(w.out)
			if err := w.block(child, st); err != nil {
				return err
			}
			for i := start; i < len(w.out); i++ {
				p := &w.out[i]
				p.Level = st.level
				if !first {
					continue
				}
				first = false
				if list.IsOrdered() {
					prepend(p, fmt.Sprintf("%d. ", number))
				} else {
					p.Bullet = true
				}
			}
		}
		number++
	}
	return nil
}

func (w *walker) inlines(p *entities.Paragraph, parent ast.Node, font entities.Font) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			w.add(p, string(node.Segment.Value(w.src)), font)
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.add(p, " ", font)
			}

		case *ast.String:
			w.add(p, string(node.Value), font)

		case *ast.Emphasis:
			f := font
			if node.Level >= 2 {
				f.Bold = true
			} else {
				f.Italic = true
			}
			w.inlines(p, node, f)

		case *ast.CodeSpan:
			f := font
			f.Mono = true
			w.inlines(p, node, f)

		case *ast.AutoLink:
			w.add(p, string(node.Label(w.src)), font)

		case *ast.RawHTML, *ast.Image:

		default:
			w.inlines(p, node, font)
		}
	}
}

// add appends text, merging it into the last run when the fonts match
func (w *walker) add(p *entities.Paragraph, s string, font entities.Font) {
	if s == "" {
		return
	}
	if n := len(p.Runs); n > 0 && sameFont(p.Runs[n-1].Font, font) {
		p.Runs[n-1].Text += s
		return
	}
	p.Runs = append(p.Runs, entities.Run{Text: s, Font: font})
}

// prepend puts s in front of the paragraph text, in the first run when it is
// unformatted
func prepend(p *entities.Paragraph, s string) {
	if len(p.Runs) > 0 && sameFont(p.Runs[0].Font, entities.Font{}) {
		p.Runs[0].Text = s + p.Runs[0].Text
		return
	}
	p.Runs = append([]entities.Run{{Text: s}}, p.Runs...)
}

func sameFont(a, b entities.Font) bool {
	return a.Size == b.Size && a.Bold == b.Bold && a.Italic == b.Italic && a.Mono == b.Mono && a.Color == b.Color
}

func trimTrailingSpace(p *entities.Paragraph) {
	for len(p.Runs) > 0 {
		last := &p.Runs[len(p.Runs)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			return
		}
		p.Runs = p.Runs[:len(p.Runs)-1]
	}
}

var _ ports.MarkdownConverter = (*GoldmarkConverter)(nil)
