// Package builders creates decks and presentations for tests.
package builders

import (
	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck entities.Deck
}

// NewDeckBuilder creates a deck builder titled "Test Deck" with no slides
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{deck: entities.Deck{Title: "Test Deck", Author: "Test Author"}}
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithAuthor sets the deck author
func (b *DeckBuilder) WithAuthor(author string) *DeckBuilder {
	b.deck.Author = author
	return b
}

// WithSlideSize sets textual slide dimensions such as "13.333in"
func (b *DeckBuilder) WithSlideSize(width, height string) *DeckBuilder {
	b.deck.SlideSize = &entities.SlideSize{Width: width, Height: height}
	return b
}

// WithSlide adds a slide laid out by root
func (b *DeckBuilder) WithSlide(root entities.DeckNode) *DeckBuilder {
	b.deck.Slides = append(b.deck.Slides, entities.DeckSlide{Root: root})
	return b
}

// WithNotes sets the notes of the last slide
func (b *DeckBuilder) WithNotes(notes string) *DeckBuilder {
	if n := len(b.deck.Slides); n > 0 {
		b.deck.Slides[n-1].Notes = notes
	}
	return b
}

// WithDebug outlines every area of the last slide
func (b *DeckBuilder) WithDebug() *DeckBuilder {
	if n := len(b.deck.Slides); n > 0 {
		b.deck.Slides[n-1].Debug = true
	}
	return b
}

// WithEmptySlides adds count slides without content
func (b *DeckBuilder) WithEmptySlides(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.WithSlide(entities.DeckNode{})
	}
	return b
}

// Build returns a copy of the deck
func (b *DeckBuilder) Build() *entities.Deck {
	deck := b.deck
	deck.Slides = append([]entities.DeckSlide(nil), b.deck.Slides...)
	return &deck
}

// Split returns a node dividing its area along direction ("horizontal" or
// "vertical") among children.
func Split(direction string, children ...entities.DeckNode) entities.DeckNode {
	return entities.DeckNode{Split: direction, Children: children}
}

// Text returns a leaf node holding text
func Text(text string) entities.DeckNode {
	return entities.DeckNode{Content: &entities.ContentSpec{Kind: entities.ContentText, Text: text}}
}

// Rect returns a leaf node filled with fill
func Rect(fill string) entities.DeckNode {
	return entities.DeckNode{Content: &entities.ContentSpec{Kind: entities.ContentRect, Fill: fill}}
}

// Table returns a leaf node holding the table read from source
func Table(source string) entities.DeckNode {
	return entities.DeckNode{Content: &entities.ContentSpec{Kind: entities.ContentTable, Source: source}}
}

// Sized sets the length and name of node
func Sized(node entities.DeckNode, length, name string) entities.DeckNode {
	node.Length = length
	node.Name = name
	return node
}

// HeaderBodyDeck is a one slide deck: a 1in "header" text above a "body"
// table read from source.
func HeaderBodyDeck(title, source string) *entities.Deck {
	return NewDeckBuilder().
		WithTitle(title).
		WithSlide(Split("vertical",
			Sized(Text(title), "1in", "header"),
			Sized(Table(source), "", "body"),
		)).
		Build()
}
