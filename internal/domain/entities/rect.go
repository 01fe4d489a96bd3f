package entities

import "fmt"

// Rect is a rectangle positioned on a slide, in EMUs
type Rect struct {
	X      Length `json:"x"`
	Y      Length `json:"y"`
	Width  Length `json:"width"`
	Height Length `json:"height"`
}

// SplitHorizontal lays rectangles out left to right, resolving specs
// against the width.
func (r Rect) SplitHorizontal(specs []Unit) ([]Rect, error) {
	widths, err := ResolveLengthSpan(specs, r.Width)
	if err != nil {
		return nil, err
	}
	out := make([]Rect, 0, len(widths))
	cursor := r.X
	for _, w := range widths {
		out = append(out, Rect{X: cursor, Y: r.Y, Width: w, Height: r.Height})
		cursor += w
	}
	return out, nil
}

// SplitVertical stacks rectangles top to bottom, resolving specs against
// the height.
func (r Rect) SplitVertical(specs []Unit) ([]Rect, error) {
	heights, err := ResolveLengthSpan(specs, r.Height)
	if err != nil {
		return nil, err
	}
	out := make([]Rect, 0, len(heights))
	cursor := r.Y
	for _, h := range heights {
		out = append(out, Rect{X: r.X, Y: cursor, Width: r.Width, Height: h})
		cursor += h
	}
	return out, nil
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() Length { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() Length { return r.Y + r.Height }

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Inset shrinks the rectangle by d on every side, never below zero size
func (r Rect) Inset(d Length) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(x=%d, y=%d, width=%d, height=%d)", r.X, r.Y, r.Width, r.Height)
}
