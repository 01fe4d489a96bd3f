package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlide_Validate(t *testing.T) {
	layout := &SlideLayout{Index: 6, Name: "Blank"}

	tests := []struct {
		name    string
		slide   Slide
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid empty slide",
			slide: Slide{Index: 0, Layout: layout},
		},
		{
			name:    "negative index",
			slide:   Slide{Index: -1, Layout: layout},
			wantErr: true,
			errMsg:  "slide index must be non-negative",
		},
		{
			name:    "missing layout",
			slide:   Slide{Index: 0},
			wantErr: true,
			errMsg:  "slide layout is required",
		},
		{
			name: "duplicate shape ids",
			slide: Slide{Layout: layout, Shapes: []*Shape{
				{ID: 2, Name: "a"},
				{ID: 2, Name: "b"},
			}},
			wantErr: true,
			errMsg:  "duplicate shape id 2",
		},
		{
			name: "negative size",
			slide: Slide{Layout: layout, Shapes: []*Shape{
				{ID: 2, Name: "a", Rect: Rect{Width: -1}},
			}},
			wantErr: true,
			errMsg:  "negative size",
		},
		{
			name: "table shape without table",
			slide: Slide{Layout: layout, Shapes: []*Shape{
				{ID: 2, Name: "Table 1", Kind: ShapeTable},
			}},
			wantErr: true,
			errMsg:  "has no table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slide.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlide_AddShapes(t *testing.T) {
	slide := &Slide{Layout: &SlideLayout{Name: "Blank"}}
	rect := Rect{X: Inches(1), Y: Inches(1), Width: Inches(2), Height: Inches(1)}

	shape := slide.AddShape(rect)
	assert.Equal(t, 2, shape.ID)
	assert.Equal(t, "Rectangle 1", shape.Name)
	assert.Equal(t, ShapeRectangle, shape.Kind)
	assert.Equal(t, rect, shape.Rect)
	assert.False(t, shape.Fill.IsSolid())
	assert.False(t, shape.Line.Visible())
	require.True(t, shape.HasTextFrame())
	assert.Equal(t, AnchorMiddle, shape.TextFrame.VerticalAnchor)

	box := slide.AddTextbox(rect)
	assert.Equal(t, 3, box.ID)
	assert.Equal(t, "TextBox 2", box.Name)
	assert.Equal(t, ShapeTextbox, box.Kind)

	tbl, err := slide.AddTable(2, 3, rect)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.ID)
	assert.Equal(t, "Table 3", tbl.Name)
	require.NotNil(t, tbl.Table)
	assert.Equal(t, 2, tbl.Table.Rows)
	assert.Equal(t, 3, tbl.Table.Cols)

	_, err = slide.AddTable(0, 3, rect)
	assert.ErrorIs(t, err, ErrSpecMismatch)

	assert.Len(t, slide.Shapes, 3)
	assert.NoError(t, slide.Validate())
}

func TestShape_Text(t *testing.T) {
	shape := &Shape{}
	assert.Equal(t, "", shape.Text())
	assert.False(t, shape.HasTextFrame())

	shape.SetText("first\nsecond")
	require.True(t, shape.HasTextFrame())
	assert.Equal(t, "first\nsecond", shape.Text())
	assert.Len(t, shape.TextFrame.Paragraphs, 2)
	assert.Equal(t, "second", shape.TextFrame.Paragraphs[1].Text())
}

func TestSlide_ExtractTitle(t *testing.T) {
	slide := &Slide{Index: 2}
	assert.Equal(t, "Slide 3", slide.ExtractTitle())

	slide.AddShape(Rect{})
	box := slide.AddTextbox(Rect{})
	box.SetText("Quarterly")
	assert.Equal(t, "Quarterly", slide.ExtractTitle())
}
