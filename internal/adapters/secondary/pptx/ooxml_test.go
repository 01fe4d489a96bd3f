package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tabula "github.com/tsawler/tabula/pptx"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

func TestOOXMLWriter_Engine(t *testing.T) {
	assert.Equal(t, entities.EngineOOXML, NewOOXMLWriter(nil).Engine())
}

func TestOOXMLWriter_RoundTrip(t *testing.T) {
	path := writeFile(t, NewOOXMLWriter(nil), samplePresentation(t))

	r, err := tabula.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 2, r.SlideCount())
	meta := r.Metadata()
	assert.Equal(t, "Quarterly Review", meta.Title)
	assert.Equal(t, "Data Team", meta.Author)

	t.Run("text blocks keep position and formatting", func(t *testing.T) {
		slide, err := r.Slide(0)
		require.NoError(t, err)

		// the outline rectangle has no text and is not reported
		require.Len(t, slide.Content, 1)
		block := slide.Content[0]
		assert.Equal(t, "Revenue\nup 12%", block.Text)
		assert.Equal(t, int(entities.Inches(1)), block.X)
		assert.Equal(t, int(entities.Inches(1)), block.Y)
		assert.Equal(t, int(entities.Inches(4)), block.Width)

		require.Len(t, block.Paragraphs, 2)
		assert.Equal(t, "ctr", block.Paragraphs[0].Alignment)
		require.Len(t, block.Paragraphs[0].Runs, 1)
		assert.True(t, block.Paragraphs[0].Runs[0].Bold)
		assert.Equal(t, 2400, block.Paragraphs[0].Runs[0].FontSize)
	})

	t.Run("tables keep cell text", func(t *testing.T) {
		slide, err := r.Slide(0)
		require.NoError(t, err)

		require.Len(t, slide.Tables, 1)
		table := slide.Tables[0]
		assert.Equal(t, 2, table.Columns)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "region", table.Rows[0][0].Text)
		assert.Equal(t, "42", table.Rows[1][1].Text)
	})

	t.Run("notes", func(t *testing.T) {
		first, err := r.Slide(0)
		require.NoError(t, err)
		assert.Equal(t, "Mention the north region", first.Notes)

		second, err := r.Slide(1)
		require.NoError(t, err)
		assert.Empty(t, second.Notes)
	})

	t.Run("special characters and bullets", func(t *testing.T) {
		slide, err := r.Slide(1)
		require.NoError(t, err)

		require.Len(t, slide.Content, 1)
		assert.Equal(t, "R&D <budget>", slide.Content[0].Text)
		require.Len(t, slide.Content[0].Paragraphs, 1)
		assert.True(t, slide.Content[0].Paragraphs[0].IsBullet)
	})
}

func TestOOXMLWriter_Package(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOOXMLWriter(nil).Write(context.Background(), samplePresentation(t), &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.Equal(t, "[Content_Types].xml", zr.File[0].Name)

	for _, want := range []string{
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout7.xml",
		"ppt/slideLayouts/slideLayout11.xml",
		"ppt/theme/theme1.xml",
		"ppt/notesMasters/notesMaster1.xml",
		"ppt/notesSlides/notesSlide1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide1.xml.rels",
	} {
		assert.True(t, names[want], "missing part %s", want)
	}
	assert.False(t, names["ppt/notesSlides/notesSlide2.xml"], "slide without notes has no notes part")

	t.Run("every part is well-formed", func(t *testing.T) {
		for _, f := range zr.File {
			rc, err := f.Open()
			require.NoError(t, err)
			dec := xml.NewDecoder(rc)
			for {
				_, err := dec.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err, f.Name)
			}
			rc.Close()
		}
	})

	read := func(name string) string {
		t.Helper()
		f, err := zr.Open(name)
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		return string(data)
	}

	t.Run("presentation lists slides and size", func(t *testing.T) {
		doc := read("ppt/presentation.xml")
		assert.Contains(t, doc, `<p:sldSz cx="9144000" cy="6858000"/>`)
		assert.Contains(t, doc, `<p:sldId id="256"`)
		assert.Contains(t, doc, `<p:sldId id="257"`)
		assert.Contains(t, doc, `<p:notesMasterIdLst>`)
	})

	t.Run("slides use the blank layout", func(t *testing.T) {
		rels := read("ppt/slides/_rels/slide2.xml.rels")
		assert.Contains(t, rels, "../slideLayouts/slideLayout7.xml")
		assert.Contains(t, read("ppt/slideLayouts/slideLayout7.xml"), `type="blank"`)
	})

	t.Run("outline and fills", func(t *testing.T) {
		slide := read("ppt/slides/slide1.xml")
		assert.Contains(t, slide, `<a:ln w="12700"><a:solidFill><a:srgbClr val="FF0000"></a:srgbClr></a:solidFill></a:ln>`)
		assert.Contains(t, slide, `<a:srgbClr val="DDDDDD">`)
		assert.Contains(t, slide, `txBox="1"`)
		assert.Contains(t, slide, tableURI)
	})

	t.Run("metadata", func(t *testing.T) {
		assert.Contains(t, read("docProps/app.xml"), "<Company>Acme</Company>")
		assert.Contains(t, read("docProps/app.xml"), "<Slides>2</Slides>")
	})
}

func TestOOXMLWriter_Errors(t *testing.T) {
	t.Run("invalid presentation", func(t *testing.T) {
		err := NewOOXMLWriter(nil).Write(context.Background(), &entities.Presentation{}, io.Discard)
		assert.ErrorIs(t, err, entities.ErrPresentation)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewOOXMLWriter(nil).Write(ctx, samplePresentation(t), io.Discard)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, strings.Contains(err.Error(), "slide 1"))
	})
}

func TestSplitEven(t *testing.T) {
	tests := []struct {
		total int64
		n     int
		want  []int64
	}{
		{total: 10, n: 2, want: []int64{5, 5}},
		{total: 10, n: 3, want: []int64{3, 3, 4}},
		{total: 7, n: 1, want: []int64{7}},
		{total: 5, n: 0, want: []int64{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitEven(tt.total, tt.n))
	}
}

func TestLayoutNumber(t *testing.T) {
	prs := entities.NewPresentation()
	blank, err := prs.SlideLayouts.Blank()
	require.NoError(t, err)

	assert.Equal(t, 7, layoutNumber(prs, &entities.Slide{Layout: blank}))
	assert.Equal(t, 2, layoutNumber(prs, &entities.Slide{Layout: &entities.SlideLayout{Index: 1, Name: "copy"}}))
	assert.Equal(t, 1, layoutNumber(prs, &entities.Slide{Layout: &entities.SlideLayout{Index: 40}}))
}
