package pptx

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Application is written to the extended document properties
const Application = "pptgrid"

// OOXMLWriter writes presentations as PresentationML packages directly
type OOXMLWriter struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewOOXMLWriter creates a writer. A nil logger uses slog.Default().
func NewOOXMLWriter(logger *slog.Logger) *OOXMLWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OOXMLWriter{logger: logger.With("engine", string(entities.EngineOOXML)), now: time.Now}
}

// Engine implements ports.PresentationWriter
func (w *OOXMLWriter) Engine() entities.Engine {
	return entities.EngineOOXML
}

// part is one file of the package
type part struct {
	name string
	data []byte
}

// Write encodes prs as a .pptx package into out
func (w *OOXMLWriter) Write(ctx context.Context, prs *entities.Presentation, out io.Writer) error {
	if err := prs.Validate(); err != nil {
		return fmt.Errorf("invalid presentation: %w", err)
	}
	parts, err := w.parts(ctx, prs)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(out)
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}

	w.logger.Debug("package written",
		slog.Int("parts", len(parts)),
		slog.Int("slides", prs.SlideCount()))
	return nil
}

func (w *OOXMLWriter) parts(ctx context.Context, prs *entities.Presentation) ([]part, error) {
	width, height, _ := prs.SlideSize()
	types := newContentTypes()
	var parts []part
	add := func(name, contentType string, data []byte) {
		if contentType != "" {
			types.override(name, contentType)
		}
		parts = append(parts, part{name: name, data: data})
	}
	addXML := func(name, contentType string, v interface{}) error {
		data, err := marshalPart(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", name, err)
		}
		add(name, contentType, data)
		return nil
	}

	hasNotes := false
	for _, s := range prs.Slides {
		if s.Notes != "" {
			hasNotes = true
			break
		}
	}

	// Master and layouts
	masterRels := &xRelationships{}
	layoutRels := make([]string, len(prs.SlideLayouts))
	for i, layout := range prs.SlideLayouts {
		name := fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1)
		layoutRels[i] = masterRels.add(relSlideLayout, fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1))
		add(name, ctSlideLayout, slideLayoutXML(layout))
		rels := &xRelationships{}
		rels.add(relSlideMaster, "../slideMasters/slideMaster1.xml")
		if err := addXML(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1), "", rels); err != nil {
			return nil, err
		}
	}
	masterRels.add(relTheme, "../theme/theme1.xml")
	add("ppt/slideMasters/slideMaster1.xml", ctSlideMaster, slideMasterXML(layoutRels))
	if err := addXML("ppt/slideMasters/_rels/slideMaster1.xml.rels", "", masterRels); err != nil {
		return nil, err
	}
	add("ppt/theme/theme1.xml", ctTheme, themeXML())

	// Slides and notes
	presRels := &xRelationships{}
	masterRel := presRels.add(relSlideMaster, "slideMasters/slideMaster1.xml")
	slideRels := make([]string, 0, len(prs.Slides))
	for i, slide := range prs.Slides {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("writing slide %d: %w", i+1, err)
		}
		n := i + 1
		slideRels = append(slideRels, presRels.add(relSlide, fmt.Sprintf("slides/slide%d.xml", n)))

		rels := &xRelationships{}
		rels.add(relSlideLayout, fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layoutNumber(prs, slide)))
		if slide.Notes != "" {
			rels.add(relNotesSlide, fmt.Sprintf("../notesSlides/notesSlide%d.xml", n))

			notesRels := &xRelationships{}
			notesRels.add(relNotesMaster, "../notesMasters/notesMaster1.xml")
			notesRels.add(relSlide, fmt.Sprintf("../slides/slide%d.xml", n))
			if err := addXML(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), ctNotesSlide, newNotesXML(slide.Notes)); err != nil {
				return nil, err
			}
			if err := addXML(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), "", notesRels); err != nil {
				return nil, err
			}
		}
		if err := addXML(fmt.Sprintf("ppt/slides/slide%d.xml", n), ctSlide, newSlideXML(slide)); err != nil {
			return nil, err
		}
		if err := addXML(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), "", rels); err != nil {
			return nil, err
		}
		w.logger.Debug("slide encoded", slog.Int("slide", n), slog.Int("shapes", len(slide.Shapes)))
	}

	notesMasterRel := ""
	if hasNotes {
		notesMasterRel = presRels.add(relNotesMaster, "notesMasters/notesMaster1.xml")
		nmRels := &xRelationships{}
		nmRels.add(relTheme, "../theme/theme2.xml")
		add("ppt/notesMasters/notesMaster1.xml", ctNotesMaster, notesMasterXML())
		if err := addXML("ppt/notesMasters/_rels/notesMaster1.xml.rels", "", nmRels); err != nil {
			return nil, err
		}
		add("ppt/theme/theme2.xml", ctTheme, themeXML())
	}

	presRels.add(relPresProps, "presProps.xml")
	presRels.add(relViewProps, "viewProps.xml")
	presRels.add(relTheme, "theme/theme1.xml")
	presRels.add(relTableStyles, "tableStyles.xml")
	add("ppt/presProps.xml", ctPresProps, presPropsXML())
	add("ppt/viewProps.xml", ctViewProps, viewPropsXML())
	add("ppt/tableStyles.xml", ctTableStyles, tableStylesXML())
	add("ppt/presentation.xml", ctPresentation, presentationXML(width, height, slideRels, masterRel, notesMasterRel))
	if err := addXML("ppt/_rels/presentation.xml.rels", "", presRels); err != nil {
		return nil, err
	}

	// Package level
	add("docProps/core.xml", ctCoreProps, corePropsXML(prs, w.now()))
	add("docProps/app.xml", ctExtProps, appPropsXML(prs, Application))
	rootRels := &xRelationships{}
	rootRels.add(relOfficeDocument, "ppt/presentation.xml")
	rootRels.add(relCoreProps, "docProps/core.xml")
	rootRels.add(relExtendedProps, "docProps/app.xml")
	if err := addXML("_rels/.rels", "", rootRels); err != nil {
		return nil, err
	}

	ct, err := marshalPart(types)
	if err != nil {
		return nil, fmt.Errorf("encoding content types: %w", err)
	}
	// [Content_Types].xml goes first so readers can sniff the package type
	return append([]part{{name: "[Content_Types].xml", data: ct}}, parts...), nil
}

// layoutNumber returns the 1-based part number of the slide's layout
func layoutNumber(prs *entities.Presentation, slide *entities.Slide) int {
	for i, layout := range prs.SlideLayouts {
		if layout == slide.Layout {
			return i + 1
		}
	}
	if slide.Layout != nil && slide.Layout.Index >= 0 && slide.Layout.Index < len(prs.SlideLayouts) {
		return slide.Layout.Index + 1
	}
	return 1
}

var _ ports.PresentationWriter = (*OOXMLWriter)(nil)
