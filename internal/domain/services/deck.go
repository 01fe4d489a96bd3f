package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// maxTableLoads bounds concurrent table source reads
const maxTableLoads = 4

// DeckService builds presentations from deck definitions
type DeckService struct {
	config   *entities.Config
	sources  []ports.TableSource
	measurer ports.TextMeasurer
	markdown ports.MarkdownConverter
	logger   *slog.Logger
	debugAll bool
}

// NewDeckService creates a deck service. A nil config uses built-in defaults,
// a nil measurer uses a rough glyph-width estimate and a nil markdown
// converter renders markdown text verbatim.
func NewDeckService(
	config *entities.Config,
	sources []ports.TableSource,
	measurer ports.TextMeasurer,
	markdown ports.MarkdownConverter,
	logger *slog.Logger,
) *DeckService {
	if config == nil {
		config = &entities.Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckService{
		config:   config,
		sources:  sources,
		measurer: measurer,
		markdown: markdown,
		logger:   logger,
	}
}

// SetDebugAll draws debug outlines on every slide, whatever the deck says
func (s *DeckService) SetDebugAll(on bool) {
	s.debugAll = on
}

// Build lays out and renders every slide of the deck
func (s *DeckService) Build(ctx context.Context, deck *entities.Deck, baseDir string) (*entities.Presentation, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	prs, err := s.newPresentation(deck)
	if err != nil {
		return nil, err
	}

	frames, err := s.prefetchTables(ctx, deck, baseDir)
	if err != nil {
		return nil, err
	}

	for i := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.buildSlide(prs, &deck.Slides[i], frames, baseDir); err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
	}

	s.logger.Info("deck built",
		slog.String("title", prs.Title),
		slog.Int("slides", prs.SlideCount()),
		slog.Int("tables", len(frames)))
	return prs, nil
}

func (s *DeckService) newPresentation(deck *entities.Deck) (*entities.Presentation, error) {
	prs := entities.NewPresentation()
	prs.Title = deck.Title
	prs.Subject = deck.Subject
	prs.Author = deck.Author
	if prs.Author == "" {
		prs.Author = s.config.Metadata.Author
	}
	prs.Company = s.config.Metadata.Company

	width, height := s.config.Output.GetSlideSize()
	if deck.SlideSize != nil {
		w, h, err := deck.SlideSize.Resolve()
		if err != nil {
			return nil, err
		}
		width, height = w, h
	}
	prs.SetSlideSize(width, height)
	return prs, nil
}

func (s *DeckService) buildSlide(prs *entities.Presentation, spec *entities.DeckSlide, frames map[tableKey]*entities.DataFrame, baseDir string) error {
	layout, err := s.slideLayout(prs, spec.Layout)
	if err != nil {
		return err
	}
	root, err := NewSlideRootWithLayout(prs, layout, s.logger)
	if err != nil {
		return err
	}
	root.Slide().Notes = spec.Notes

	var placed []placement
	if err := buildNode(root.Area(), &spec.Root, &placed); err != nil {
		return err
	}
	if err := root.Resolve(); err != nil {
		return err
	}

	for _, p := range placed {
		if err := s.renderContent(root, p.area, p.content, frames, baseDir); err != nil {
			return fmt.Errorf("%s: %w", areaLabel(p.area), err)
		}
	}

	if spec.Debug || s.debugAll {
		return s.drawDebug(root)
	}
	return nil
}

func (s *DeckService) slideLayout(prs *entities.Presentation, name string) (*entities.SlideLayout, error) {
	if strings.TrimSpace(name) == "" {
		return prs.SlideLayouts.Blank()
	}
	return prs.SlideLayouts.ByName(name)
}

type placement struct {
	area    *entities.Area
	content *entities.ContentSpec
}

// buildNode mirrors a deck node onto area, collecting content placements in
// drawing order (parents before children).
func buildNode(area *entities.Area, node *entities.DeckNode, placed *[]placement) error {
	if node.Name != "" {
		area.Name = node.Name
	}
	if node.Content != nil {
		*placed = append(*placed, placement{area: area, content: node.Content})
	}
	if len(node.Children) == 0 {
		return nil
	}

	lengths := make([]entities.Unit, len(node.Children))
	for i := range node.Children {
		unit, err := node.Children[i].Unit()
		if err != nil {
			return err
		}
		if unit == nil {
			unit = entities.Auto()
		}
		lengths[i] = unit
	}

	children, err := area.Split(node.Split, lengths)
	if err != nil {
		return err
	}
	for i, child := range children {
		if err := buildNode(child, &node.Children[i], placed); err != nil {
			return err
		}
	}
	return nil
}

func (s *DeckService) renderContent(root *SlideRoot, area *entities.Area, c *entities.ContentSpec, frames map[tableKey]*entities.DataFrame, baseDir string) error {
	rect, err := area.Rect()
	if err != nil {
		return err
	}

	switch c.Kind {
	case entities.ContentRect:
		lineWidth, err := optionalLength(c.LineWidth)
		if err != nil {
			return err
		}
		_, err = root.DrawRect(rect, RectStyle{Fill: c.Fill, Line: c.Line, LineWidth: lineWidth})
		return err

	case entities.ContentText:
		return s.renderText(root, rect, c)

	case entities.ContentTable:
		df, ok := frames[newTableKey(c, baseDir)]
		if !ok {
			return fmt.Errorf("table %s was not loaded", c.Source)
		}
		style, err := TableStyleFromConfig(s.config.Table)
		if err != nil {
			return err
		}
		_, err = root.AddTable(area, df, s.measurer, style)
		return err

	case entities.ContentDebug:
		label := c.Label
		if label == "" {
			label = area.Name
		}
		_, err := root.DebugRect(area, label, s.debugStyle(c))
		return err

	default:
		return fmt.Errorf("unknown content kind %q", c.Kind)
	}
}

func (s *DeckService) renderText(root *SlideRoot, rect entities.Rect, c *entities.ContentSpec) error {
	shape := root.Text(rect, c.Text)

	if c.Markdown && s.markdown != nil {
		paragraphs, err := s.markdown.ToParagraphs(c.Text)
		if err != nil {
			return fmt.Errorf("converting markdown: %w", err)
		}
		if len(paragraphs) > 0 {
			shape.TextFrame.Paragraphs = paragraphs
		}
	}

	if c.Fill != "" || c.Line != "" {
		style := RectStyle{Fill: c.Fill, Line: c.Line, NoLine: c.Line == ""}
		if err := applyRectStyle(shape, style); err != nil {
			return err
		}
	}

	if c.Anchor != "" {
		anchor, err := entities.ParseVerticalAnchor(c.Anchor)
		if err != nil {
			return err
		}
		shape.TextFrame.VerticalAnchor = anchor
	}

	var align entities.Alignment
	if c.Align != "" {
		a, err := entities.ParseAlignment(c.Align)
		if err != nil {
			return err
		}
		align = a
	}
	size, err := optionalLength(c.FontSize)
	if err != nil {
		return err
	}
	var color *entities.RGBColor
	if c.Color != "" {
		rgb, err := entities.RGBColorFromString(c.Color)
		if err != nil {
			return err
		}
		color = &rgb
	}

	for i := range shape.TextFrame.Paragraphs {
		p := &shape.TextFrame.Paragraphs[i]
		if align != "" {
			p.Alignment = align
		}
		for j := range p.Runs {
			run := &p.Runs[j]
			if size > 0 && run.Font.Size == 0 {
				run.Font.Size = size
			}
			if c.Bold {
				run.Font.Bold = true
			}
			if color != nil {
				run.Font.Color = color
			}
		}
	}
	return nil
}

func (s *DeckService) debugStyle(c *entities.ContentSpec) RectStyle {
	style := RectStyle{
		Line:      s.config.Debug.GetLineColor(),
		LineWidth: s.config.Debug.GetLineWidth(),
	}
	if c != nil && c.Line != "" {
		style.Line = c.Line
	}
	return style
}

// drawDebug outlines every area below the root. Leaf areas are filled first
// when [debug] fill is set.
func (s *DeckService) drawDebug(root *SlideRoot) error {
	style := s.debugStyle(nil)
	dbg := s.config.Debug
	return root.Area().Walk(func(a *entities.Area) error {
		if a.IsRoot() {
			return nil
		}
		rect, err := a.Rect()
		if err != nil {
			return err
		}
		if dbg.Fill != "" && a.Len() == 0 {
			if _, err := root.DrawRect(rect, RectStyle{Fill: dbg.Fill, NoLine: true}); err != nil {
				return err
			}
		}
		if dbg.HideLabels {
			_, err = root.DrawRect(rect, style)
			return err
		}
		_, err = root.DebugRect(a, a.Name, style)
		return err
	})
}

// Demo builds a single slide with 0.75in margins whose content area holds
// two rows of two boxes separated by 0.75in gaps. The rows, the boxes and
// the left, top and bottom margins are outlined and labelled.
func (s *DeckService) Demo(ctx context.Context) (*entities.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prs := entities.NewPresentation()
	prs.Title = "pptgrid demo"
	prs.Author = s.config.Metadata.Author
	width, height := s.config.Output.GetSlideSize()
	prs.SetSlideSize(width, height)

	root, err := NewSlideRoot(prs, s.logger)
	if err != nil {
		return nil, err
	}

	gap := entities.Inch(0.75)
	cols, err := root.Area().SplitHorizontal(gap, entities.Auto(), gap)
	if err != nil {
		return nil, err
	}
	middle, err := cols[1].SplitVertical(gap, entities.Auto(), gap)
	if err != nil {
		return nil, err
	}
	rows, err := middle[1].SplitVertical(entities.Auto(), gap, entities.Auto())
	if err != nil {
		return nil, err
	}
	top, err := rows[0].SplitHorizontal(entities.Auto(), gap, entities.Auto())
	if err != nil {
		return nil, err
	}
	bottom, err := rows[2].SplitHorizontal(entities.Auto(), gap, entities.Auto())
	if err != nil {
		return nil, err
	}
	if err := root.Resolve(); err != nil {
		return nil, err
	}

	style := s.debugStyle(nil)
	labelled := []struct {
		area  *entities.Area
		label string
	}{
		{rows[0], "row1"},
		{rows[2], "row2"},
		{top[0], "box1"},
		{top[2], "box2"},
		{bottom[0], "box3"},
		{bottom[2], "box4"},
		{cols[0], "Left"},
		{middle[0], "Top"},
		{middle[2], "Bottom"},
	}
	for _, l := range labelled {
		if _, err := root.DebugRect(l.area, l.label, style); err != nil {
			return nil, err
		}
	}
	return prs, nil
}

type tableKey struct {
	path    string
	sheet   string
	maxRows int
}

func newTableKey(c *entities.ContentSpec, baseDir string) tableKey {
	path := c.Source
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	return tableKey{path: filepath.Clean(path), sheet: c.Sheet, maxRows: c.MaxRows}
}

// TableSources returns the resolved paths of every table the deck reads
func TableSources(deck *entities.Deck, baseDir string) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, key := range collectTables(deck, baseDir) {
		if !seen[key.path] {
			seen[key.path] = true
			paths = append(paths, key.path)
		}
	}
	return paths
}

func collectTables(deck *entities.Deck, baseDir string) []tableKey {
	seen := make(map[tableKey]bool)
	var keys []tableKey
	var visit func(n *entities.DeckNode)
	visit = func(n *entities.DeckNode) {
		if n.Content != nil && n.Content.Kind == entities.ContentTable {
			key := newTableKey(n.Content, baseDir)
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
		for i := range n.Children {
			visit(&n.Children[i])
		}
	}
	for i := range deck.Slides {
		visit(&deck.Slides[i].Root)
	}
	return keys
}

// prefetchTables loads every distinct table source concurrently
func (s *DeckService) prefetchTables(ctx context.Context, deck *entities.Deck, baseDir string) (map[tableKey]*entities.DataFrame, error) {
	keys := collectTables(deck, baseDir)
	frames := make(map[tableKey]*entities.DataFrame, len(keys))
	if len(keys) == 0 {
		return frames, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTableLoads)

	for _, key := range keys {
		g.Go(func() error {
			source, err := s.sourceFor(key.path)
			if err != nil {
				return err
			}
			df, err := source.Load(gctx, ports.TableRequest{Path: key.path, Sheet: key.sheet, MaxRows: key.maxRows})
			if err != nil {
				return fmt.Errorf("loading table %s: %w", key.path, err)
			}
			mu.Lock()
			frames[key] = df
			mu.Unlock()

			s.logger.Debug("table loaded",
				slog.String("path", key.path),
				slog.Int("rows", df.Height()),
				slog.Int("cols", df.Width()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *DeckService) sourceFor(path string) (ports.TableSource, error) {
	for _, source := range s.sources {
		if source.Supports(path) {
			return source, nil
		}
	}
	return nil, fmt.Errorf("no table source supports %s", filepath.Base(path))
}

func optionalLength(s string) (entities.Length, error) {
	if s == "" {
		return 0, nil
	}
	return entities.ParseLength(s)
}

func areaLabel(a *entities.Area) string {
	pos, err := a.Pos()
	if err != nil {
		return "area"
	}
	if a.Name != "" {
		return fmt.Sprintf("area %s %s", entities.FormatPos(pos), a.Name)
	}
	return "area " + entities.FormatPos(pos)
}

var _ ports.DeckService = (*DeckService)(nil)
