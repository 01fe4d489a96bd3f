package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadFile(ctx context.Context, path string) (*entities.Config, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, paths ...string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, paths)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Add(paths ...string) error {
	args := m.Called(paths)
	return args.Error(0)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

type MockHTTPServer struct {
	mock.Mock
}

func (m *MockHTTPServer) Start(ctx context.Context, port int, host string) error {
	args := m.Called(ctx, port, host)
	return args.Error(0)
}

func (m *MockHTTPServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHTTPServer) NotifyClients(event ports.UpdateEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockHTTPServer) IsRunning() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockDeckRepository struct {
	mock.Mock
}

func (m *MockDeckRepository) Load(ctx context.Context, path string) (*entities.Deck, error) {
	args := m.Called(ctx, path)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckRepository) Parse(data []byte) (*entities.Deck, error) {
	args := m.Called(data)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeTableSource serves frames keyed by file base name
type fakeTableSource struct {
	mu     sync.Mutex
	frames map[string]*entities.DataFrame
	loads  []ports.TableRequest
	err    error
}

func (f *fakeTableSource) Supports(path string) bool {
	return strings.HasSuffix(path, ".csv")
}

func (f *fakeTableSource) Load(_ context.Context, req ports.TableRequest) (*entities.DataFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, req)
	if f.err != nil {
		return nil, f.err
	}
	for name, df := range f.frames {
		if strings.HasSuffix(req.Path, name) {
			if req.MaxRows > 0 {
				return df.Head(req.MaxRows), nil
			}
			return df, nil
		}
	}
	return nil, fmt.Errorf("no such table %s", req.Path)
}

// fakeWriter writes a marker line per slide
type fakeWriter struct {
	engine entities.Engine
	err    error
}

func (f *fakeWriter) Engine() entities.Engine { return f.engine }

func (f *fakeWriter) Write(_ context.Context, prs *entities.Presentation, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	for _, slide := range prs.Slides {
		if _, err := fmt.Fprintf(w, "slide %d: %d shapes\n", slide.Index+1, len(slide.Shapes)); err != nil {
			return err
		}
	}
	return nil
}

// fakeMarkdown turns "**x**" into a single bold run and anything else into a plain run
type fakeMarkdown struct{}

func (fakeMarkdown) ToParagraphs(source string) ([]entities.Paragraph, error) {
	var out []entities.Paragraph
	for _, line := range strings.Split(source, "\n") {
		text := strings.TrimPrefix(line, "# ")
		bold := strings.HasPrefix(text, "**") && strings.HasSuffix(text, "**")
		text = strings.Trim(text, "*")
		out = append(out, entities.Paragraph{Runs: []entities.Run{{Text: text, Font: entities.Font{Bold: bold || line != text}}}})
	}
	return out, nil
}

// monoMeasurer gives every rune the same advance, a fraction of the font size
type monoMeasurer struct {
	advance float64
}

func (m monoMeasurer) Width(text string, font entities.Font) entities.Length {
	return entities.Length(float64(len([]rune(text))) * float64(font.Size) * m.advance)
}

func (m monoMeasurer) LineHeight(font entities.Font) entities.Length {
	return font.Size
}
