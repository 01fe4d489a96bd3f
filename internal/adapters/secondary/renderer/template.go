package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// PageRenderer renders the HTML preview page around the slide SVGs
type PageRenderer struct {
	templates *template.Template
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

type pageSlide struct {
	Index  int
	Number int
	Title  string
	Notes  template.HTML
}

type pageData struct {
	Title   string
	Author  string
	Version int
	Width   float64
	Height  float64
	Slides  []pageSlide
	Error   string
}

// NewPageRenderer parses the preview templates
func NewPageRenderer(logger *slog.Logger) (*PageRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("page").Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}
	if _, err := tmpl.New("error").Parse(errorTemplate); err != nil {
		return nil, fmt.Errorf("parsing error template: %w", err)
	}

	return &PageRenderer{
		templates: tmpl,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: notesPolicy(),
		logger:    logger,
	}, nil
}

// notesPolicy allows the formatting markdown notes produce and nothing that
// can run script
func notesPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	return p
}

// RenderPage renders the preview page. version is appended to the slide
// URLs so browsers refetch them after a rebuild.
func (r *PageRenderer) RenderPage(ctx context.Context, prs *entities.Presentation, version int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prs == nil {
		return nil, entities.NewPresentationError("presentation is nil", "")
	}
	width, height, err := prs.SlideSize()
	if err != nil {
		return nil, err
	}

	data := pageData{
		Title:   prs.Title,
		Author:  prs.Author,
		Version: version,
		Width:   width.Points(),
		Height:  height.Points(),
		Slides:  make([]pageSlide, 0, prs.SlideCount()),
	}
	if data.Title == "" {
		data.Title = "pptgrid preview"
	}

	for _, slide := range prs.Slides {
		notes, err := r.RenderNotes(slide.Notes)
		if err != nil {
			return nil, fmt.Errorf("slide %d notes: %w", slide.Index+1, err)
		}
		data.Slides = append(data.Slides, pageSlide{
			Index:  slide.Index,
			Number: slide.Index + 1,
			Title:  slide.ExtractTitle(),
			Notes:  notes,
		})
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("executing preview template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderError renders the page shown while the deck fails to build
func (r *PageRenderer) RenderError(buildErr error) ([]byte, error) {
	data := pageData{Title: "Build failed"}
	if buildErr != nil {
		data.Error = buildErr.Error()
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "error", data); err != nil {
		return nil, fmt.Errorf("executing error template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderNotes converts markdown speaker notes to sanitized HTML
func (r *PageRenderer) RenderNotes(notes string) (template.HTML, error) {
	if notes == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("converting notes: %w", err)
	}
	// #nosec G203 - sanitized by bluemonday
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #2b2b2b; font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #eee; }
header { padding: 0.75em 1.5em; background: #1e1e1e; display: flex; justify-content: space-between; }
#status { font-size: 0.85em; color: #8c8; }
#status.error { color: #f88; }
main { max-width: 1100px; margin: 0 auto; padding: 1.5em; }
.slide { margin-bottom: 2em; }
.slide h2 { font-size: 0.9em; font-weight: normal; color: #aaa; margin: 0 0 0.4em; }
.slide img { width: 100%; aspect-ratio: {{.Width}} / {{.Height}}; background: #fff; box-shadow: 0 2px 8px #000; }
.notes { background: #383838; padding: 0.5em 1em; margin-top: 0.5em; font-size: 0.9em; }
</style>
</head>
<body>
<header>
<span>{{.Title}}{{if .Author}} &middot; {{.Author}}{{end}}</span>
<span id="status">{{len .Slides}} slides</span>
</header>
<main>
{{range .Slides}}
<section class="slide" id="slide-{{.Number}}">
<h2>{{.Number}}{{if .Title}} &middot; {{.Title}}{{end}}</h2>
<img src="/slides/{{.Index}}.svg?v={{$.Version}}" alt="slide {{.Number}}">
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</section>
{{end}}
</main>
` + reloadScript + `
</body>
</html>`

const errorTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #2b2b2b; font-family: monospace; color: #f88; padding: 2em; }
pre { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<pre>{{.Error}}</pre>
` + reloadScript + `
</body>
</html>`

const reloadScript = `<script>
(function () {
  var status = document.getElementById('status');
  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/ws');
    ws.onmessage = function (msg) {
      var event = JSON.parse(msg.data);
      if (event.type === 'reload') {
        location.reload();
      } else if (event.type === 'error' && status) {
        status.textContent = 'build failed: ' + (event.data && event.data.error);
        status.className = 'error';
      }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>`
