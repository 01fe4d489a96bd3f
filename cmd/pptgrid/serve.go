package main

import (
	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/pptgrid/internal/adapters/primary/http"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/browser"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/pptgrid/internal/domain/services"
)

type serveOptions struct {
	port      int
	host      string
	noBrowser bool
	watchMode string
	debug     bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve <deck.yaml>",
		Short: "Preview a deck in the browser with live reload",
		Long: `Serve builds the deck, renders every slide as SVG and reloads the
browser whenever the deck or one of its tables changes. The current build
can be downloaded from /deck.pptx and build statistics read from /api/stats.

Example:
  pptgrid serve quarterly.yaml
  pptgrid serve quarterly.yaml --port 8080 --no-browser`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (overrides config)")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "Don't open a browser (overrides config)")
	cmd.Flags().StringVar(&opts.watchMode, "watch-mode", "", "File watching: poll or notify (overrides config)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Outline and label every area on every slide")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, deckPath string, opts *serveOptions) error {
	ctx := cmd.Context()
	flags := map[string]interface{}{
		"port":       opts.port,
		"host":       opts.host,
		"no-browser": opts.noBrowser,
		"watch-mode": opts.watchMode,
	}
	if err := a.load(ctx, deckDir(deckPath), flags); err != nil {
		return err
	}

	measurer, err := a.measurer()
	if err != nil {
		return err
	}
	decks := a.deckService(measurer)
	decks.SetDebugAll(opts.debug)

	w, err := watcher.New(a.cfg.Watcher, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	monitor := monitoring.NewMonitor()
	monitor.SetCache(a.tables)

	live := services.NewLiveReloadService(w, a.deckRepository(), decks, nil, a.logger)
	live.SetMetrics(monitor)

	pages, err := renderer.NewPageRenderer(a.logger)
	if err != nil {
		return err
	}
	server, err := httpserver.NewServer(a.cfg.Server, httpserver.Dependencies{
		Source:        live,
		Slides:        renderer.NewSVGRenderer(measurer, a.logger),
		Pages:         pages,
		Presentations: a.presentationService(),
		Metrics:       monitor,
	}, a.logger)
	if err != nil {
		return err
	}
	live.SetServer(server)

	launcher := browser.NewLauncher(a.cfg.Browser.Browser, a.logger)
	preview := services.NewPreviewService(live, server, launcher, a.cfg.Server.GetShutdownTimeout(), a.logger)
	return preview.Serve(ctx, deckPath, a.cfg.Server.Port, a.cfg.Server.Host, a.cfg.Browser.AutoOpen)
}
