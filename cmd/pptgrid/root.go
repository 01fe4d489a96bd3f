package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/config"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/deck"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/fonts"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/markdown"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/pptx"
	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/table"
	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
	"github.com/fredcamaral/pptgrid/internal/domain/services"
)

// app holds what every command shares: global flags, the merged
// configuration and the logger built from it
type app struct {
	configFile string
	verbose    bool

	cfg     *entities.Config
	logger  *slog.Logger
	tables  *table.Cache
	logFile io.Closer
	stderr  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "pptgrid",
		Short: "Lay out PowerPoint slides on a grid of nested areas",
		Long: `pptgrid builds .pptx presentations from YAML deck files. Every slide is
a tree of areas split horizontally or vertically by lengths, ratios and
weights; text, rectangles and tables fill the leaves.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./"+config.LocalFileName+")")

	root.AddCommand(
		newBuildCmd(a),
		newDemoCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// configService reads the global file, then --config or the local file
// next to dir
func (a *app) configService() *services.ConfigService {
	return services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger()).WithConfigFile(a.configFile)
}

// load merges the configuration for a deck in dir and sets up logging
func (a *app) load(ctx context.Context, dir string, flags map[string]interface{}) error {
	if flags == nil {
		flags = map[string]interface{}{}
	}
	flags["verbose"] = a.verbose

	cfg, err := a.configService().LoadConfig(ctx, dir, flags)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.cfg = cfg

	logger, closer, err := newLogger(cfg.Logging, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logFile = closer
	slog.SetDefault(logger)
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// newLogger builds the logger described by the [logging] section. Logs go to
// w unless a file is configured.
func newLogger(cfg entities.LoggingConfig, w io.Writer) (*slog.Logger, io.Closer, error) {
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 - path from config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.GetLevel())}
	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (a *app) deckRepository() ports.DeckRepository {
	return deck.NewYAMLRepository(a.logger)
}

// measurer measures with [table] font_file when set, else the bundled Go
// fonts
func (a *app) measurer() (ports.TextMeasurer, error) {
	if a.cfg.Table.FontFile != "" {
		m, err := fonts.LoadMeasurer(a.cfg.Table.FontFile)
		if err != nil {
			return nil, fmt.Errorf("loading table font: %w", err)
		}
		return m, nil
	}
	m, err := fonts.NewMeasurer()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	return m, nil
}

// deckService reads tables through a cache so watch rebuilds only reload
// files that changed
func (a *app) deckService(measurer ports.TextMeasurer) *services.DeckService {
	if a.tables == nil {
		a.tables = table.NewCache(a.cfg.Table.GetCacheSize(), a.logger, table.Sources()...)
	}
	sources := []ports.TableSource{a.tables}
	return services.NewDeckService(a.cfg, sources, measurer, markdown.NewGoldmarkConverter(), a.logger)
}

func (a *app) presentationService() *services.PresentationService {
	svc := services.NewPresentationService(
		a.cfg.Output.GetEngine(),
		pptx.NewInspector(a.logger),
		a.logger,
		pptx.NewOOXMLWriter(a.logger),
		pptx.NewGoPPTWriter(a.logger),
	)
	svc.SetOverwrite(a.cfg.Output.Overwrite)
	return svc
}

// deckDir is the directory local configuration and relative table sources
// are resolved against
func deckDir(path string) string {
	return filepath.Dir(path)
}

// outputPath defaults to the deck path with a .pptx extension
func outputPath(deckPath, output string) string {
	if output != "" {
		return output
	}
	return trimExt(deckPath) + ".pptx"
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
