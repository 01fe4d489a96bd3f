package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/pptgrid/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/services"
)

type buildOptions struct {
	output string
	engine string
	watch  bool
	debug  bool
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build <deck.yaml>",
		Short: "Build a .pptx file from a deck",
		Long: `Build lays out every slide of the deck and writes the presentation.

Example:
  pptgrid build quarterly.yaml
  pptgrid build quarterly.yaml -o out/q3.pptx --engine goppt
  pptgrid build quarterly.yaml --watch --debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: deck name with .pptx)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "Writer engine: ooxml or goppt (overrides config)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild whenever the deck or its tables change")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Outline and label every area on every slide")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app, deckPath string, opts *buildOptions) error {
	ctx := cmd.Context()
	if err := a.load(ctx, deckDir(deckPath), map[string]interface{}{"engine": opts.engine}); err != nil {
		return err
	}

	measurer, err := a.measurer()
	if err != nil {
		return err
	}
	decks := a.deckService(measurer)
	decks.SetDebugAll(opts.debug)
	presentations := a.presentationService()
	repo := a.deckRepository()
	output := outputPath(deckPath, opts.output)

	saved := false
	save := func(ctx context.Context, prs *entities.Presentation) error {
		if err := presentations.Save(ctx, prs, output); err != nil {
			return err
		}
		if !saved {
			// later rebuilds replace the file this run wrote
			saved = true
			presentations.SetOverwrite(true)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d slides)\n", output, prs.SlideCount())
		return nil
	}

	if !opts.watch {
		d, err := repo.Load(ctx, deckPath)
		if err != nil {
			return err
		}
		prs, err := decks.Build(ctx, d, deckDir(deckPath))
		if err != nil {
			return err
		}
		return save(ctx, prs)
	}

	w, err := watcher.New(a.cfg.Watcher, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	live := services.NewLiveReloadService(w, repo, decks, nil, a.logger)
	live.OnBuild(save)
	if err := live.Start(ctx, deckPath); err != nil {
		return err
	}
	a.logger.Info("watching for changes, press Ctrl+C to stop",
		slog.String("deck", deckPath),
		slog.String("mode", string(a.cfg.Watcher.GetMode())))

	<-ctx.Done()
	return live.Stop()
}
