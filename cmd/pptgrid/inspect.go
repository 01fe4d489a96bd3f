package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file.pptx>",
		Short: "List the slides, text blocks and tables of a .pptx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx, filepath.Dir(args[0]), nil); err != nil {
				return err
			}

			report, err := a.presentationService().Inspect(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			writeReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func writeReport(w io.Writer, report *entities.InspectReport) {
	fmt.Fprintf(w, "%s: %d slides\n", report.Path, report.SlideCount)
	if report.Title != "" {
		fmt.Fprintf(w, "title: %s\n", report.Title)
	}
	if report.Author != "" {
		fmt.Fprintf(w, "author: %s\n", report.Author)
	}

	for _, slide := range report.Slides {
		fmt.Fprintf(w, "\nslide %d", slide.Index+1)
		if slide.Title != "" {
			fmt.Fprintf(w, ": %s", slide.Title)
		}
		fmt.Fprintln(w)

		for _, b := range slide.Blocks {
			r := b.Rect
			fmt.Fprintf(w, "  [%.2fin, %.2fin %.2fx%.2fin] %s\n",
				r.X.Inches(), r.Y.Inches(), r.Width.Inches(), r.Height.Inches(), oneLine(b.Text))
		}
		for i, t := range slide.Tables {
			fmt.Fprintf(w, "  table %d:\n", i+1)
			for _, row := range t.Rows {
				fmt.Fprintf(w, "    | %s |\n", strings.Join(row, " | "))
			}
		}
		if slide.Notes != "" {
			fmt.Fprintf(w, "  notes: %s\n", oneLine(slide.Notes))
		}
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
