package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDemoCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the debug grid demo",
		Long: `Demo writes a single slide with 0.75in margins and a content area
split into two rows of two boxes, all outlined and labelled with their
positions. It is a quick way to check that a writer engine produces files
PowerPoint opens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx, ".", nil); err != nil {
				return err
			}

			prs, err := a.deckService(nil).Demo(ctx)
			if err != nil {
				return err
			}
			if err := a.presentationService().Save(ctx, prs, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "demo.pptx", "Output file")
	return cmd
}
