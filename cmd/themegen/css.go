package main

import (
	"github.com/spf13/cobra"

	"github.com/chairlinked/api/internal/theme"
)

func newCSSCmd() *cobra.Command {
	flags := &selectionFlags{}
	var (
		out        string
		tokensOnly bool
	)

	cmd := &cobra.Command{
		Use:   "css",
		Short: "Emit the stylesheet for an industry or beauty theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokensOnly {
				return writeOutput(cmd, out, theme.TokenCSS())
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, theme.Stylesheet(req))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&tokensOnly, "tokens-only", false, "Emit only the base design tokens")
	return cmd
}

func newFontsCmd() *cobra.Command {
	flags := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Print the Google Fonts stylesheet URL for a theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", theme.FontsURL(req)+"\n")
		},
	}

	flags.register(cmd)
	return cmd
}
