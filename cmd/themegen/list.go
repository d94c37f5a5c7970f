package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chairlinked/api/internal/theme"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list [industries|beauty]",
		Short:     "List the available design systems",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"industries", "beauty"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "industries"
			if len(args) == 1 {
				kind = args[0]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			switch kind {
			case "beauty":
				fmt.Fprintln(w, "ID\tNAME\tMOOD\tPRIMARY")
				for _, id := range theme.ListBeautyConfigs() {
					cfg := theme.GetBeautyConfig(string(id))
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.ID, cfg.Name, cfg.Mood, cfg.Palette.Primary)
				}
			default:
				fmt.Fprintln(w, "ID\tNAME\tPRIMARY")
				for _, id := range theme.ListIndustries() {
					cfg := theme.GetDesignConfig(string(id))
					fmt.Fprintf(w, "%s\t%s\t%s\n", cfg.ID, cfg.Name, cfg.Palette.Primary)
				}
			}
			return w.Flush()
		},
	}
	return cmd
}
