package main

import (
	"fmt"
	"text/tabwriter"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List diagnostics and the devices available to them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.Default().With("list")
		out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

		fmt.Fprintln(out, "DIAGNOSTIC\tTITLE")
		for _, entry := range catalog.Entries() {
			fmt.Fprintf(out, "%s\t%s\n", entry.Name, entry.Title)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "DEVICE\tGROUP\tLABEL")
		for _, provider := range providers(log) {
			devices, err := provider.Enumerate(cmd.Context(), "")
			if err != nil {
				log.Warn().Err(err).Msg("Failed to enumerate devices")
				continue
			}
			for _, d := range devices {
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.ID, d.Group, d.Label)
			}
		}

		return out.Flush()
	},
}
