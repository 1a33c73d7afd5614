package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"codeberg.org/mutker/periphcheck/internal/archive"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived run summaries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.Default().With("history")

		archiveCfg := cfg.ArchiveConfig()
		archiveCfg.Enabled = true

		store, err := archive.NewService(archiveCfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		return writeHistory(cmd.OutOrStdout(), historyFormat, runs)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", formatTable, "Output format (table, json, yaml)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultCapacity, "Number of runs to show (0 for all)")
}

func writeHistory(out io.Writer, format string, runs []history.Summary) error {
	if runs == nil {
		runs = []history.Summary{}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tDIAGNOSTIC\tDEVICE\tDURATION\tSAMPLES\tBEST\tAVERAGE\tVERDICT\tRESULT")
		for _, r := range runs {
			result := "incomplete"
			if r.Completed {
				result = "completed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f\t%.1f\t%s\t%s\n",
				r.Label, r.Diagnostic, r.Device, r.Duration.Round(time.Millisecond),
				r.Samples, r.Best, r.Average, r.Verdict, result)
		}
		return w.Flush()
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, format)
	}
}
