package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/periphcheck/internal/config"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "periphcheck",
		Short: "Peripheral diagnostics from the terminal",
		Long: `periphcheck runs bounded hardware diagnostics against the devices this host
exposes: the CPU, NVIDIA GPUs and the keyboard behind the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(config.WithFlags(cmd.Flags()))
			if err != nil {
				return err
			}

			logger.Init(cfg.Level(), logger.IsService())
			return nil
		},
	}
)

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(listCmd, runCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
