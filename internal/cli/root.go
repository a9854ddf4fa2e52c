package cli

import "github.com/spf13/cobra"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "soclens",
	Short: "SOCLens security-operations demo backend",
	Long: `soclens serves the SOCLens demo dashboard backend: a synthetic
security telemetry feed streamed over Server-Sent Events, plus an
authenticated ingest endpoint for externally generated alerts.`,
	Version: "0.1.0",
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}
