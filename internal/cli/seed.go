package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/seeder"
)

var (
	seedURL      string
	seedToken    string
	seedCount    int
	seedInterval time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Post synthetic alerts at a running server's ingest endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedToken == "" {
			return fmt.Errorf("ingest token is required, use --token")
		}

		s := seeder.New(seeder.Config{
			URL:      seedURL,
			Token:    seedToken,
			Count:    seedCount,
			Interval: seedInterval,
		}, logging.Default())

		res, err := s.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Seeding complete: %d sent, %d failed\n", res.Sent, res.Failed)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedURL, "url", "http://localhost:8077", "server base URL")
	seedCmd.Flags().StringVar(&seedToken, "token", "", "ingest bearer token (required)")
	seedCmd.Flags().IntVar(&seedCount, "count", 20, "number of alerts to send")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 500*time.Millisecond, "pause between sends")
	rootCmd.AddCommand(seedCmd)
}
