package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long:  `Show job counts per status and server-side operation timings.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := apiClient.GetStats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	fmt.Println("Jobs:")
	for _, status := range []models.JobStatus{
		models.JobStatusPendingQuote,
		models.JobStatusScheduled,
		models.JobStatusPickedUp,
		models.JobStatusInTransit,
		models.JobStatusDelivered,
		models.JobStatusCancelled,
	} {
		if count, ok := stats.Jobs[status]; ok {
			fmt.Printf("  %-14s %d\n", status, count)
		}
	}
	fmt.Printf("\nActive intake sessions: %d\n", stats.Sessions)

	if stats.Operations != nil {
		fmt.Printf("\nOperations (uptime %.0fs):\n", stats.Operations.UptimeSeconds)
		printOp("llm_extract", stats.Operations.LLMExtract)
		printOp("geocode", stats.Operations.Geocode)
		printOp("route", stats.Operations.Route)
		printOp("db_query", stats.Operations.DBQuery)
	}

	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("  %-12s count=%d avg=%.0fms min=%dms max=%dms errors=%d\n",
		name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs, op.Errors)
}
