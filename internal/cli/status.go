package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ganbatte-hq/ganbatte/internal/client"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Update a job's delivery status",
	Long: `Move a job through its delivery lifecycle.

Statuses: pending_quote, scheduled, picked_up, in_transit, delivered, cancelled

Examples:
  ganbatte status abc123 picked_up
  ganbatte status abc123 delivered`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	id := args[0]
	status, ok := models.ParseJobStatus(strings.ToLower(args[1]))
	if !ok {
		return fmt.Errorf("unknown status: %s", args[1])
	}

	job, err := apiClient.UpdateStatus(context.Background(), id, status)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("job not found: %s", id)
		}
		return fmt.Errorf("update status: %w", err)
	}

	fmt.Printf("Job %s is now %s\n", models.MustRecordIDString(job.ID), job.Status)
	return nil
}
