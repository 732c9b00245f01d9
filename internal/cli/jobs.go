package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganbatte-hq/ganbatte/internal/client"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

var (
	jobsStatus string
	jobsLimit  int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect delivery jobs",
	Long: `List delivery jobs or inspect a specific job by ID.

Examples:
  ganbatte jobs                      # List recent jobs
  ganbatte jobs --status in_transit  # Only jobs currently on the road
  ganbatte jobs abc123               # Show details for job abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVarP(&jobsStatus, "status", "s", "", "filter by status")
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 50, "max jobs to list")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return showJob(ctx, args[0])
	}
	return listJobs(ctx)
}

func listJobs(ctx context.Context) error {
	opts := client.ListJobsOptions{Limit: jobsLimit}
	if jobsStatus != "" {
		status, ok := models.ParseJobStatus(jobsStatus)
		if !ok {
			return fmt.Errorf("unknown status: %s", jobsStatus)
		}
		opts.Status = &status
	}

	jobs, err := apiClient.ListJobs(ctx, opts)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-10s %-14s %-24s %-10s %s\n", "ID", "STATUS", "DEADLINE", "QUOTE", "CREATED")
	fmt.Println("--------------------------------------------------------------------------")

	for _, job := range jobs {
		quote := "-"
		if job.PriceCents != nil {
			quote = fmt.Sprintf("$%.2f", float64(*job.PriceCents)/100)
		}
		fmt.Printf("%-10s %-14s %-24s %-10s %s\n",
			models.MustRecordIDString(job.ID),
			job.Status,
			job.DeadlineDisplay,
			quote,
			job.CreatedAt.Format("Jan 2 15:04"))
	}

	return nil
}

func showJob(ctx context.Context, id string) error {
	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("job not found: %s", id)
		}
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("Job: %s\n", models.MustRecordIDString(job.ID))
	fmt.Printf("  Parts:    %s\n", strings.Join(job.Parts, ", "))
	fmt.Printf("  Pickup:   %s\n", job.Pickup)
	fmt.Printf("  Dropoff:  %s\n", job.Dropoff)
	fmt.Printf("  Deadline: %s\n", job.DeadlineDisplay)
	fmt.Printf("  Status:   %s\n", job.Status)
	if job.DistanceMeters != nil {
		fmt.Printf("  Distance: %.1f km\n", float64(*job.DistanceMeters)/1000)
	}
	if job.DurationSeconds != nil {
		fmt.Printf("  Drive:    %d min\n", *job.DurationSeconds/60)
	}
	if job.PriceCents != nil {
		fmt.Printf("  Quote:    $%.2f\n", float64(*job.PriceCents)/100)
	}
	fmt.Printf("  Created:  %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Updated:  %s\n", job.UpdatedAt.Format(time.RFC3339))

	return nil
}
