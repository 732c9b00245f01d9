package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ganbatte-hq/ganbatte/internal/client"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Describe a delivery job in plain language",
	Long: `Start an intake conversation. Describe the job in one message; the server
asks follow-up questions until the pickup, dropoff and deadline are pinned
down, then creates the job and prints the quote.

Examples:
  ganbatte chat "deliver brake pads from 123 Main St, Irvine to 456 Oak Ave, Santa Ana by friday 5pm"
  ganbatte chat                    # start an empty conversation
  echo "..." | ganbatte chat       # answers read from stdin when piped`,
	Args: cobra.ArbitraryArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)

	readLine := func(prompt string) (string, bool) {
		if interactive {
			fmt.Print(prompt)
		}
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		msg, ok := readLine("Describe the delivery job:\n> ")
		if !ok {
			return fmt.Errorf("no input")
		}
		message = msg
	}

	var (
		sessionID     string
		overrideField string
	)

	for {
		resp, err := apiClient.ProcessTurn(ctx, client.TurnRequest{
			SessionID:     sessionID,
			Message:       message,
			OverrideField: overrideField,
		})
		if err != nil {
			return fmt.Errorf("process turn: %w", err)
		}
		sessionID = resp.SessionID

		if !resp.NeedsClarification {
			printJob(resp.Job)
			return nil
		}

		fmt.Println(resp.Message)
		answer, ok := readLine("> ")
		if !ok || answer == "" {
			if !interactive {
				exitWithError("the %s is still unresolved and stdin is exhausted", resp.Field)
			}
			return fmt.Errorf("conversation abandoned")
		}
		message = answer
		overrideField = resp.Field
	}
}

// printJob renders a finalized job with its quote.
func printJob(job *models.DeliveryJob) {
	fmt.Printf("\nJob %s created\n", models.MustRecordIDString(job.ID))
	fmt.Printf("  Parts:    %s\n", strings.Join(job.Parts, ", "))
	fmt.Printf("  Pickup:   %s\n", job.Pickup)
	fmt.Printf("  Dropoff:  %s\n", job.Dropoff)
	fmt.Printf("  Deadline: %s\n", job.DeadlineDisplay)
	if job.DistanceMeters != nil {
		fmt.Printf("  Distance: %.1f km\n", float64(*job.DistanceMeters)/1000)
	}
	if job.DurationSeconds != nil {
		fmt.Printf("  Drive:    %d min\n", *job.DurationSeconds/60)
	}
	if job.PriceCents != nil {
		fmt.Printf("  Quote:    $%.2f\n", float64(*job.PriceCents)/100)
	} else {
		fmt.Println("  Quote:    pending (route unavailable)")
	}
	fmt.Printf("  Status:   %s\n", job.Status)
}
