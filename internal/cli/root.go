// Package cli provides the command-line interface for ganbatte.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ganbatte-hq/ganbatte/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	verbose   bool

	// apiClient talks to the ganbatte server.
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ganbatte",
	Short: "Parts delivery job intake and tracking",
	Long: `Ganbatte turns free-text delivery requests into scheduled parts
delivery jobs.

Describe a job in plain language ("get brake pads from 123 Main St to the
Tustin shop by friday 5pm") and the server extracts the parts, validates both
addresses, pins the deadline to a concrete time and quotes the trip.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		apiClient = client.New(serverURL)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default $GANBATTE_SERVER_URL or http://localhost:8383)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
