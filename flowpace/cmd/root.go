// Package cmd provides the command-line interface for flowpace.
package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flowpace",
	Short: "flowpace simulates paced traffic over a point-to-point link.",
	Long: `flowpace simulates one bulk stream and several constant-rate ` +
		`datagram sources sharing a point-to-point link, and records the ` +
		`received bytes, the dropped packets and the congestion window.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		loadEnv()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadEnv reads a .env file in the working directory, if there is one.
// Variables already in the environment win.
func loadEnv() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env: %v", err)
	}
}

// envOr returns the value of the environment variable key, or fallback if it
// is unset.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
