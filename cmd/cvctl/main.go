// Package main provides cvctl, a command-line client for the cvforge
// pipeline API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "cvctl",
	Short: "Client for the cvforge CV tailoring pipeline",
	Long:  "cvctl uploads a CV with a job offer and drives the generation variants that tailor the CV to the offer.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("CVFORGE_SERVER_URL", "http://localhost:8080"),
		"Base URL of the cvforge server")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
