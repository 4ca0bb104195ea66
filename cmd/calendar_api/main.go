// Package main provides the entry point for the content calendar HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "calendar_api",
	Short: "Content Calendar HTTP API Server",
	Long:  "Content Calendar generates a week of scheduled Reddit posts and comment threads for a company's personas, served via a poll-based REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
