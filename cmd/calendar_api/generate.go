package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/observability"
	"github.com/jordan/content-calendar/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation synchronously and print the result",
	Long:  `Generates a week of posts and comment threads in one run, commits them if a durable store is configured, and prints the full outcome as JSON.`,
	RunE:  runGenerate,
}

var (
	generateConfigPath   string
	generateCompanyID    string
	generateSubreddit    string
	generatePostsPerWeek int
	generateRequireStore bool
	generateVerbose      bool
)

func init() {
	generateCmd.Flags().StringVar(&generateConfigPath, "config", "", "Path to config.json file (values can be overridden by environment variables)")
	generateCmd.Flags().StringVar(&generateCompanyID, "company-id", "", "Company id to resolve inputs for")
	generateCmd.Flags().StringVar(&generateSubreddit, "subreddit", "", "Subreddit override")
	generateCmd.Flags().IntVar(&generatePostsPerWeek, "posts-per-week", 0, "Number of posts to generate (defaults to the resolved company's cadence)")
	generateCmd.Flags().BoolVar(&generateRequireStore, "require-store", false, "Fail instead of falling back when the durable store is unavailable")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print a formatted schedule summary before the JSON outcome")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(generateConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db := connectStore(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	runner, err := buildRunner(ctx, cfg, db, jobs.NewMemoryRegistry())
	if err != nil {
		return err
	}

	req := &types.GenerationRequest{
		CompanyID:    generateCompanyID,
		Subreddit:    generateSubreddit,
		PostsPerWeek: generatePostsPerWeek,
		RequireStore: generateRequireStore,
	}

	outcome := runner.RunSync(ctx, req)

	if generateVerbose {
		observability.NewPrinter(os.Stderr).PrintOutcome(outcome)
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	fmt.Println(string(out))

	if !outcome.OK {
		os.Exit(1)
	}
	return nil
}
