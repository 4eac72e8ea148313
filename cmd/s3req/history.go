package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/s3req/s3req/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent transfers",
	Long: `List recent transfers from the local history database.

Transfers are recorded automatically by get, put, and delete unless
--no-history is given.

Examples:
  s3req history
  s3req history --limit 10
  s3req history --json`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of transfers to show (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path := defaultHistoryPath()
	if path == "" {
		return errors.New("could not resolve history database path")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No transfers recorded")
			return nil
		}
		return fmt.Errorf("stat history database: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer func() { _ = log.Close() }()

	entries, err := log.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list transfers: %w", err)
	}

	formatter := getFormatter()
	return formatter.FormatHistory(os.Stdout, entries)
}
