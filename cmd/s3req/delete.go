package main

import (
	"context"
	"os"

	"github.com/s3req/s3req/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key> [key...]",
	Short: "Delete objects from the store",
	Long: `Delete one or more objects from the store with signed DELETE requests.

Examples:
  s3req delete testfile.txt
  s3req delete old/a.txt old/b.txt old/c.txt
  s3req delete -q temp/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, cleanup, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := client.Remove(ctx, clientcli.RemoveOptions{Keys: args})
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatRemove(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasRemoveErrors(results) {
		return errSilentExit
	}

	return nil
}
