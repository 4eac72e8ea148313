package main

import (
	"context"
	"io"
	"os"

	"github.com/s3req/s3req/clientcli"
	"github.com/spf13/cobra"
)

var (
	getOutput string
	getStdout bool
)

var getCmd = &cobra.Command{
	Use:   "get <key> [local-path]",
	Short: "Download an object from the store",
	Long: `Download an object from the store with a signed GET request.

Examples:
  s3req get META.json
  s3req get META.json ./local-meta.json
  s3req get --stdout META.json | jq .
  s3req get -o ./output.txt docs/testfile.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file path")
	getCmd.Flags().BoolVar(&getStdout, "stdout", false, "write to stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if getOutput != "" {
		localPath = getOutput
	}
	if getStdout {
		localPath = "-"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, cleanup, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := clientcli.FetchOptions{
		Key:       key,
		LocalPath: localPath,
	}

	result, reader, err := client.Fetch(ctx, opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	// If stdout, write content to stdout
	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			formatter := getFormatter()
			return formatter.FormatFetch(os.Stderr, result)
		}
		return nil
	}

	formatter := getFormatter()
	return formatter.FormatFetch(os.Stdout, result)
}
