package main

import (
	"context"
	"os"

	"github.com/s3req/s3req/clientcli"
	"github.com/spf13/cobra"
)

var (
	putRecursive   bool
	putContentType string
)

var putCmd = &cobra.Command{
	Use:   "put <local-path> [key]",
	Short: "Upload files to the store",
	Long: `Upload files to the store with a signed PUT request.

If no key is given, it is derived from the local path.

Examples:
  s3req put ./testfile.txt testfile.txt
  s3req put -r ./images/ media/images/
  s3req put --content-type application/json ./data META.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().BoolVarP(&putRecursive, "recursive", "r", false, "upload directory recursively")
	putCmd.Flags().StringVarP(&putContentType, "content-type", "t", "", "override content-type")
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	key := ""
	if len(args) > 1 {
		key = args[1]
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

	opts := clientcli.StoreOptions{
		LocalPath:   localPath,
		Key:         key,
		ContentType: putContentType,
		Recursive:   putRecursive,
	}

	results, err := client.Store(ctx, opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatStore(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}

	return nil
}
