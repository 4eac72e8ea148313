package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/s3req/s3req/clientcli"
	"github.com/s3req/s3req/history"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	region      string
	bucket      string
	endpoint    string
	accessKey   string
	secretKey   string
	jsonOutput  bool
	quiet       bool
	noHistory   bool
)

var rootCmd = &cobra.Command{
	Use:     "s3req",
	Version: version,
	Short:   "Signed requests against S3-compatible object stores",
	Long: `s3req builds, signs, and sends AWS Signature V4 requests against
S3-compatible object stores.

Credentials and targets resolve in order: flags > environment (S3REQ_*) >
profile from the config file (~/.s3req/config.yaml).

Completed transfers are recorded in a local history database
(~/.s3req/history.db) unless --no-history is given.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.s3req/config.yaml, env: S3REQ_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: S3REQ_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "region for the credential scope (env: S3REQ_REGION)")
	rootCmd.PersistentFlags().StringVarP(&bucket, "bucket", "b", "", "bucket name (env: S3REQ_BUCKET)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "endpoint URL override for S3-compatible stores (env: S3REQ_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&accessKey, "access-key", "a", "", "access key (env: S3REQ_ACCESS_KEY)")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "k", "", "secret key (env: S3REQ_SECRET_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record transfers in the history database")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath resolves the profile config file path.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := clientcli.ConfigPathFromEnv(); envPath != "" {
		return envPath
	}
	return clientcli.DefaultConfigPath()
}

// getProfileName resolves the profile name from flag or environment.
func getProfileName() string {
	if profileName != "" {
		return profileName
	}
	return clientcli.ProfileFromEnv()
}

// defaultHistoryPath returns the history database path (~/.s3req/history.db).
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".s3req", "history.db")
}

// buildConfig merges config from profile, env vars, and flags
// (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	configPath := getConfigPath()
	if configPath != "" {
		fileCfg, err := clientcli.LoadConfigFile(configPath)
		if err != nil {
			// Only error if the user explicitly named a config file.
			if cfgFile != "" {
				return nil, err
			}
		} else {
			profile, profileErr := fileCfg.GetProfile(getProfileName())
			if profileErr != nil {
				// An explicitly requested profile must exist.
				if getProfileName() != "" {
					return nil, profileErr
				}
			} else {
				configs = append(configs, clientcli.ConfigFromProfile(profile))
			}
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv())

	configs = append(configs, &clientcli.Config{
		Region:    region,
		Bucket:    bucket,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a configured client. The returned cleanup closes the
// history database when one was opened.
func getClient(ctx context.Context) (*clientcli.Client, func(), error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var opts []clientcli.Option

	if !noHistory {
		if path := defaultHistoryPath(); path != "" {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o700); mkdirErr == nil {
				log, openErr := history.Open(ctx, path)
				if openErr != nil {
					slog.Warn("failed to open history database", "path", path, "err", openErr)
				} else {
					opts = append(opts, clientcli.WithHistory(log))
					cleanup = func() { _ = log.Close() }
				}
			}
		}
	}

	client, err := clientcli.New(cfg, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return client, cleanup, nil
}

// exitError is returned when we want to exit with a failure code but
// don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

var errSilentExit = &exitError{code: 1}
