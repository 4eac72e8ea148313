package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s3req/s3req"
	"github.com/s3req/s3req/config"
	"github.com/s3req/s3req/fakes3"
	"github.com/s3req/s3req/keystore"
)

var serveConfigFiles []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local S3-compatible store",
	Long: `Run a local S3-compatible object store backed by the filesystem.

The store verifies AWS Signature V4 on incoming requests when read or
write access is set to private. It is meant for development and testing
of signed clients without AWS.

Examples:
  s3req serve
  s3req serve --port 9008 --storage-path ./data
  s3req serve --serve-config config.yaml --write-access private --keys-file keys.json`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&serveConfigFiles, "serve-config", nil, "server config file(s), later files override earlier ones")
	serveCmd.Flags().Int("port", 9008, "HTTP server port")
	serveCmd.Flags().String("storage-path", "./data", "storage directory path")
	serveCmd.Flags().String("region", "us-east-1", "region accepted in credential scopes")
	serveCmd.Flags().String("read-access", "public", "read access (public, private)")
	serveCmd.Flags().String("write-access", "public", "write access (public, private)")
	serveCmd.Flags().String("keys-file", "", "JSON file with access key pairs")
	serveCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigFiles, cmd.Flags())
	if err != nil {
		return err
	}

	setupLogging(cfg.Log.Level)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	store := fakes3.NewStore(root)

	keys, err := keystore.NewStore(cfg.Auth.Keys)
	if err != nil {
		return fmt.Errorf("load access keys: %w", err)
	}

	verifier := s3req.NewVerifier(cfg.Auth.Region, keys)

	var readVerifier, writeVerifier fakes3.RequestVerifier
	if cfg.Auth.Read == "private" {
		readVerifier = verifier
	}
	if cfg.Auth.Write == "private" {
		writeVerifier = verifier
	}

	handlerConfig := fakes3.Config{
		ReadVerifier:  readVerifier,
		WriteVerifier: writeVerifier,
		CORS:          cfg.CORS,
	}

	handler := fakes3.NewHandler(&handlerConfig, store)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"storage", cfg.Storage.Path,
		"read", cfg.Auth.Read,
		"write", cfg.Auth.Write,
		"region", cfg.Auth.Region,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-ctx.Done()
	return nil
}
