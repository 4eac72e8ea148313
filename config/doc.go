// Package config provides configuration loading and validation for the
// s3req serve command.
//
// The package handles YAML configuration files, environment variables,
// and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (S3REQ_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// All config keys map to environment variables with S3REQ_ prefix:
//   - server.port → S3REQ_SERVER_PORT
//   - storage.path → S3REQ_STORAGE_PATH
//   - auth.read → S3REQ_AUTH_READ
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Auth read/write must be public or private
//   - Log level must be debug, info, warn, or error
package config
