package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrRegionRequired = errors.New("region is required")
	ErrBucketRequired = errors.New("bucket is required")
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoKeys     = errors.New("no keys provided")
	ErrEmptyKey   = errors.New("key is required")
	ErrEmptyLocal = errors.New("local path is required")
)
