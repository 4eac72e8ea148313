package clientcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/s3req/s3req"
	"github.com/s3req/s3req/history"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs file-oriented operations against an S3-compatible store.
type Client struct {
	config  *Config
	signer  *s3req.Client
	history *history.Log
}

// Option configures a Client.
type Option func(*Client) error

// WithTimeout sets the HTTP client timeout on the underlying signer.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		signer, err := s3req.New(
			s3req.Credentials{AccessKey: c.config.AccessKey, SecretKey: c.config.SecretKey},
			s3req.WithTimeout(timeout),
		)
		if err != nil {
			return err
		}
		c.signer = signer
		return nil
	}
}

// WithHistory attaches a transfer log. Completed operations are recorded
// best-effort; a failed write never fails the transfer.
func WithHistory(log *history.Log) Option {
	return func(c *Client) error {
		c.history = log
		return nil
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := s3req.New(s3req.Credentials{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	}, s3req.WithTimeout(DefaultTimeout))
	if err != nil {
		return nil, err
	}

	cfgCopy := *cfg
	c := &Client{
		config: &cfgCopy,
		signer: signer,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) target(key string) s3req.Target {
	return s3req.Target{
		Region:   c.config.Region,
		Bucket:   c.config.Bucket,
		Key:      key,
		Endpoint: c.config.Endpoint,
	}
}

// record appends a history entry when a log is attached.
func (c *Client) record(ctx context.Context, op, key, status, etag string, size int64) {
	if c.history == nil {
		return
	}
	_, err := c.history.Record(ctx, history.Entry{
		Operation: op,
		Bucket:    c.config.Bucket,
		Key:       key,
		Status:    status,
		ETag:      etag,
		SizeBytes: size,
	})
	if err != nil {
		slog.Warn("failed to record transfer", "op", op, "key", key, "err", err)
	}
}

// Store uploads file(s) to the store.
// For recursive uploads, walks the directory and preserves relative paths.
func (c *Client) Store(ctx context.Context, opts StoreOptions) ([]StoreResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("store: %w", ErrEmptyLocal)
	}
	if opts.Recursive {
		return c.storeRecursive(ctx, opts)
	}

	key := opts.Key
	if key == "" {
		key = NormalizeLocalKey(opts.LocalPath)
	}

	result, err := c.storeSingle(ctx, opts.LocalPath, key, opts.ContentType)
	if err != nil {
		return nil, err
	}
	return []StoreResult{result}, nil
}

// storeRecursive walks a directory and uploads all files.
func (c *Client) storeRecursive(ctx context.Context, opts StoreOptions) ([]StoreResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, storeErr := c.storeSingle(ctx, opts.LocalPath, opts.Key, opts.ContentType)
		if storeErr != nil {
			return nil, storeErr
		}
		return []StoreResult{result}, nil
	}

	var results []StoreResult
	baseDir := opts.LocalPath
	keyPrefix := strings.TrimSuffix(opts.Key, "/")

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, StoreResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		relPath = filepath.ToSlash(relPath)
		key := relPath
		if keyPrefix != "" {
			key = keyPrefix + "/" + relPath
		}

		result, storeErr := c.storeSingle(ctx, path, key, "")
		if storeErr != nil {
			result = StoreResult{
				LocalPath: path,
				Key:       key,
				Err:       storeErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// storeSingle uploads a single file. The signature covers the payload
// hash, so the body is read fully before sending.
func (c *Client) storeSingle(ctx context.Context, localPath, key, contentType string) (StoreResult, error) {
	if key == "" {
		return StoreResult{}, fmt.Errorf("store: %w", ErrEmptyKey)
	}

	body, err := os.ReadFile(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return StoreResult{}, fmt.Errorf("read file: %w", err)
	}

	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	resp, err := c.signer.Put(ctx, c.target(key), body, contentType)
	if err != nil {
		return StoreResult{}, fmt.Errorf("do request: %w", err)
	}

	if !resp.OK() {
		return StoreResult{}, newAPIError(resp)
	}

	etag := resp.ETag()
	c.record(ctx, "put", key, resp.Status, etag, int64(len(body)))

	return StoreResult{
		LocalPath:   localPath,
		Key:         key,
		ContentType: contentType,
		ETag:        etag,
		Size:        int64(len(body)),
	}, nil
}

// Fetch downloads an object from the store.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser
// and must be closed by the caller. Otherwise the content is written to
// the file and the io.ReadCloser is nil.
func (c *Client) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, io.ReadCloser, error) {
	if opts.Key == "" {
		return nil, nil, fmt.Errorf("fetch: %w", ErrEmptyKey)
	}

	resp, err := c.signer.Get(ctx, c.target(opts.Key))
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if !resp.OK() {
		return nil, nil, newAPIError(resp)
	}

	result := &FetchResult{
		Key:         opts.Key,
		ETag:        resp.ETag(),
		ContentType: resp.Headers.Get("Content-Type"),
		Size:        int64(len(resp.Body)),
	}

	c.record(ctx, "get", opts.Key, resp.Status, result.ETag, result.Size)

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, io.NopCloser(bytes.NewReader(resp.Body)), nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(opts.Key)
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	if writeErr := os.WriteFile(localPath, resp.Body, 0o600); writeErr != nil {
		return nil, nil, fmt.Errorf("write file: %w", writeErr)
	}

	return result, nil, nil
}

// Remove deletes one or more objects from the store.
// Continues on error, collecting results for all keys.
func (c *Client) Remove(ctx context.Context, opts RemoveOptions) ([]RemoveResult, error) {
	if len(opts.Keys) == 0 {
		return nil, ErrNoKeys
	}

	results := make([]RemoveResult, 0, len(opts.Keys))

	for _, key := range opts.Keys {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.removeSingle(ctx, key))
	}

	return results, nil
}

// removeSingle deletes a single object.
func (c *Client) removeSingle(ctx context.Context, key string) RemoveResult {
	resp, err := c.signer.Delete(ctx, c.target(key))
	if err != nil {
		return RemoveResult{
			Key:     key,
			Removed: false,
			Err:     fmt.Errorf("do request: %w", err),
		}
	}

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return RemoveResult{
			Key:     key,
			Removed: false,
			Err:     newAPIError(resp),
		}
	}

	c.record(ctx, "delete", key, resp.Status, "", 0)

	return RemoveResult{
		Key:     key,
		Removed: true,
	}
}

// HasRemoveErrors returns true if any remove operation failed.
func HasRemoveErrors(results []RemoveResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// NormalizeLocalKey converts a local path to a clean object key.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is resolved (../sibling/file.txt -> sibling/file.txt)
//   - Multiple slashes are collapsed
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalKey(localPath string) string {
	path := filepath.ToSlash(localPath)

	path = filepath.Clean(path)
	path = filepath.ToSlash(path)

	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")

	for strings.HasPrefix(path, "../") {
		path = strings.TrimPrefix(path, "../")
	}

	if path == ".." || path == "." {
		return ""
	}

	return path
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

// APIError represents an error response from the store.
type APIError struct {
	StatusCode int
	Body       string
}

func newAPIError(resp *s3req.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden is returned when the signature is rejected (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
