package clientcli

// StoreOptions configures an upload operation.
type StoreOptions struct {
	LocalPath   string
	Key         string
	ContentType string // optional, auto-detect if empty
	Recursive   bool
}

// StoreResult represents the result of uploading a single file.
type StoreResult struct {
	LocalPath   string `json:"local_path"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size_bytes"`
	Err         error  `json:"-"` // nil on success
}

// FetchOptions configures a download operation.
type FetchOptions struct {
	Key       string
	LocalPath string // empty = derive from key, "-" = stdout
}

// FetchResult represents the result of downloading an object.
type FetchResult struct {
	Key         string `json:"key"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// RemoveOptions configures a delete operation.
type RemoveOptions struct {
	Keys []string
}

// RemoveResult represents the result of deleting a single object.
type RemoveResult struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
	Err     error  `json:"-"` // nil on success
}
