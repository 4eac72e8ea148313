package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/s3req/s3req/history"
)

// Formatter formats results for output.
type Formatter interface {
	FormatStore(w io.Writer, results []StoreResult) error
	FormatFetch(w io.Writer, result *FetchResult) error
	FormatRemove(w io.Writer, results []RemoveResult) error
	FormatHistory(w io.Writer, entries []history.Entry) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatStore formats upload results as human-readable text.
func (f *HumanFormatter) FormatStore(w io.Writer, results []StoreResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Stored: %s (%s)\n", r.Key, formatSize(r.Size))
			_, _ = fmt.Fprintf(w, "  ETag: %s\n", r.ETag)
		}
	}
	return nil
}

// FormatFetch formats a download result as human-readable text.
func (f *HumanFormatter) FormatFetch(w io.Writer, result *FetchResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Fetched: %s (%s)\n", result.Key, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Fetched: %s -> %s (%s)\n", result.Key, result.LocalPath, formatSize(result.Size))
		}
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

// FormatRemove formats delete results as human-readable text.
func (f *HumanFormatter) FormatRemove(w io.Writer, results []RemoveResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Key, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Removed: %s\n", r.Key)
		}
	}
	return nil
}

// FormatHistory formats transfer log entries as human-readable text.
func (f *HumanFormatter) FormatHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No transfers recorded")
		return nil
	}

	maxKeyLen := 3 // "KEY"
	for i := range entries {
		if len(entries[i].Key) > maxKeyLen {
			maxKeyLen = len(entries[i].Key)
		}
	}
	if maxKeyLen > 60 {
		maxKeyLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-6s  %-*s  %10s  %-12s  %s\n", "OP", maxKeyLen, "KEY", "SIZE", "STATUS", "WHEN")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", 6), strings.Repeat("-", maxKeyLen),
		strings.Repeat("-", 10), strings.Repeat("-", 12), strings.Repeat("-", 19))

	for i := range entries {
		e := &entries[i]
		key := e.Key
		if len(key) > maxKeyLen {
			key = key[:maxKeyLen-3] + "..."
		}
		status := e.Status
		if len(status) > 12 {
			status = status[:12]
		}
		_, _ = fmt.Fprintf(w, "%-6s  %-*s  %10s  %-12s  %s\n",
			e.Operation,
			maxKeyLen,
			key,
			formatSize(e.SizeBytes),
			status,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d transfer(s)\n", len(entries))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatStore formats upload results as JSON.
func (f *JSONFormatter) FormatStore(w io.Writer, results []StoreResult) error {
	type jsonResult struct {
		LocalPath   string `json:"local_path"`
		Key         string `json:"key"`
		ContentType string `json:"content_type,omitempty"`
		ETag        string `json:"etag,omitempty"`
		Size        int64  `json:"size_bytes,omitempty"`
		Error       string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			Key:       r.Key,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.ContentType = r.ContentType
			jr.ETag = r.ETag
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatFetch formats a download result as JSON.
func (f *JSONFormatter) FormatFetch(w io.Writer, result *FetchResult) error {
	return writeJSON(w, result)
}

// FormatRemove formats delete results as JSON.
func (f *JSONFormatter) FormatRemove(w io.Writer, results []RemoveResult) error {
	type jsonResult struct {
		Key     string `json:"key"`
		Removed bool   `json:"removed"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Key:     r.Key,
			Removed: r.Removed,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatHistory formats transfer log entries as JSON.
func (f *JSONFormatter) FormatHistory(w io.Writer, entries []history.Entry) error {
	type jsonEntry struct {
		ID        string `json:"id"`
		Operation string `json:"op"`
		Bucket    string `json:"bucket"`
		Key       string `json:"key"`
		Status    string `json:"status"`
		ETag      string `json:"etag,omitempty"`
		Size      int64  `json:"size_bytes"`
		CreatedAt string `json:"created_at"`
	}

	output := struct {
		Transfers []jsonEntry `json:"transfers"`
	}{
		Transfers: make([]jsonEntry, len(entries)),
	}

	for i, e := range entries {
		output.Transfers[i] = jsonEntry{
			ID:        e.ID.String(),
			Operation: e.Operation,
			Bucket:    e.Bucket,
			Key:       e.Key,
			Status:    e.Status,
			ETag:      e.ETag,
			Size:      e.SizeBytes,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4   // "NAME"
	maxBucketLen := 6 // "BUCKET"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Bucket) > maxBucketLen {
			maxBucketLen = len(profiles[i].Bucket)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxBucketLen > 40 {
		maxBucketLen = 40
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-12s  %s\n", maxNameLen, "NAME", maxBucketLen, "BUCKET", "REGION", "ACCESS KEY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		strings.Repeat("-", maxNameLen), strings.Repeat("-", maxBucketLen),
		strings.Repeat("-", 12), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		bucket := p.Bucket
		if len(bucket) > maxBucketLen {
			bucket = bucket[:maxBucketLen-3] + "..."
		}

		accessKey := maskSecret(p.AccessKey, showSecrets)

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-12s  %s\n", marker, maxNameLen, name, maxBucketLen, bucket, p.Region, accessKey)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:       %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Region:     %s\n", profile.Region)
	_, _ = fmt.Fprintf(w, "Bucket:     %s\n", profile.Bucket)
	if profile.Endpoint != "" {
		_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", profile.Endpoint)
	}
	_, _ = fmt.Fprintf(w, "Access Key: %s\n", maskSecret(profile.AccessKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Secret Key: %s\n", maskSecret(profile.SecretKey, showSecrets))
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Bucket    string `json:"bucket"`
		Endpoint  string `json:"endpoint,omitempty"`
		AccessKey string `json:"access_key,omitempty"`
		SecretKey string `json:"secret_key,omitempty"`
		Default   bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		jp := jsonProfile{
			Name:     p.Name,
			Region:   p.Region,
			Bucket:   p.Bucket,
			Endpoint: p.Endpoint,
			Default:  p.Name == defaultName,
		}
		if showSecrets {
			jp.AccessKey = p.AccessKey
			jp.SecretKey = p.SecretKey
		} else {
			jp.AccessKey = maskSecret(p.AccessKey, false)
			jp.SecretKey = maskSecret(p.SecretKey, false)
		}
		output.Profiles[i] = jp
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Bucket    string `json:"bucket"`
		Endpoint  string `json:"endpoint,omitempty"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		Default   bool   `json:"default"`
	}{
		Name:     profile.Name,
		Region:   profile.Region,
		Bucket:   profile.Bucket,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}

	if showSecrets {
		output.AccessKey = profile.AccessKey
		output.SecretKey = profile.SecretKey
	} else {
		output.AccessKey = maskSecret(profile.AccessKey, false)
		output.SecretKey = maskSecret(profile.SecretKey, false)
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4
// characters. If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
