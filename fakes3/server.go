package fakes3

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/s3req/s3req"
)

// CORSConfig controls cross-origin request handling.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// Config configures a Handler. Read and write verifiers may be nil for
// public access.
type Config struct {
	ReadVerifier  RequestVerifier
	WriteVerifier RequestVerifier
	CORS          CORSConfig
}

// Handler provides the S3-compatible HTTP surface over a Store.
type Handler struct {
	config Config
	store  *Store
}

// NewHandler creates a Handler with the given configuration and store.
func NewHandler(config *Config, store *Store) *Handler {
	return &Handler{
		config: *config,
		store:  store,
	}
}

// Router returns the configured http.Handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.ReadVerifier))
		r.Get("/*", h.handleGet)
		r.Head("/*", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.WriteVerifier))
		r.Put("/*", h.handlePut)
		r.Delete("/*", h.handleDelete)
	})

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")

	if !IsValidKey(key) {
		WriteError(w, http.StatusBadRequest, "InvalidArgument", "Invalid key.", r.URL.Path)
		return
	}

	content, err := h.store.Get(r.Context(), key)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	// S3 sends the ETag on GET, so hash the content up front and rewind.
	hash := sha256.New()
	if _, err := io.Copy(hash, content); err != nil {
		HandleError(w, r, err)
		return
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		HandleError(w, r, err)
		return
	}

	w.Header().Set("ETag", `"`+hex.EncodeToString(hash.Sum(nil))+`"`)
	w.Header().Set("Content-Type", detectContentType(key))

	http.ServeContent(w, r, key, time.Time{}, content)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")

	if !IsValidKey(key) {
		WriteError(w, http.StatusBadRequest, "InvalidArgument", "Invalid key.", r.URL.Path)
		return
	}

	result, err := h.store.Write(r.Context(), key, r.Body)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	w.Header().Set("ETag", `"`+result.ETag+`"`)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")

	if !IsValidKey(key) {
		WriteError(w, http.StatusBadRequest, "InvalidArgument", "Invalid key.", r.URL.Path)
		return
	}

	err := h.store.Delete(r.Context(), key)
	if err != nil {
		if errors.Is(err, s3req.ErrNotFound) {
			// S3 DELETE is idempotent: removing a missing key succeeds.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
