// Package keystore provides SecretStore implementations for access-key
// to secret-key lookup.
package keystore

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when the access key does not exist in the store.
var ErrKeyNotFound = errors.New("access key not found")

// MapStore retrieves keys from an in-memory map. Suitable for
// configuration file-based key storage.
type MapStore struct {
	keys map[string]string
}

// NewMapStore creates a map-based secret store with the given access key
// to secret key mapping.
func NewMapStore(keys map[string]string) *MapStore {
	return &MapStore{keys: keys}
}

// Lookup retrieves the secret key for the given access key from the map.
func (s *MapStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, accessKey)
	}
	return secretKey, nil
}

// KeysConfig holds configuration for loading access keys.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to JSON file containing key pairs
}

// NewStore creates a secret store from the given configuration. It loads
// keys from both inline config and file (if specified), merging them into
// a single store. File keys take precedence over inline keys if there are
// duplicates.
func NewStore(cfg KeysConfig) (*MapStore, error) {
	keys := make(map[string]string)

	for _, p := range cfg.Inline {
		if p.AccessKey != "" && p.SecretKey != "" {
			keys[p.AccessKey] = p.SecretKey
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileKeys {
			keys[k] = v
		}
	}

	return NewMapStore(keys), nil
}
