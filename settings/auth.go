// Package settings stores per-user lin data outside of any project.
//
// API keys live in the XDG data directory:
//
//	$XDG_DATA_HOME/lin/auth.json  (default: ~/.local/share/lin/auth.json)
//
// The file is a JSON object keyed by provider, each value holding the key.
// Its permissions are 0600.
//
// The registry's file cache lives in the XDG cache directory:
//
//	$XDG_CACHE_HOME/lin/registry  (default: ~/.cache/lin/registry)
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	appDirName = "lin"
	fileName   = "auth.json"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Info is the entry stored per provider in auth.json.
type Info struct {
	Key string `json:"key"`
}

// Store holds all provider credentials, keyed by provider.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func xdgDir(env string, fallback ...string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appDirName)...), nil
}

// DataDir returns the lin data directory.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// CacheDir returns the directory of the registry's file cache.
func CacheDir() (string, error) {
	dir, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "registry"), nil
}

func filePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store. A missing or unreadable file is an empty
// store.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// SetAPIKey stores the key for a provider, replacing any earlier one.
func SetAPIKey(provider, key string) error {
	store := Load()
	store[provider] = &Info{Key: key}
	return Save(store)
}

// GetAPIKey returns the stored key for a provider, or "".
func GetAPIKey(provider string) string {
	info := Load()[provider]
	if info == nil {
		return ""
	}
	return info.Key
}

// LookupAPIKey reports the stored key for a provider. It has the shape of
// config.KeyStore.
func LookupAPIKey(provider string) (string, bool) {
	key := GetAPIKey(provider)
	return key, key != ""
}

// Remove deletes the key of a provider. It reports whether one was stored.
func Remove(provider string) (bool, error) {
	store := Load()
	if _, ok := store[provider]; !ok {
		return false, nil
	}
	delete(store, provider)
	return true, Save(store)
}

// Providers returns the providers with a stored key, sorted.
func (s Store) Providers() []string {
	out := make([]string, 0, len(s))
	for p, info := range s {
		if info != nil && info.Key != "" {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// MaskKey returns a key safe for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
