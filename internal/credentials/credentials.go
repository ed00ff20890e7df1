// Package credentials keeps the OpenRouter API key in the OS keychain, with
// a private JSON file for machines that have no keychain service.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "cognitive-gauntlet"
	DefaultProfile = "default"

	secretAPIKey = "openrouter-api-key"
)

// ErrNotFound is returned when no key has been stored.
var ErrNotFound = keyring.ErrNotFound

// Store reads and writes API keys per profile.
type Store struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// New returns a Store. An empty service uses DefaultService; an empty
// fallbackPath disables the file fallback.
func New(service, fallbackPath string) *Store {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Store{service: service, fallbackPath: fallbackPath}
}

// DefaultFallbackPath is secrets.json under the user config directory.
func DefaultFallbackPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, DefaultService, "secrets.json")
}

func (s *Store) user(profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", errors.New("credentials: profile is required")
	}
	return profile + "/" + secretAPIKey, nil
}

// SetAPIKey stores key for profile.
func (s *Store) SetAPIKey(profile, key string) error {
	user, err := s.user(profile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("credentials: empty key")
	}

	err = keyring.Set(s.service, user, key)
	switch {
	case err == nil:
		return nil
	case !unavailable(err):
		return fmt.Errorf("credentials: keyring set: %w", err)
	}
	return s.writeFallback(profile, &key)
}

// APIKey returns the key stored for profile, or ErrNotFound.
func (s *Store) APIKey(profile string) (string, error) {
	user, err := s.user(profile)
	if err != nil {
		return "", err
	}

	key, err := keyring.Get(s.service, user)
	if err == nil {
		return key, nil
	}
	if !unavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("credentials: keyring get: %w", err)
	}

	fallback, ferr := s.readFallback(profile)
	switch {
	case ferr == nil:
		return fallback, nil
	case errors.Is(err, keyring.ErrNotFound), errors.Is(ferr, ErrNotFound):
		return "", ErrNotFound
	}
	return "", ferr
}

// DeleteAPIKey removes the key for profile from the keychain and the
// fallback file. Deleting a missing key is not an error.
func (s *Store) DeleteAPIKey(profile string) error {
	user, err := s.user(profile)
	if err != nil {
		return err
	}

	kerr := keyring.Delete(s.service, user)
	if kerr != nil && (errors.Is(kerr, keyring.ErrNotFound) || unavailable(kerr)) {
		kerr = nil
	}
	ferr := s.writeFallback(profile, nil)
	if s.fallbackPath == "" {
		ferr = nil
	}
	if kerr != nil {
		return fmt.Errorf("credentials: keyring delete: %w", kerr)
	}
	return ferr
}

func unavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"secret service", "dbus", "no keychain", "keyring backend not available",
		"the specified item could not be found in the keychain"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// fallback file layout: profile -> key
type fallbackFile map[string]string

func (s *Store) readFallback(profile string) (string, error) {
	if s.fallbackPath == "" {
		return "", ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUnlocked()
	if err != nil {
		return "", err
	}
	key, ok := data[profile]
	if !ok {
		return "", ErrNotFound
	}
	return key, nil
}

// writeFallback sets profile to *key, or removes it when key is nil.
func (s *Store) writeFallback(profile string, key *string) error {
	if s.fallbackPath == "" {
		return errors.New("credentials: keyring unavailable and no fallback file configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if key == nil {
		if _, ok := data[profile]; !ok {
			return nil
		}
		delete(data, profile)
	} else {
		data[profile] = *key
	}

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("credentials: create fallback dir: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("credentials: encode fallback: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("credentials: write fallback: %w", err)
	}
	return nil
}

func (s *Store) loadUnlocked() (fallbackFile, error) {
	out := fallbackFile{}
	raw, err := os.ReadFile(s.fallbackPath)
	switch {
	case os.IsNotExist(err):
		return out, nil
	case err != nil:
		return nil, fmt.Errorf("credentials: read fallback: %w", err)
	case len(raw) == 0:
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("credentials: decode fallback: %w", err)
	}
	return out, nil
}

// Mask shows only the last four characters of key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
