// Package config – keyring.go stores the calling-API credential in the
// operating system's native keyring (Linux: Secret Service/GNOME Keyring,
// macOS: Keychain, Windows: Credential Manager).
//
// Priority for resolving secrets:
//  1. OS keyring (encrypted by the OS, requires user session)
//  2. Environment variable (OPSCLAW_PHONE_API_KEY)
//  3. config value (least secure, plaintext on disk)
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "opsclaw"

	// KeyringPhoneAPIKey is the key name for the calling API credential.
	KeyringPhoneAPIKey = "phone_api_key"

	// envPhoneAPIKey is the environment fallback.
	envPhoneAPIKey = "OPSCLAW_PHONE_API_KEY"
)

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring.
// Returns empty string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// KeyringAvailable checks if the OS keyring is accessible.
func KeyringAvailable() bool {
	testKey := "__opsclaw_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// ResolvePhoneAPIKey resolves the calling API key through the priority chain
// keyring → env → config value, updating the config in place.
func ResolvePhoneAPIKey(cfg *Config, logger *slog.Logger) {
	if val := GetKeyring(KeyringPhoneAPIKey); val != "" {
		cfg.Phone.APIKey = val
		logger.Debug("phone API key loaded from OS keyring")
		return
	}
	if val := os.Getenv(envPhoneAPIKey); val != "" {
		cfg.Phone.APIKey = val
		logger.Debug("phone API key loaded from environment")
		return
	}
	if cfg.Phone.APIKey != "" && !IsEnvReference(cfg.Phone.APIKey) {
		logger.Debug("phone API key loaded from config")
		return
	}
	cfg.Phone.APIKey = ""
}

// ReadPassword prompts for a secret without echoing it to the terminal.
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
