// Package config – config.go loads the opsclaw.yaml configuration. A .env
// file next to the config is loaded first (godotenv), then ${VAR} references
// in the YAML are expanded from the environment before parsing. Secrets
// resolve through the chain keyring → env → config value.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
)

// DiscordConfig wires the Discord channel.
type DiscordConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Token        string `yaml:"token"`
	Trigger      string `yaml:"trigger"`
	RespondToDMs bool   `yaml:"respond_to_dms"`
}

// RemindersConfig controls the reminder scan loop.
type RemindersConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full opsclaw configuration.
type Config struct {
	DataDir   string             `yaml:"data_dir"`
	AuditDB   string             `yaml:"audit_db"`
	Log       LogConfig          `yaml:"log"`
	Discord   DiscordConfig      `yaml:"discord"`
	Phone     agents.PhoneConfig `yaml:"phone"`
	Reminders RemindersConfig    `yaml:"reminders"`

	// Broadcast maps logical channel names (social, devops) to platform
	// channel IDs.
	Broadcast map[string]string `yaml:"broadcast"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: "./data",
		AuditDB: "./data/opsclaw.db",
		Log:     LogConfig{Level: "info", Format: "text"},
		Discord: DiscordConfig{Trigger: "!ops", RespondToDMs: true},
		Reminders: RemindersConfig{
			Enabled: true,
			Spec:    "@every 1m",
		},
		Broadcast: map[string]string{},
	}
}

// Load reads the config file at path, expanding environment references.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// Best effort: a .env beside the binary seeds the environment.
	_ = godotenv.Load()

	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	expanded, err := expandEnvVarsWithValidation(string(raw))
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.Broadcast == nil {
		cfg.Broadcast = map[string]string{}
	}
	return cfg, nil
}

var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*)|:\?([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars replaces ${VAR}, $VAR, ${VAR:-default} and ${VAR:?message}
// references with environment values. Unset plain references are kept as-is
// so a later resolution step can still see them; unset :? references become
// an ERROR marker picked up by validation.
func expandEnvVars(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRefRe.FindStringSubmatch(ref)
		name := m[1]
		if name == "" {
			name = m[5]
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		switch {
		case strings.HasPrefix(m[2], ":-"):
			return m[3]
		case strings.HasPrefix(m[2], ":?"):
			msg := m[4]
			if msg == "" {
				msg = "required environment variable not set"
			}
			return fmt.Sprintf("<ERROR: %s: %s>", name, msg)
		}
		return ref
	})
}

var errMarkerRe = regexp.MustCompile(`<ERROR: ([^:>]+): ([^>]*)>`)

// expandEnvVarsWithValidation expands references and fails when a required
// (${VAR:?msg}) variable is unset.
func expandEnvVarsWithValidation(s string) (string, error) {
	expanded := expandEnvVars(s)
	if m := errMarkerRe.FindStringSubmatch(expanded); m != nil {
		return "", fmt.Errorf("%s: %s", m[1], strings.TrimSpace(m[2]))
	}
	return expanded, nil
}

// IsEnvReference reports whether a config value is an unexpanded ${VAR}
// placeholder.
func IsEnvReference(v string) bool {
	return strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}")
}
