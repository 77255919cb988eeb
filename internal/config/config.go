// Package config provides configuration management for versync.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional project-local versync.yaml, and VERSYNC_* environment variables.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jmgilman/versync/internal/versionsync"
)

// DefaultConfigFile is the project config file, relative to the working directory.
const DefaultConfigFile = "versync.yaml"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "VERSYNC"

// Default packager invocation.
const defaultPackagerCommand = "cargo"

var defaultPackagerArgs = []string{"tauri", "build"}

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey   = errors.New("invalid configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
	ErrNoEditor     = errors.New("$EDITOR environment variable not set")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full versync configuration.
type Config struct {
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync" validate:"required"`
	Packager PackagerConfig `mapstructure:"packager" yaml:"packager" validate:"required"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// SyncConfig holds the paths of the two documents being reconciled.
type SyncConfig struct {
	Primary   string `mapstructure:"primary" yaml:"primary" validate:"required"`
	Secondary string `mapstructure:"secondary" yaml:"secondary" validate:"required,nefield=Primary"`
}

// PackagerConfig holds the downstream packaging command.
type PackagerConfig struct {
	Command string   `mapstructure:"command" yaml:"command" validate:"required"`
	Args    []string `mapstructure:"args" yaml:"args"`
	Dir     string   `mapstructure:"dir" yaml:"dir"`
	Env     []string `mapstructure:"env" yaml:"env" validate:"dive,required"`
}

// EnvMap parses Env entries of the form KEY=VALUE.
func (p PackagerConfig) EnvMap() (map[string]string, error) {
	env := make(map[string]string, len(p.Env))
	for _, entry := range p.Env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: packager.env entry %q is not KEY=VALUE", ErrInvalidValue, entry)
		}
		env[key] = value
	}
	return env, nil
}

// LogConfig holds diagnostic output settings.
type LogConfig struct {
	// Cargo echoes the update notice as a cargo:warning line on stdout.
	Cargo bool `mapstructure:"cargo" yaml:"cargo"`
}

// Defaults returns the built-in configuration, used when loading fails.
func Defaults() *Config {
	return &Config{
		Sync: SyncConfig{
			Primary:   versionsync.DefaultPrimary,
			Secondary: versionsync.DefaultSecondary,
		},
		Packager: PackagerConfig{
			Command: defaultPackagerCommand,
			Args:    slices.Clone(defaultPackagerArgs),
		},
	}
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := c.Packager.EnvMap(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a configuration loader for the file at path.
// An empty path selects DefaultConfigFile in the working directory.
func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Only leaf keys are bound; VERSYNC_PACKAGER must not shadow the
	// packager section.
	for _, key := range Keys() {
		if !strings.Contains(key, ".") {
			continue // section
		}
		//nolint:errcheck // BindEnv only fails with zero arguments
		v.BindEnv(append([]string{key}, EnvNames(key)...)...)
	}

	l := &Loader{
		v:    v,
		path: path,
	}
	l.setDefaults()

	return l
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("sync.primary", versionsync.DefaultPrimary)
	l.v.SetDefault("sync.secondary", versionsync.DefaultSecondary)
	l.v.SetDefault("packager.command", defaultPackagerCommand)
	l.v.SetDefault("packager.args", defaultPackagerArgs)
	l.v.SetDefault("packager.dir", "")
	l.v.SetDefault("packager.env", []string{})
	l.v.SetDefault("log.cargo", false)
}

// Load reads the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Exists returns true if the configuration file is present.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key and writes the
// configuration file, creating it if needed.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	switch key {
	case "sync", "packager", "log":
		return fmt.Errorf("%w: %s is a section, set one of its keys instead", ErrInvalidKey, key)
	case "packager.args", "packager.env":
		l.v.Set(key, strings.Fields(value))
	case "log.cargo":
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			l.v.Set(key, true)
		case "false", "0", "no":
			l.v.Set(key, false)
		default:
			return fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidValue, key, value)
		}
	default:
		if value == "" && (key == "sync.primary" || key == "sync.secondary" || key == "packager.command") {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
		l.v.Set(key, value)
	}

	if !l.Exists() {
		return l.v.WriteConfigAs(l.path)
	}
	return l.v.WriteConfig()
}

// isNotExist reports whether err means the config file is absent.
func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// envAliases are short names for the settings most often overridden in CI.
var envAliases = map[string]string{
	"sync.primary":     EnvPrefix + "_PRIMARY",
	"sync.secondary":   EnvPrefix + "_SECONDARY",
	"packager.command": EnvPrefix + "_PACKAGER",
}

// EnvNames returns the environment variables that override key, highest
// precedence first: the short alias if any, then VERSYNC_<SECTION>_<KEY>.
func EnvNames(key string) []string {
	full := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if alias, ok := envAliases[key]; ok {
		return []string{alias, full}
	}
	return []string{full}
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if validKeys[key] {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// Keys returns all configuration keys in sorted order.
func Keys() []string {
	return slices.Sorted(maps.Keys(validKeys))
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		// Recurse into nested structs (but not maps)
		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
