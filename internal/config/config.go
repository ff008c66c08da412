// ABOUTME: kal configuration management.
// ABOUTME: Loads kal.config.toml via viper with KAL_* environment overrides.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/kal/internal/storage"
	"github.com/spf13/viper"
)

const (
	// ConfigPathEnv names the directory holding the config file.
	ConfigPathEnv = "KAL_CONFIG_PATH"

	// ConfigFileName is the config file looked up in the config directory.
	ConfigFileName = "kal.config.toml"
)

// DefaultCategories is the allow-list used when the config names none.
var DefaultCategories = []string{
	"exercise",
	"reading",
	"meditation",
	"work",
	"social",
	"health",
	"other",
}

// Config stores kal configuration.
type Config struct {
	// DBPath is the SQLite store file. Supports ~ expansion.
	DBPath string `mapstructure:"db_path"`

	// BackupFolder receives a snapshot after every write. It must exist.
	BackupFolder string `mapstructure:"backup_folder"`

	// Categories is the allow-list offered when committing an entry.
	Categories []string `mapstructure:"categories"`
}

// ConfigDir returns the directory holding kal.config.toml.
func ConfigDir() string {
	if dir := os.Getenv(ConfigPathEnv); dir != "" {
		return ExpandPath(dir)
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "kal")
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// Load reads config from the default location. A missing file yields defaults.
func Load() (*Config, error) {
	return load(GetConfigPath(), true)
}

// LoadFile reads config from an explicitly named path, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

// load reads path as TOML. KAL_DB_PATH, KAL_BACKUP_FOLDER and
// KAL_CATEGORIES override file values.
func load(path string, optional bool) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read configuration file (%s): %w", path, err)
		}
	}
	return decode(v, path)
}

// Default returns the built-in configuration with KAL_* overrides applied.
func Default() (*Config, error) {
	return decode(newViper(), "defaults")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("kal")
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper, source string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.DBPath = ExpandPath(cfg.DBPath)
	cfg.BackupFolder = ExpandPath(cfg.BackupFolder)
	for i, c := range cfg.Categories {
		cfg.Categories[i] = strings.TrimSpace(c)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", source, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", storage.DefaultDBPath())
	v.SetDefault("backup_folder", filepath.Join(storage.DataDir(), "backups"))
	v.SetDefault("categories", append([]string(nil), DefaultCategories...))
}

// Validate checks that paths are set and categories are non-empty and unique.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.BackupFolder == "" {
		return errors.New("backup_folder is required")
	}
	if len(c.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, category := range c.Categories {
		if category == "" {
			return errors.New("categories must not be empty")
		}
		if seen[category] {
			return fmt.Errorf("duplicate category %q", category)
		}
		seen[category] = true
	}
	return nil
}

// HasCategory reports whether category is in the allow-list.
func (c *Config) HasCategory(category string) bool {
	for _, allowed := range c.Categories {
		if allowed == category {
			return true
		}
	}
	return false
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Save writes config to the default location.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path as TOML.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	v := viper.New()
	v.Set("db_path", c.DBPath)
	v.Set("backup_folder", c.BackupFolder)
	v.Set("categories", c.Categories)
	v.SetConfigPermissions(0600)
	return v.WriteConfigAs(path)
}
