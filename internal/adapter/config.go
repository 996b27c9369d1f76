package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Data        DataConfig        `mapstructure:"data"`
	Covers      CoversConfig      `mapstructure:"covers"`
	Pool        PoolConfig        `mapstructure:"pool"`
	OpenLibrary OpenLibraryConfig `mapstructure:"openlibrary"`
	UI          UIConfig          `mapstructure:"ui"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	DevSeed     bool              `mapstructure:"dev_seed"` // seed sample items into an empty library
}

// DataConfig locates the item database
type DataConfig struct {
	Dir string `mapstructure:"dir"`
	DB  string `mapstructure:"db"` // file name, relative to Dir unless absolute
}

// CoversConfig holds cover fetching configuration
type CoversConfig struct {
	Dir               string        `mapstructure:"dir"`  // empty = <data.dir>/covers
	Host              string        `mapstructure:"host"` // covers API base URL
	Variant           string        `mapstructure:"variant"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	ThumbnailCapacity int           `mapstructure:"thumbnail_capacity"`
	Viewer            string        `mapstructure:"viewer"` // external image viewer, empty for system default
}

// PoolConfig sizes the background worker pool
type PoolConfig struct {
	Workers      int           `mapstructure:"workers"` // <= 0 = number of CPUs
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
}

// OpenLibraryConfig holds metadata search configuration
type OpenLibraryConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Limit    int           `mapstructure:"limit"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ShowCovers bool `mapstructure:"show_covers"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: defaultDataPath(),
			DB:  "library.db",
		},
		Covers: CoversConfig{
			Host:              "https://covers.openlibrary.org",
			Variant:           "M",
			FetchTimeout:      15 * time.Second,
			ThumbnailCapacity: 128,
		},
		Pool: PoolConfig{
			Workers:      runtime.NumCPU(),
			DrainTimeout: 2 * time.Second,
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL:  "https://openlibrary.org",
			Limit:    25,
			Timeout:  10 * time.Second,
			CacheTTL: 24 * time.Hour,
		},
		UI: UIConfig{
			ShowCovers: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "shelf.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelf")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shelf")
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data.dir", cfg.Data.Dir)
	v.SetDefault("data.db", cfg.Data.DB)
	v.SetDefault("covers.dir", cfg.Covers.Dir)
	v.SetDefault("covers.host", cfg.Covers.Host)
	v.SetDefault("covers.variant", cfg.Covers.Variant)
	v.SetDefault("covers.fetch_timeout", cfg.Covers.FetchTimeout)
	v.SetDefault("covers.thumbnail_capacity", cfg.Covers.ThumbnailCapacity)
	v.SetDefault("covers.viewer", cfg.Covers.Viewer)
	v.SetDefault("pool.workers", cfg.Pool.Workers)
	v.SetDefault("pool.drain_timeout", cfg.Pool.DrainTimeout)
	v.SetDefault("openlibrary.base_url", cfg.OpenLibrary.BaseURL)
	v.SetDefault("openlibrary.limit", cfg.OpenLibrary.Limit)
	v.SetDefault("openlibrary.timeout", cfg.OpenLibrary.Timeout)
	v.SetDefault("openlibrary.cache_ttl", cfg.OpenLibrary.CacheTTL)
	v.SetDefault("ui.show_covers", cfg.UI.ShowCovers)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("dev_seed", cfg.DevSeed)
}

// LoadConfig loads configuration from file and environment. A non-empty
// path names the config file explicitly; otherwise config.yaml is looked up
// in the config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	return loadConfig(viper.GetViper(), path)
}

func loadConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: SHELF_COVERS_VARIANT, SHELF_DEV_SEED, ...
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Data.Dir = ExpandHome(cfg.Data.Dir)
	cfg.Covers.Dir = ExpandHome(cfg.Covers.Dir)
	cfg.Logging.File = ExpandHome(cfg.Logging.File)

	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Covers.Variant) {
	case "S", "M", "L":
		c.Covers.Variant = strings.ToUpper(c.Covers.Variant)
	default:
		return fmt.Errorf("covers.variant must be S, M or L, got %q", c.Covers.Variant)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Covers.ThumbnailCapacity < 1 {
		return fmt.Errorf("covers.thumbnail_capacity must be at least 1")
	}
	return nil
}

// DefaultConfigFile is where LoadConfig looks first when no path is given
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// SaveConfig writes cfg as YAML to path, or to DefaultConfigFile when path
// is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile()
	}
	return saveConfig(viper.New(), cfg, ExpandHome(path))
}

func saveConfig(v *viper.Viper, cfg *Config, configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("data.dir", cfg.Data.Dir)
	v.Set("data.db", cfg.Data.DB)

	v.Set("covers.dir", cfg.Covers.Dir)
	v.Set("covers.host", cfg.Covers.Host)
	v.Set("covers.variant", cfg.Covers.Variant)
	v.Set("covers.fetch_timeout", cfg.Covers.FetchTimeout.String())
	v.Set("covers.thumbnail_capacity", cfg.Covers.ThumbnailCapacity)
	v.Set("covers.viewer", cfg.Covers.Viewer)

	v.Set("pool.workers", cfg.Pool.Workers)
	v.Set("pool.drain_timeout", cfg.Pool.DrainTimeout.String())

	v.Set("openlibrary.base_url", cfg.OpenLibrary.BaseURL)
	v.Set("openlibrary.limit", cfg.OpenLibrary.Limit)
	v.Set("openlibrary.timeout", cfg.OpenLibrary.Timeout.String())
	v.Set("openlibrary.cache_ttl", cfg.OpenLibrary.CacheTTL.String())

	v.Set("ui.show_covers", cfg.UI.ShowCovers)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	v.Set("dev_seed", cfg.DevSeed)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DBPath returns the item database file
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Data.DB) {
		return c.Data.DB
	}
	return filepath.Join(c.Data.Dir, c.Data.DB)
}

// CoverDir returns the on-disk cover cache directory
func (c *Config) CoverDir() string {
	if c.Covers.Dir != "" {
		return c.Covers.Dir
	}
	return filepath.Join(c.Data.Dir, "covers")
}

// SearchCacheDir returns the directory holding the search-result cache
func (c *Config) SearchCacheDir() string {
	return filepath.Join(c.Data.Dir, "cache")
}

// LockPath returns the single-instance lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.Data.Dir, "shelf.lock")
}
