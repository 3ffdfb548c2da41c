package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"searchy/internal/domain"
	"searchy/internal/eventbus"
)

// Backend names accepted in search.backend
const (
	BackendITunes  = "itunes"
	BackendAlgolia = "algolia"
	BackendMemory  = "memory"
)

// EnvPrefix is the prefix for environment overrides, e.g. SEARCHY_SEARCH_BACKEND
const EnvPrefix = "SEARCHY"

// Config represents the application configuration
type Config struct {
	Version    int              `mapstructure:"version"`
	Search     SearchConfig     `mapstructure:"search"`
	Algolia    AlgoliaConfig    `mapstructure:"algolia"`
	Images     ImagesConfig     `mapstructure:"images"`
	Grid       GridConfig       `mapstructure:"grid"`
	Transition TransitionConfig `mapstructure:"transition"`
	Log        LogConfig        `mapstructure:"log"`
}

// SearchConfig configures the pipeline and the search backend
type SearchConfig struct {
	Backend  string        `mapstructure:"backend"`
	Debounce time.Duration `mapstructure:"debounce"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Limit    int           `mapstructure:"limit"`
	BaseURL  string        `mapstructure:"base_url"`
	Country  string        `mapstructure:"country"`
	Media    string        `mapstructure:"media"`
	Entity   string        `mapstructure:"entity"`
	Latency  time.Duration `mapstructure:"latency"` // memory backend only
	Jitter   time.Duration `mapstructure:"jitter"`  // memory backend only
}

// AlgoliaConfig configures the Algolia backend
type AlgoliaConfig struct {
	AppID         string `mapstructure:"app_id"`
	APIKeyEnv     string `mapstructure:"api_key_env"`
	Index         string `mapstructure:"index"`
	TitleField    string `mapstructure:"title_field"`
	SubtitleField string `mapstructure:"subtitle_field"`
	ImageField    string `mapstructure:"image_field"`
}

// ImagesConfig configures the image provider
type ImagesConfig struct {
	CacheSize int           `mapstructure:"cache_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// GridConfig configures the result grid layout, in points
type GridConfig struct {
	Columns   int `mapstructure:"columns"`
	Margin    int `mapstructure:"margin"`
	LabelBand int `mapstructure:"label_band"`
}

// TransitionConfig configures the shared-element animation
type TransitionConfig struct {
	Duration      time.Duration `mapstructure:"duration"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Enabled       bool          `mapstructure:"enabled"`
}

// LogConfig configures the log file
type LogConfig struct {
	File  string `mapstructure:"file"`
	Trace bool   `mapstructure:"trace"` // write a span line per backend call
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service rooted at the user config directory
func NewConfigService(bus eventbus.EventBus) ConfigService {
	return NewConfigServiceAt(DefaultPath(), bus)
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	return &configService{bus: bus, filePath: path}
}

// DefaultPath returns ~/.config/searchy/config.toml, falling back to the working directory
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "searchy", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the service's config file, writing defaults first when it does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		if err := cs.SaveToPath(DefaultConfig(), cs.filePath); err != nil {
			return nil, err
		}
	}
	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.bus.Publish(domain.ConfigLoadedEvent{Path: cs.filePath, Backend: cfg.Search.Backend})
	return cfg, nil
}

// LoadFromPath reads defaults, then the TOML file at path, then SEARCHY_* env overrides
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(toFile(config))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cs.bus.Publish(domain.ConfigSavedEvent{Path: path})
	return nil
}

// Validate checks values that would break the pipeline or the layout
func (c *Config) Validate() error {
	switch c.Search.Backend {
	case BackendITunes, BackendAlgolia, BackendMemory:
	default:
		return fmt.Errorf("unknown search backend %q", c.Search.Backend)
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive, got %s", c.Search.Debounce)
	}
	if c.Grid.Columns < 1 {
		return fmt.Errorf("grid.columns must be at least 1, got %d", c.Grid.Columns)
	}
	if c.Grid.Margin < 0 || c.Grid.LabelBand < 0 {
		return fmt.Errorf("grid margins must not be negative")
	}
	if c.Transition.FrameInterval <= 0 {
		return fmt.Errorf("transition.frame_interval must be positive")
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			Backend:  BackendITunes,
			Debounce: 330 * time.Millisecond,
			Timeout:  10 * time.Second,
			Limit:    50,
			BaseURL:  "https://itunes.apple.com/search",
			Country:  "US",
			Media:    "music",
			Entity:   "album",
		},
		Algolia: AlgoliaConfig{
			APIKeyEnv:     "ALGOLIA_API_KEY",
			TitleField:    "title",
			SubtitleField: "subtitle",
			ImageField:    "image",
		},
		Images: ImagesConfig{
			CacheSize: 256,
			Timeout:   15 * time.Second,
		},
		Grid: GridConfig{
			Columns:   2,
			Margin:    2,
			LabelBand: 4,
		},
		Transition: TransitionConfig{
			Duration:      350 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
			Enabled:       true,
		},
		Log: LogConfig{
			File: "searchy.log",
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("search.backend", d.Search.Backend)
	v.SetDefault("search.debounce", d.Search.Debounce)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.base_url", d.Search.BaseURL)
	v.SetDefault("search.country", d.Search.Country)
	v.SetDefault("search.media", d.Search.Media)
	v.SetDefault("search.entity", d.Search.Entity)
	v.SetDefault("search.latency", d.Search.Latency)
	v.SetDefault("search.jitter", d.Search.Jitter)
	v.SetDefault("algolia.app_id", d.Algolia.AppID)
	v.SetDefault("algolia.api_key_env", d.Algolia.APIKeyEnv)
	v.SetDefault("algolia.index", d.Algolia.Index)
	v.SetDefault("algolia.title_field", d.Algolia.TitleField)
	v.SetDefault("algolia.subtitle_field", d.Algolia.SubtitleField)
	v.SetDefault("algolia.image_field", d.Algolia.ImageField)
	v.SetDefault("images.cache_size", d.Images.CacheSize)
	v.SetDefault("images.timeout", d.Images.Timeout)
	v.SetDefault("grid.columns", d.Grid.Columns)
	v.SetDefault("grid.margin", d.Grid.Margin)
	v.SetDefault("grid.label_band", d.Grid.LabelBand)
	v.SetDefault("transition.duration", d.Transition.Duration)
	v.SetDefault("transition.frame_interval", d.Transition.FrameInterval)
	v.SetDefault("transition.enabled", d.Transition.Enabled)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.trace", d.Log.Trace)

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// A missing file is not an error; variables already set are left alone.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}
