package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Deck       DeckConfig       `toml:"deck"`
	Navigation NavigationConfig `toml:"navigation"`
	Animation  AnimationConfig  `toml:"animation"`
	Export     ExportConfig     `toml:"export"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// DeckConfig selects the deck source and how slide bodies are styled.
type DeckConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
	Style string `toml:"style"`
}

// NavigationConfig contains presenter input settings.
type NavigationConfig struct {
	SwipeThreshold int    `toml:"swipe_threshold"`
	ProgressKey    string `toml:"progress_key"`
	ConfirmQuit    bool   `toml:"confirm_quit"`
}

// AnimationConfig contains entrance animation timings in milliseconds.
type AnimationConfig struct {
	ResetDelayMS       int `toml:"reset_delay_ms"`
	ScaleStaggerMS     int `toml:"scale_stagger_ms"`
	TimelineStaggerMS  int `toml:"timeline_stagger_ms"`
	ComponentStaggerMS int `toml:"component_stagger_ms"`
	TransitionMS       int `toml:"transition_ms"`
	FrameMS            int `toml:"frame_ms"`
}

// ExportConfig contains export mode settings.
type ExportConfig struct {
	Format            string `toml:"format"`
	Output            string `toml:"output"`
	FallbackTimeoutMS int    `toml:"fallback_timeout_ms"`
	NoticeDelayMS     int    `toml:"notice_delay_ms"`
	ChromeBin         string `toml:"chrome_bin"`
	PageWidth         int    `toml:"page_width"`
	PageHeight        int    `toml:"page_height"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path when it exists, falling back to [DefaultConfig].
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Navigation.SwipeThreshold <= 0:
		return fmt.Errorf("%w: navigation.swipe_threshold must be positive", ErrInvalidConfig)
	case c.Navigation.ProgressKey == "":
		return fmt.Errorf("%w: navigation.progress_key is required", ErrInvalidConfig)
	case c.Animation.ResetDelayMS < 0, c.Animation.ScaleStaggerMS < 0,
		c.Animation.TimelineStaggerMS < 0, c.Animation.ComponentStaggerMS < 0:
		return fmt.Errorf("%w: animation delays cannot be negative", ErrInvalidConfig)
	case c.Animation.TransitionMS <= 0 || c.Animation.FrameMS <= 0:
		return fmt.Errorf("%w: animation.transition_ms and animation.frame_ms must be positive", ErrInvalidConfig)
	case c.Export.FallbackTimeoutMS <= 0:
		return fmt.Errorf("%w: export.fallback_timeout_ms must be positive", ErrInvalidConfig)
	case c.Export.PageWidth <= 0 || c.Export.PageHeight <= 0:
		return fmt.Errorf("%w: export page size must be positive", ErrInvalidConfig)
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range", ErrInvalidConfig)
	}
	return nil
}

// Millis converts a millisecond config value to a [time.Duration].
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
