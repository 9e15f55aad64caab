package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/tubegrab/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. TUBEGRAB_NETWORK_CONNECT_TIMEOUT.
const EnvPrefix = "TUBEGRAB"

// DefaultArchiveURL is the FFmpeg build fetched by the installer.
const DefaultArchiveURL = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"

// Config holds process-level settings. User choices made in the GUI live in
// Settings instead.
type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	Events  EventsConfig  `mapstructure:"events"`
	FFmpeg  FFmpegConfig  `mapstructure:"ffmpeg"`
	Log     LogConfig     `mapstructure:"log"`
}

// NetworkConfig bounds network calls that would otherwise hang before any data arrives.
type NetworkConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ExpandTimeout  time.Duration `mapstructure:"expand_timeout"`
}

// EventsConfig sizes the progress queues.
type EventsConfig struct {
	QueueSize        int           `mapstructure:"queue_size"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

// FFmpegConfig configures tool acquisition.
type FFmpegConfig struct {
	ArchiveURL string `mapstructure:"archive_url"`
	InstallDir string `mapstructure:"install_dir"` // empty means the per-user data directory
}

// LogConfig configures the global logger.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("network.connect_timeout", 30*time.Second)
	v.SetDefault("network.expand_timeout", 60*time.Second)

	v.SetDefault("events.queue_size", 256)
	v.SetDefault("events.progress_interval", 250*time.Millisecond)

	v.SetDefault("ffmpeg.archive_url", DefaultArchiveURL)
	v.SetDefault("ffmpeg.install_dir", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// Default returns the configuration with only defaults applied.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads configuration. Precedence (lowest to highest): defaults <
// config file < TUBEGRAB_* environment. An empty path looks for
// config.toml in the user config directory and skips it when absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path == "" {
		path = defaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid
func (c Config) Validate() error {
	if c.Network.ConnectTimeout <= 0 {
		return errors.Newf("network.connect_timeout must be > 0, got %s", c.Network.ConnectTimeout)
	}
	if c.Network.ExpandTimeout < 0 {
		return errors.Newf("network.expand_timeout must be >= 0, got %s", c.Network.ExpandTimeout)
	}
	if c.Events.QueueSize < 1 {
		return errors.Newf("events.queue_size must be >= 1, got %d", c.Events.QueueSize)
	}
	if c.Events.ProgressInterval < 0 {
		return errors.Newf("events.progress_interval must be >= 0, got %s", c.Events.ProgressInterval)
	}
	if c.FFmpeg.ArchiveURL == "" {
		return errors.New("ffmpeg.archive_url cannot be empty")
	}
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tubegrab", "config.toml")
}
