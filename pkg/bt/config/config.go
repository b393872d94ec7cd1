package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/fetch"
	"github.com/burmudar/bt-magnet/pkg/bt/manager"
)

const EnvPrefix = "BTMAGNET"

// Keys shared between flags, environment variables and the config file
const (
	KeyMaxDepth       = "max-depth"
	KeyConcurrency    = "concurrency"
	KeyTimeout        = "timeout"
	KeyMaxTorrentSize = "max-torrent-size"
	KeyRawInfoHash    = "raw-info-hash"
	KeyOutput         = "output"
	KeyLogLevel       = "log-level"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

type Config struct {
	MaxDepth       int
	Concurrency    int
	Timeout        time.Duration
	MaxTorrentSize int64
	RawInfoHash    bool
	Output         string
	LogLevel       logrus.Level
}

// SetDefaults registers the default for every key and wires up BTMAGNET_* environment
// variables, e.g. BTMAGNET_MAX_DEPTH.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxDepth, encoding.DefaultMaxDepth)
	v.SetDefault(KeyConcurrency, manager.DefaultConcurrency)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyMaxTorrentSize, fetch.DefaultMaxSize)
	v.SetDefault(KeyRawInfoHash, false)
	v.SetDefault(KeyOutput, OutputText)
	v.SetDefault(KeyLogLevel, logrus.InfoLevel.String())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file at path and builds a validated Config
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MaxDepth:       v.GetInt(KeyMaxDepth),
		Concurrency:    v.GetInt(KeyConcurrency),
		Timeout:        v.GetDuration(KeyTimeout),
		MaxTorrentSize: v.GetInt64(KeyMaxTorrentSize),
		RawInfoHash:    v.GetBool(KeyRawInfoHash),
		Output:         v.GetString(KeyOutput),
		LogLevel:       level,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var result *multierror.Error
	if c.MaxDepth < 1 {
		result = multierror.Append(result, fmt.Errorf("%s must be at least 1, got %d", KeyMaxDepth, c.MaxDepth))
	}
	if c.Concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("%s must be at least 1, got %d", KeyConcurrency, c.Concurrency))
	}
	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout))
	}
	if c.MaxTorrentSize < 1 {
		result = multierror.Append(result, fmt.Errorf("%s must be at least 1, got %d", KeyMaxTorrentSize, c.MaxTorrentSize))
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		result = multierror.Append(result, fmt.Errorf("%s must be %q or %q, got %q", KeyOutput, OutputText, OutputJSON, c.Output))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
