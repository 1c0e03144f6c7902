// Package config loads the server configuration.
//
// Values come from an optional config.yaml, then IMAGE_MAGICK_* environment
// variables (IMAGE_MAGICK_SERVER_TRANSPORT, IMAGE_MAGICK_LOG_LEVEL, ...),
// then built-in defaults.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_MAGICK"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Magick MagickConfig `mapstructure:"magick"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport    string        `mapstructure:"transport"`
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxBodyBytes caps HTTP request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

type MagickConfig struct {
	MaxMemory      int64 `mapstructure:"max_memory"`
	MaxConcurrency int64 `mapstructure:"max_concurrency"`
	IgnoreWarnings bool  `mapstructure:"ignore_warnings"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the first of paths that has one (default
// ./config). A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return ParseConfig(v)
}

// ParseConfig decodes v into a Config.
func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<20)

	v.SetDefault("magick.max_memory", 0)
	v.SetDefault("magick.max_concurrency", 0)
	v.SetDefault("magick.ignore_warnings", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// GetEnv returns the environment variable key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// NewLogger builds a logger writing to stderr at the configured level and
// format ("text" or "json"). An unknown level falls back to info.
func (c LogConfig) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if strings.EqualFold(c.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}
