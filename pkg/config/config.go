package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// TmpDir is where downloaded recipe images are written. TmpURLPrefix is
	// the prefix returned to callers in front of the generated file name.
	TmpDir           string        `mapstructure:"TMP_DIR"`
	TmpURLPrefix     string        `mapstructure:"TMP_URL_PREFIX"`
	TmpMaxAge        time.Duration `mapstructure:"TMP_MAX_AGE"`
	TmpCleanInterval time.Duration `mapstructure:"TMP_CLEAN_INTERVAL"`

	FetchTimeout   time.Duration `mapstructure:"FETCH_TIMEOUT"`
	MaxImageBytes  int64         `mapstructure:"MAX_IMAGE_BYTES"`
	ImageMaxWidth  int           `mapstructure:"IMAGE_MAX_WIDTH"`
	ImageMaxPixels int64         `mapstructure:"IMAGE_MAX_PIXELS"`
	JPEGQuality    int           `mapstructure:"JPEG_QUALITY"`
	UserAgents     []string      `mapstructure:"USER_AGENTS"`
	ProxyURLs      []string      `mapstructure:"PROXY_URLS"`

	// BrowserDomains lists recipe sites that only render their markup with
	// JavaScript and therefore go through headless Chrome.
	BrowserDomains     []string      `mapstructure:"BROWSER_DOMAINS"`
	BrowserTimeout     time.Duration `mapstructure:"BROWSER_TIMEOUT"`
	BrowserConcurrency int           `mapstructure:"BROWSER_CONCURRENCY"`

	PostgresURL   string        `mapstructure:"POSTGRES_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Load reads configuration from the .env file in the working directory or
// environment variables.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads configuration from the given env file and environment variables.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = v.ReadInConfig()

	v.SetDefault("SERVER_PORT", "9005")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TMP_DIR", "instance/tmp")
	v.SetDefault("TMP_URL_PREFIX", "tmp")
	v.SetDefault("TMP_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("TMP_CLEAN_INTERVAL", time.Hour)
	v.SetDefault("FETCH_TIMEOUT", 20*time.Second)
	v.SetDefault("MAX_IMAGE_BYTES", 10<<20)
	v.SetDefault("IMAGE_MAX_WIDTH", 1600)
	v.SetDefault("JPEG_QUALITY", 85)
	v.SetDefault("IMAGE_MAX_PIXELS", 40_000_000)
	v.SetDefault("USER_AGENTS", defaultUserAgents)
	v.SetDefault("PROXY_URLS", []string{})
	v.SetDefault("BROWSER_DOMAINS", []string{})
	v.SetDefault("BROWSER_TIMEOUT", 45*time.Second)
	v.SetDefault("BROWSER_CONCURRENCY", 2)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", time.Hour)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.TmpCleanInterval <= 0 {
		return nil, fmt.Errorf("TMP_CLEAN_INTERVAL must be positive, got %s", cfg.TmpCleanInterval)
	}
	return &cfg, nil
}
