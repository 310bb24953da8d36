// Package config loads service configuration with Viper: an optional
// yaml file overridden by environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	HTTPServer  HTTPServerConfig
	Logger      LoggerConfig
	HuggingFace HuggingFaceConfig
	Gemini      GeminiConfig
	RateLimit   RateLimitConfig
	Upload      UploadConfig
	Cache       CacheConfig
	DataDir     string
}

// HTTPServerConfig is the configuration for the HTTP server.
type HTTPServerConfig struct {
	Port int
	Mode string // gin mode: "release" or "debug"
}

// LoggerConfig is the configuration for the logger.
type LoggerConfig struct {
	Level    string
	Mode     string
	Encoding string
}

// HuggingFaceConfig is the configuration for the Hugging Face Inference API.
type HuggingFaceConfig struct {
	APIKey      string
	CaptionURL  string
	ClassifyURL string
	Timeout     int // in seconds
}

// GeminiConfig is the configuration for the Gemini fallback captioner.
// An empty API key disables the fallback tier.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// RateLimitConfig is the configuration for the per-IP token bucket.
type RateLimitConfig struct {
	Rate       float64
	BucketSize float64
}

// UploadConfig bounds incoming images.
type UploadConfig struct {
	MaxSizeMB int
}

// CacheConfig is the configuration for the inference result cache.
type CacheConfig struct {
	TTLMinutes int
	MaxEntries int
}

// Load loads configuration using Viper.
func Load() (*Config, error) {
	viper.SetConfigName("analyzer-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional; env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")

	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")

	cfg.HuggingFace.APIKey = viper.GetString("huggingface.api_key")
	cfg.HuggingFace.CaptionURL = viper.GetString("huggingface.caption_url")
	cfg.HuggingFace.ClassifyURL = viper.GetString("huggingface.classify_url")
	cfg.HuggingFace.Timeout = viper.GetInt("huggingface.timeout")

	cfg.Gemini.APIKey = viper.GetString("gemini.api_key")
	cfg.Gemini.Model = viper.GetString("gemini.model")

	cfg.RateLimit.Rate = viper.GetFloat64("rate_limit.rate")
	cfg.RateLimit.BucketSize = viper.GetFloat64("rate_limit.bucket_size")

	cfg.Upload.MaxSizeMB = viper.GetInt("upload.max_size_mb")

	cfg.Cache.TTLMinutes = viper.GetInt("cache.ttl_minutes")
	cfg.Cache.MaxEntries = viper.GetInt("cache.max_entries")

	cfg.DataDir = viper.GetString("data_dir")

	if cfg.HuggingFace.APIKey == "" {
		return nil, fmt.Errorf("huggingface API key not configured (set HUGGINGFACE_API_KEY)")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("http_server.port", 8082)
	viper.SetDefault("http_server.mode", "release")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.mode", "production")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("huggingface.timeout", 20)

	viper.SetDefault("gemini.model", "gemini-1.5-flash")

	viper.SetDefault("rate_limit.rate", 2)
	viper.SetDefault("rate_limit.bucket_size", 5)

	viper.SetDefault("upload.max_size_mb", 15)

	viper.SetDefault("cache.ttl_minutes", 30)
	viper.SetDefault("cache.max_entries", 1000)

	viper.SetDefault("data_dir", "./data")
}
