package config

import (
	"fmt"
	"log"
	"os"

	"github.com/alkime/voicememo/internal/memo"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"

	// Prefix is prepended to every environment variable name.
	Prefix = "MEMO"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Recorder settings. An empty RecordingsDir uses workdir.Recordings().
	RecordingsDir string `envconfig:"RECORDINGS_DIR"`
	StartPolicy   string `envconfig:"START_POLICY" default:"reject"`
	StoreMode     string `envconfig:"STORE_MODE" default:"many"`
	PlaybackScope string `envconfig:"PLAYBACK_SCOPE" default:"item"`
	SampleRate    int    `envconfig:"SAMPLE_RATE" default:"16000"`
}

// LoadConfig loads configuration from .env file and MEMO_ prefixed
// environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var config Config
	if err := envconfig.Process(Prefix, &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid %s_SAMPLE_RATE %d: must be positive", Prefix, config.SampleRate)
	}

	return &config, nil
}

// App returns the recorder behaviour selected by the config.
func (c *Config) App() (memo.Config, error) {
	policy, err := memo.ParseStartPolicy(c.StartPolicy)
	if err != nil {
		return memo.Config{}, err
	}

	mode, err := memo.ParseStoreMode(c.StoreMode)
	if err != nil {
		return memo.Config{}, err
	}

	scope, err := memo.ParsePlaybackScope(c.PlaybackScope)
	if err != nil {
		return memo.Config{}, err
	}

	return memo.Config{
		StartPolicy:   policy,
		StoreMode:     mode,
		PlaybackScope: scope,
	}, nil
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"media-src 'self'; " +
			"img-src 'self' data:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"media-src 'self' blob:; " +
		"img-src 'self' data:"
}
