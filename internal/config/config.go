package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const envPrefix = "CINEMATHEQUE"

type HTTPServer struct {
	Host  string  `default:"localhost"`
	Port  string  `default:"8080"`
	Rate  float64 `default:"5"`
	Burst int     `default:"10"`
}

type Gemini struct {
	// Falls back to the bare API_KEY variable when the prefixed one is unset.
	APIKey          string `envconfig:"API_KEY"`
	BaseURL         string `split_words:"true" default:"https://generativelanguage.googleapis.com"`
	Model           string `default:"gemini-3-flash-preview"`
	SearchGrounding bool   `split_words:"true" default:"true"`
	Language        string `default:"Arabic"`
}

type Storage struct {
	Backend string `default:"file"`
	Dir     string `default:".cinematheque"`
	Key     string `default:"cinematique_watchlist_v2"`
}

type RedisCache struct {
	Enabled  bool          `default:"false"`
	Host     string        `default:"localhost"`
	Port     string        `default:"6379"`
	Password string
	TTL      time.Duration `default:"24h"`
}

type Enrichment struct {
	LenientTransport bool `split_words:"true" default:"false"`
}

type Log struct {
	Level  string `default:"info"`
	Pretty bool   `default:"false"`
}

type Config struct {
	HTTP       HTTPServer `envconfig:"HTTP"`
	Gemini     Gemini     `envconfig:"GEMINI"`
	Storage    Storage    `envconfig:"STORAGE"`
	Redis      RedisCache `envconfig:"REDIS"`
	Enrichment Enrichment `envconfig:"ENRICH"`
	Log        Log        `envconfig:"LOG"`
}

// Load reads envFile (or ./.env when empty) into the process
// environment and resolves the configuration from it. A missing
// ./.env is not an error; a missing explicit envFile is.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env from %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("env_file", envFile).
		Str("http_port", cfg.HTTP.Port).
		Str("storage_backend", cfg.Storage.Backend).
		Str("storage_key", cfg.Storage.Key).
		Str("model", cfg.Gemini.Model).
		Str("language", cfg.Gemini.Language).
		Bool("api_key_present", cfg.Gemini.APIKey != "").
		Bool("redis_enabled", cfg.Redis.Enabled).
		Bool("lenient_transport", cfg.Enrichment.LenientTransport).
		Msg("config loaded")

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %s", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("STORAGE_KEY cannot be empty")
	}
	if c.HTTP.Rate <= 0 || c.HTTP.Burst <= 0 {
		return fmt.Errorf("HTTP_RATE and HTTP_BURST must be positive")
	}
	return nil
}
