package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

// ServerConfig configures the relay.
type ServerConfig struct {
	Provider       string        `env:"GATEWAY_PROVIDER" envDefault:"huggingface"`
	HFToken        string        `env:"HF_TOKEN"`
	HFAPIURL       string        `env:"HF_API_URL"       envDefault:"https://router.huggingface.co/hf-inference/models/facebook/bart-large-cnn"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	Port           int           `env:"PORT"             envDefault:"3000"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT"  envDefault:"120s"`
}

// ClientConfig configures the summarize, history and shell commands.
type ClientConfig struct {
	RelayURL            string        `env:"RELAY_URL"            envDefault:"http://localhost:3000"`
	RelayTimeout        time.Duration `env:"RELAY_TIMEOUT"        envDefault:"150s"`
	DBPath              string        `env:"DB_PATH"              envDefault:"history.sqlite"`
	FirestoreProjectID  string        `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCollection string        `env:"FIRESTORE_COLLECTION" envDefault:"summaries"`
	MirrorTimeout       time.Duration `env:"MIRROR_TIMEOUT"       envDefault:"10s"`
	MirrorSyncSpec      string        `env:"MIRROR_SYNC_SPEC"     envDefault:"@every 15m"`
	WarmupRetries       int           `env:"WARMUP_RETRIES"       envDefault:"0"`
}

func LoadServerConfig() (ServerConfig, error) {
	cfg, err := env.ParseAs[ServerConfig]()
	if err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.HFToken = strings.TrimSpace(cfg.HFToken)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)

	if err = cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

func (c ServerConfig) Validate() error {
	switch c.Provider {
	case ProviderHuggingFace:
		if c.HFToken == "" {
			return fmt.Errorf("HF_TOKEN is required for gateway provider %q", c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for gateway provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unsupported gateway provider %q (supported: %s, %s)",
			c.Provider, ProviderHuggingFace, ProviderOpenAI)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	}

	return nil
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func LoadClientConfig() (ClientConfig, error) {
	cfg, err := env.ParseAs[ClientConfig]()
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.FirestoreProjectID = strings.TrimSpace(cfg.FirestoreProjectID)

	if cfg.WarmupRetries < 0 {
		return ClientConfig{}, fmt.Errorf("WARMUP_RETRIES must not be negative, got %d", cfg.WarmupRetries)
	}

	return cfg, nil
}

func (c ClientConfig) MirrorEnabled() bool {
	return c.FirestoreProjectID != ""
}
