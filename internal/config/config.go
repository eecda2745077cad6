package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"development"`

	// MongoDB. The database name is taken from the URI path and defaults
	// to ollama_chat when the path is empty.
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/ollama_chat"`

	// Inference backend: ollama, openai or gemini.
	Provider     string `env:"PROVIDER" envDefault:"ollama"`
	DefaultModel string `env:"DEFAULT_MODEL" envDefault:"mistral"`

	OllamaURL    string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// InferenceTimeout bounds a single generation request.
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"120s"`

	// Chat endpoint rate limit, requests per minute per IP.
	ChatRateLimit int `env:"CHAT_RATE_LIMIT" envDefault:"20"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	switch cfg.Provider {
	case "ollama":
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown PROVIDER %q (expected ollama, openai or gemini)", cfg.Provider)
	}

	return cfg, nil
}
