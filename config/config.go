package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the full runtime configuration of the service.
type Settings struct {
	Port   string
	AppURL string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret string
	TokenTTL  time.Duration

	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OCRFailurePolicy string
	OCRConcurrency   int
	OCRMaxDimension  int

	MaxUploadMB int

	LogLevel  string
	LogFormat string
}

// Load reads the .env file (if any) and the process environment.
// Variables already present in the environment take precedence over .env.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return fromEnv()
}

func fromEnv() (*Settings, error) {
	s := &Settings{
		Port:             getEnv("PORT", "3000"),
		AppURL:           getEnv("APP_URL", "http://localhost:3000"),
		DatabaseDriver:   strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		AIProvider:       strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OCRFailurePolicy: strings.ToLower(getEnv("OCR_FAILURE_POLICY", "abort")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	var err error
	if s.DatabaseURL, err = Config("DATABASE_URL"); err != nil {
		return nil, err
	}
	if s.JWTSecret, err = Config("JWT_SECRET"); err != nil {
		return nil, err
	}
	if s.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if s.OCRConcurrency, err = getInt("OCR_CONCURRENCY", 1); err != nil {
		return nil, err
	}
	if s.OCRMaxDimension, err = getInt("OCR_MAX_DIMENSION", 4000); err != nil {
		return nil, err
	}
	if s.MaxUploadMB, err = getInt("MAX_UPLOAD_MB", 20); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch s.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", s.DatabaseDriver)
	}

	switch s.AIProvider {
	case "gemini":
		if s.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
	case "openai":
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER: %s", s.AIProvider)
	}

	switch s.OCRFailurePolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("unsupported OCR_FAILURE_POLICY: %s", s.OCRFailurePolicy)
	}

	if s.OCRConcurrency < 1 {
		return fmt.Errorf("OCR_CONCURRENCY must be at least 1")
	}
	if s.OCRMaxDimension < 0 {
		return fmt.Errorf("OCR_MAX_DIMENSION must not be negative")
	}
	if s.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s *Settings) Addr() string {
	return ":" + s.Port
}

// Config returns the value of a required environment variable.
func Config(envVar string) (string, error) {
	envVarValue := os.Getenv(envVar)
	if envVarValue == "" {
		return "", fmt.Errorf("%s not set", envVar)
	}

	return envVarValue, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", k)
	}
	return n, nil
}
