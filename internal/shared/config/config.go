package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	GeminiAPIKey   string
	LLMModel       string
	LLMTransport   string
	LLMBaseURL     string
	LLMTemperature float32
	LLMTimeoutSecs int

	UploadStore    string
	UploadDir      string
	MaxUploadBytes int64
	AWSRegion      string
	S3Bucket       string
	S3Prefix       string
	SSEKMSKeyID    string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory (or cmd/) is read when present; real
// environment variables take precedence over it.
func Load() Config {
	v := viper.New()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("LLM_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM_TRANSPORT", "sdk")
	v.SetDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("LLM_TEMPERATURE", 0.1)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 0)
	v.SetDefault("UPLOAD_STORE", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 20<<20)

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("cmd")
	_ = v.ReadInConfig()

	return Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		GeminiAPIKey:    strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		LLMModel:        strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMTransport:    normalizeTransport(v.GetString("LLM_TRANSPORT")),
		LLMBaseURL:      strings.TrimRight(strings.TrimSpace(v.GetString("LLM_BASE_URL")), "/"),
		LLMTemperature:  float32(v.GetFloat64("LLM_TEMPERATURE")),
		LLMTimeoutSecs:  v.GetInt("LLM_TIMEOUT_SECONDS"),
		UploadStore:     normalizeStoreType(v.GetString("UPLOAD_STORE")),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
	}
}

// Validate reports missing settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.LLMModel == "" {
		errs = append(errs, errors.New("LLM_MODEL is required"))
	}
	if c.UploadStore == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("UPLOAD_STORE=s3 requires S3_BUCKET"))
	}
	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeTransport(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rest", "http":
		return "rest"
	default:
		return "sdk"
	}
}
