package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the CVForge server. It is built once at
// process start and passed by reference into each stage; nothing re-reads the
// environment per request.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Blob     BlobConfig
	Upload   UploadConfig
	AI       AIConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// BlobConfig points at the S3-compatible object store holding all pipeline
// artifacts.
type BlobConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

type UploadConfig struct {
	// MaxCVBytes caps the size of an uploaded CV. The frontend advertises a
	// smaller advisory limit; this one is enforced server-side.
	MaxCVBytes int64
}

type AIConfig struct {
	Standard         VariantConfig
	FineTuned        VariantConfig
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
}

// VariantConfig binds a generation variant to a provider and an optional
// model override.
type VariantConfig struct {
	Provider string
	Model    string
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	EmbedModel string
}

type OllamaConfig struct {
	BaseURL    string
	Model      string
	EmbedModel string
}

type CORSConfig struct {
	AllowedOrigins []string
}

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("CVFORGE_PORT", 8080),
			Env:             envString("CVFORGE_ENV", "development"),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Blob: BlobConfig{
			Endpoint:  os.Getenv("BLOB_ENDPOINT"),
			AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
			SecretKey: os.Getenv("BLOB_SECRET_KEY"),
			Bucket:    envString("BLOB_BUCKET", "uploads"),
			UseSSL:    envBool("BLOB_USE_SSL", false),
			URLExpiry: envDuration("BLOB_URL_EXPIRY", 1*time.Hour),
		},
		Upload: UploadConfig{
			MaxCVBytes: envInt64("UPLOAD_MAX_CV_BYTES", 10<<20),
		},
		AI: AIConfig{
			Standard: VariantConfig{
				Provider: os.Getenv("AI_STANDARD_PROVIDER"),
				Model:    os.Getenv("AI_STANDARD_MODEL"),
			},
			FineTuned: VariantConfig{
				Provider: os.Getenv("AI_FINETUNED_PROVIDER"),
				Model:    os.Getenv("AI_FINETUNED_MODEL"),
			},
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:     os.Getenv("OPENAI_API_KEY"),
				BaseURL:    envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:      envString("OPENAI_MODEL", "gpt-4o-mini"),
				EmbedModel: envString("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			},
			Ollama: OllamaConfig{
				BaseURL:    envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:      envString("OLLAMA_MODEL", "llama3"),
				EmbedModel: envString("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Blob.Endpoint == "" {
		return fmt.Errorf("BLOB_ENDPOINT is required")
	}
	if c.Blob.AccessKey == "" || c.Blob.SecretKey == "" {
		return fmt.Errorf("BLOB_ACCESS_KEY and BLOB_SECRET_KEY are required")
	}

	if c.Upload.MaxCVBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_CV_BYTES must be positive, got %d", c.Upload.MaxCVBytes)
	}

	for name, vc := range map[string]VariantConfig{
		"AI_STANDARD_PROVIDER":  c.AI.Standard,
		"AI_FINETUNED_PROVIDER": c.AI.FineTuned,
	} {
		if vc.Provider == "" {
			return fmt.Errorf("%s is required", name)
		}
		if !validProviders[vc.Provider] {
			return fmt.Errorf("%s must be one of openai, ollama, mock; got %q", name, vc.Provider)
		}
		if vc.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when %s is openai", name)
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
