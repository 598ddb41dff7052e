package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	LLM      LLMConfig
	Face     FaceConfig
	TTS      TTSConfig
	Storage  StorageConfig
	Static   StaticConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	Temperature      float64
	MaxRetries       int
}

type FaceConfig struct {
	APIURL    string
	Tolerance float64
}

type TTSConfig struct {
	APIKey   string
	VoiceID  string
	WSURL    string // optional override for the upstream websocket URL
	HTTPBase string
}

type StorageConfig struct {
	ResumeDir string
}

type StaticConfig struct {
	PublicDir  string
	ModelsDir  string
	ModulesDir string
	BuildDir   string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionHours, err := getEnvInt("SESSION_TTL_HOURS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	tolerance, err := getEnvFloat("FACE_TOLERANCE", 0.6)
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_TOLERANCE: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			Secret: getEnv("SECRET_KEY", ""),
			TTL:    time.Duration(sessionHours) * time.Hour,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-3.5-turbo"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			Temperature:      temperature,
			MaxRetries:       maxRetries,
		},
		Face: FaceConfig{
			APIURL:    getEnv("FACE_API_URL", "http://localhost:8200"),
			Tolerance: tolerance,
		},
		TTS: TTSConfig{
			APIKey:   getEnv("ELEVENLABS_API_KEY", ""),
			VoiceID:  getEnv("VOICE_ID", ""),
			WSURL:    getEnv("TTS_WS_URL", ""),
			HTTPBase: getEnv("TTS_HTTP_BASE", "https://api.elevenlabs.io"),
		},
		Storage: StorageConfig{
			ResumeDir: getEnv("RESUME_DIR", "resumes"),
		},
		Static: StaticConfig{
			PublicDir:  getEnv("PUBLIC_DIR", "public"),
			ModelsDir:  getEnv("MODELS_DIR", "public/models"),
			ModulesDir: getEnv("MODULES_DIR", "public/modules"),
			BuildDir:   getEnv("BUILD_DIR", "build"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports the env vars the server cannot run without. TTS
// credentials are deliberately absent: a missing key degrades the bridge
// endpoint instead of preventing startup.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if c.LLM.OpenAIKey == "" && c.LLM.AnthropicKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
