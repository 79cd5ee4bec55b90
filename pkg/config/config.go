package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultTokenSecret signs session tokens when none is configured. It is
	// refused in production.
	DefaultTokenSecret = "dev_session_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Audit      AuditConfig
	Sessions   SessionConfig
	Normalizer NormalizerConfig
	Fixtures   FixtureConfig
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuditConfig points at the remote audit service and tunes how calls to it run.
type AuditConfig struct {
	BaseURL      string
	Timeout      time.Duration
	Workers      int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SessionConfig governs session tokens and idle session expiry.
type SessionConfig struct {
	TokenSecret     string
	TokenTTL        time.Duration
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// NormalizerConfig sets the import normalisation policy.
type NormalizerConfig struct {
	EnforceFailingCredit bool
}

// FixtureConfig locates the sample transcript. An empty path uses the bundled one.
type FixtureConfig struct {
	SampleTranscriptPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	workers := v.GetInt("AUDIT_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	cfg.Audit = AuditConfig{
		BaseURL:      strings.TrimRight(v.GetString("AUDIT_BASE_URL"), "/"),
		Timeout:      parseDuration(v.GetString("AUDIT_TIMEOUT"), time.Hour),
		Workers:      workers,
		CacheEnabled: v.GetBool("ENABLE_AUDIT_CACHE"),
		CacheTTL:     parseDuration(v.GetString("AUDIT_CACHE_TTL"), 30*time.Minute),
	}

	cfg.Sessions = SessionConfig{
		TokenSecret:     v.GetString("SESSION_TOKEN_SECRET"),
		TokenTTL:        parseDuration(v.GetString("SESSION_TOKEN_TTL"), 12*time.Hour),
		IdleTTL:         parseDuration(v.GetString("SESSION_TTL"), 2*time.Hour),
		CleanupInterval: parseDuration(v.GetString("SESSION_CLEANUP_INTERVAL"), 10*time.Minute),
	}

	cfg.Normalizer = NormalizerConfig{
		EnforceFailingCredit: v.GetBool("NORMALIZER_ENFORCE_FAILING_CREDIT"),
	}

	cfg.Fixtures = FixtureConfig{
		SampleTranscriptPath: v.GetString("SAMPLE_TRANSCRIPT_PATH"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AUDIT_BASE_URL", "http://localhost:8000")
	v.SetDefault("AUDIT_TIMEOUT", "1h")
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("ENABLE_AUDIT_CACHE", false)
	v.SetDefault("AUDIT_CACHE_TTL", "30m")

	v.SetDefault("SESSION_TOKEN_SECRET", DefaultTokenSecret)
	v.SetDefault("SESSION_TOKEN_TTL", "12h")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("SESSION_CLEANUP_INTERVAL", "10m")

	v.SetDefault("NORMALIZER_ENFORCE_FAILING_CREDIT", true)
	v.SetDefault("SAMPLE_TRANSCRIPT_PATH", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
