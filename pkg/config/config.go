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
)

// Club sources supported by the directory loader.
const (
	SourceSeed     = "seed"
	SourcePostgres = "postgres"
)

// Preference backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Directory   DirectoryConfig
	Preferences PreferencesConfig
	Jobs        JobsConfig
	Export      ExportConfig
	Metrics     MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
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

// DirectoryConfig tunes the club directory and its interactive sessions.
type DirectoryConfig struct {
	Source             string
	SeedFile           string
	PageSize           int
	SearchDebounce     time.Duration
	SessionIdleTTL     time.Duration
	SessionSweepPeriod time.Duration
	PopularLimit       int
}

// PreferencesConfig selects where per-client preferences (theme) are kept.
type PreferencesConfig struct {
	Backend      string
	KeyPrefix    string
	DefaultTheme string
}

// JobsConfig configures the join notification worker pool.
type JobsConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// ExportConfig controls directory exports.
type ExportConfig struct {
	PDFFontPath string
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool
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

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
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

	pageSize := v.GetInt("DIRECTORY_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 12
	}
	popular := v.GetInt("DIRECTORY_POPULAR_LIMIT")
	if popular <= 0 {
		popular = 4
	}
	cfg.Directory = DirectoryConfig{
		Source:             strings.ToLower(v.GetString("DIRECTORY_SOURCE")),
		SeedFile:           v.GetString("DIRECTORY_SEED_FILE"),
		PageSize:           pageSize,
		SearchDebounce:     parseDuration(v.GetString("DIRECTORY_SEARCH_DEBOUNCE"), 300*time.Millisecond),
		SessionIdleTTL:     parseDuration(v.GetString("DIRECTORY_SESSION_IDLE_TTL"), 30*time.Minute),
		SessionSweepPeriod: parseDuration(v.GetString("DIRECTORY_SESSION_SWEEP_INTERVAL"), time.Minute),
		PopularLimit:       popular,
	}

	cfg.Preferences = PreferencesConfig{
		Backend:      strings.ToLower(v.GetString("PREFERENCES_BACKEND")),
		KeyPrefix:    v.GetString("PREFERENCES_KEY_PREFIX"),
		DefaultTheme: v.GetString("THEME_DEFAULT"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOIN_WORKER_CONCURRENCY"),
		Retries:    v.GetInt("JOIN_WORKER_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOIN_WORKER_RETRY_DELAY"), time.Second),
	}

	cfg.Export = ExportConfig{PDFFontPath: v.GetString("EXPORT_PDF_FONT_PATH")}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DIRECTORY_SOURCE", SourceSeed)
	v.SetDefault("DIRECTORY_SEED_FILE", "")
	v.SetDefault("DIRECTORY_PAGE_SIZE", 12)
	v.SetDefault("DIRECTORY_SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("DIRECTORY_SESSION_IDLE_TTL", "30m")
	v.SetDefault("DIRECTORY_SESSION_SWEEP_INTERVAL", "1m")
	v.SetDefault("DIRECTORY_POPULAR_LIMIT", 4)

	v.SetDefault("PREFERENCES_BACKEND", BackendMemory)
	v.SetDefault("PREFERENCES_KEY_PREFIX", "dcu-theme-preference")
	v.SetDefault("THEME_DEFAULT", "dark")

	v.SetDefault("JOIN_WORKER_CONCURRENCY", 1)
	v.SetDefault("JOIN_WORKER_RETRIES", 3)
	v.SetDefault("JOIN_WORKER_RETRY_DELAY", "1s")

	v.SetDefault("EXPORT_PDF_FONT_PATH", "")
	v.SetDefault("ENABLE_METRICS", true)
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
