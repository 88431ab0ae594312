package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "dev_secret"
	// DefaultMaterialsSecret signs download tokens in development only.
	DefaultMaterialsSecret = "dev_materials_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Dashboard     DashboardConfig
	Achievements  AchievementsConfig
	Materials     MaterialsConfig
	Observability ObservabilityConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// KeyPrefix namespaces every cache key so several deployments can share one Redis.
	KeyPrefix string
	PoolSize  int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard access and cache tuning.
type DashboardConfig struct {
	CacheTTL         time.Duration
	EnforceOwnership bool
}

// AchievementsConfig controls how achievement checks are dispatched.
type AchievementsConfig struct {
	Async   bool
	Workers int
	// Attempts is how many times a failed check runs; 1 disables retries.
	Attempts int
}

// MaterialsConfig controls course material storage & validation.
type MaterialsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ObservabilityConfig toggles metrics and API docs exposure.
type ObservabilityConfig struct {
	MetricsEnabled bool
	DocsEnabled    bool
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:   v.GetBool("REDIS_ENABLED"),
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		PoolSize:  v.GetInt("REDIS_POOL_SIZE"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:         parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		EnforceOwnership: v.GetBool("DASHBOARD_ENFORCE_OWNERSHIP"),
	}

	cfg.Achievements = AchievementsConfig{
		Async:    v.GetBool("ACHIEVEMENTS_ASYNC"),
		Workers:  v.GetInt("ACHIEVEMENT_WORKERS"),
		Attempts: v.GetInt("ACHIEVEMENT_ATTEMPTS"),
	}

	maxMaterialSize := v.GetInt64("MATERIALS_MAX_FILE_SIZE")
	if maxMaterialSize <= 0 {
		maxMaterialSize = 20 * 1024 * 1024
	}
	cfg.Materials = MaterialsConfig{
		StorageDir:       v.GetString("MATERIALS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("MATERIALS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("MATERIALS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxMaterialSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("MATERIALS_ALLOWED_MIME_TYPES")),
	}

	docsDefault := cfg.Env != EnvProduction
	if v.IsSet("ENABLE_DOCS") {
		docsDefault = v.GetBool("ENABLE_DOCS")
	}
	cfg.Observability = ObservabilityConfig{
		MetricsEnabled: v.GetBool("ENABLE_METRICS"),
		DocsEnabled:    docsDefault,
	}

	return cfg
}

// InsecureDefaults reports whether production is running on development fallbacks.
func (c *Config) InsecureDefaults() bool {
	return c.Env == EnvProduction && c.JWT.Secret == DefaultJWTSecret
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []error
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		problems = append(problems, fmt.Errorf("API_PREFIX %q must start with /", c.APIPrefix))
	}
	if c.JWT.Secret == "" {
		problems = append(problems, errors.New("JWT_SECRET is empty"))
	}
	if c.JWT.Expiration <= 0 {
		problems = append(problems, errors.New("JWT_EXPIRATION must be positive"))
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		problems = append(problems, errors.New("REDIS_HOST is required when REDIS_ENABLED"))
	}
	if c.Achievements.Async && c.Achievements.Workers < 1 {
		problems = append(problems, errors.New("ACHIEVEMENT_WORKERS must be at least 1 when ACHIEVEMENTS_ASYNC"))
	}
	if c.Achievements.Attempts < 1 {
		problems = append(problems, errors.New("ACHIEVEMENT_ATTEMPTS must be at least 1"))
	}
	if c.Materials.StorageDir == "" {
		problems = append(problems, errors.New("MATERIALS_STORAGE_DIR is empty"))
	}
	if c.Env == EnvProduction && c.Materials.SignedURLSecret == DefaultMaterialsSecret {
		problems = append(problems, errors.New("MATERIALS_SIGNED_URL_SECRET must be set in production"))
	}
	return errors.Join(problems...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "innouni")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "innouni:")
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "innouni-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_ENFORCE_OWNERSHIP", true)

	v.SetDefault("ACHIEVEMENTS_ASYNC", true)
	v.SetDefault("ACHIEVEMENT_WORKERS", 2)
	v.SetDefault("ACHIEVEMENT_ATTEMPTS", 1)

	v.SetDefault("MATERIALS_STORAGE_DIR", "./materials")
	v.SetDefault("MATERIALS_SIGNED_URL_SECRET", DefaultMaterialsSecret)
	v.SetDefault("MATERIALS_SIGNED_URL_TTL", "30m")
	v.SetDefault("MATERIALS_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("MATERIALS_ALLOWED_MIME_TYPES", "application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.openxmlformats-officedocument.presentationml.presentation,application/zip,image/png,image/jpeg,video/mp4,audio/mpeg")

	v.SetDefault("ENABLE_METRICS", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
