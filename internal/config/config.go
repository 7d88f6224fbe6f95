// Package config reads service settings from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendS3       = "s3"
)

// Config is the full service configuration.
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SiteURL     string
	StaticDir   string
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	AdminAuthFile string

	CatalogKey  string
	CatalogSeed bool

	Storage StorageConfig
}

// StorageConfig selects and configures the catalog persistence backend.
type StorageConfig struct {
	Backend  string
	DataDir  string
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	S3       S3Config
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// S3Config holds the bucket the catalog is stored in.
type S3Config struct {
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string
}

// Load reads the configuration. Missing variables fall back to
// local-development defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		SiteURL:         strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		StaticDir:       getEnv("STATIC_DIR", "./web"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		AdminAuthFile:   getEnv("ADMIN_AUTH_FILE", "auth.secret"),
		CatalogKey:      getEnv("CATALOG_KEY", "vsa-events"),
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendFile),
			DataDir: getEnv("DATA_DIR", "./data"),
			Postgres: PostgresConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				DBName:   getEnv("DB_NAME", "vsa"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
			Redis: RedisConfig{
				Addr:      getEnv("REDIS_URL", "localhost:6379"),
				Password:  os.Getenv("REDIS_PASSWORD"),
				KeyPrefix: getEnv("REDIS_KEY_PREFIX", "vsa:"),
			},
			Mongo: MongoConfig{
				URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
				Database:   getEnv("MONGO_DATABASE", "vsa"),
				Collection: getEnv("MONGO_COLLECTION", "kv_store"),
			},
			S3: S3Config{
				Region:   getEnv("AWS_REGION", "us-east-1"),
				Bucket:   os.Getenv("S3_BUCKET"),
				Prefix:   getEnv("S3_PREFIX", "catalog/"),
				Endpoint: os.Getenv("S3_ENDPOINT"),
			},
		},
	}

	var err error
	if cfg.ReadTimeout, err = getDuration("READ_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getDuration("WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdleTimeout, err = getDuration("IDLE_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CatalogSeed, err = getBool("CATALOG_SEED", false); err != nil {
		return Config{}, err
	}
	if cfg.Storage.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendFile, BackendPostgres, BackendRedis, BackendMongo:
	case BackendS3:
		if cfg.Storage.S3.Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
