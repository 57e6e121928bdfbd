package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Cache    CacheConfig
	Media    MediaConfig
	Random   RandomConfig
	Worker   WorkerConfig
	Notifier NotifierConfig
	Admin    AdminClientConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ProductReviewsTTL time.Duration
	StatsTTL          time.Duration
}

// MediaConfig holds settings for review media
type MediaConfig struct {
	// URLPrefix is prepended to stored image keys on admin reads
	URLPrefix string
}

// RandomConfig holds settings for the random reviews endpoint
type RandomConfig struct {
	// PoolLimit caps how many matching reviews are loaded before sampling
	PoolLimit int
}

// WorkerConfig holds stats worker configuration
type WorkerConfig struct {
	DebounceWindow time.Duration
	FetchBatch     int
}

// NotifierConfig holds moderation notifier settings. Notifier replicas sharing Queue
// split the event feed between them.
type NotifierConfig struct {
	ClientName string
	Queue      string
}

// AdminClientConfig holds settings for the admin CLI
type AdminClientConfig struct {
	BaseURL        string
	RequestsPerSec int
	Timeout        time.Duration
}

// Load reads configuration from environment variables (and an optional .env file)
func Load() (*Config, error) {
	// A missing .env is fine; the environment is the source of truth
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_PORT", "9000")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8000,http://localhost:9000")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "product_reviews")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("NATS_URL", "nats://localhost:4222")

	viper.SetDefault("CACHE_TTL_PRODUCT_REVIEWS", "120s")
	viper.SetDefault("CACHE_TTL_STATS", "300s")

	viper.SetDefault("MEDIA_URL_PREFIX", "")

	viper.SetDefault("RANDOM_POOL_LIMIT", 50)

	viper.SetDefault("WORKER_DEBOUNCE_WINDOW", "1s")
	viper.SetDefault("WORKER_FETCH_BATCH", 10)

	viper.SetDefault("NOTIFIER_CLIENT_NAME", "product-reviews-moderation-notifier")
	viper.SetDefault("NOTIFIER_QUEUE", "moderation-notifier")

	viper.SetDefault("ADMIN_API_URL", "http://localhost:9000")
	viper.SetDefault("ADMIN_API_RPS", 5)
	viper.SetDefault("ADMIN_API_TIMEOUT", "20s")

	readTimeout, err := parseDuration("SERVER_READ_TIMEOUT")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parseDuration("SERVER_WRITE_TIMEOUT")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := parseDuration("SERVER_REQUEST_TIMEOUT")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SERVER_SHUTDOWN_TIMEOUT")
	if err != nil {
		return nil, err
	}
	connMaxLifetime, err := parseDuration("DB_CONN_MAX_LIFETIME")
	if err != nil {
		return nil, err
	}
	productReviewsTTL, err := parseDuration("CACHE_TTL_PRODUCT_REVIEWS")
	if err != nil {
		return nil, err
	}
	statsTTL, err := parseDuration("CACHE_TTL_STATS")
	if err != nil {
		return nil, err
	}
	debounceWindow, err := parseDuration("WORKER_DEBOUNCE_WINDOW")
	if err != nil {
		return nil, err
	}
	adminTimeout, err := parseDuration("ADMIN_API_TIMEOUT")
	if err != nil {
		return nil, err
	}

	allowedOrigins := strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:      viper.GetString("ENV"),
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			RequestTimeout:  requestTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Cache: CacheConfig{
			ProductReviewsTTL: productReviewsTTL,
			StatsTTL:          statsTTL,
		},
		Media: MediaConfig{
			URLPrefix: viper.GetString("MEDIA_URL_PREFIX"),
		},
		Random: RandomConfig{
			PoolLimit: viper.GetInt("RANDOM_POOL_LIMIT"),
		},
		Worker: WorkerConfig{
			DebounceWindow: debounceWindow,
			FetchBatch:     viper.GetInt("WORKER_FETCH_BATCH"),
		},
		Notifier: NotifierConfig{
			ClientName: viper.GetString("NOTIFIER_CLIENT_NAME"),
			Queue:      viper.GetString("NOTIFIER_QUEUE"),
		},
		Admin: AdminClientConfig{
			BaseURL:        strings.TrimRight(viper.GetString("ADMIN_API_URL"), "/"),
			RequestsPerSec: viper.GetInt("ADMIN_API_RPS"),
			Timeout:        adminTimeout,
		},
	}

	return config, nil
}

func parseDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
