package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the inventory API and the stats worker.
// Both binaries read the same keys; each uses the sections it needs.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Dispatcher DispatcherConfig
	Stats      StatsConfig
	Worker     WorkerConfig
	Location   *time.Location
	LogLevel   string
	Logstash   string
}

// ServerConfig - HTTP API listener
type ServerConfig struct {
	Host string // default 0.0.0.0
	Port string // default 5000
}

// MongoDBConfig - document store holding products, activity logs and the stats snapshot
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig - brand list cache
type RedisConfig struct {
	Host      string
	Port      string
	Password  string        // optional
	DB        int           // 0-15
	BrandsTTL time.Duration // brand list expiry, 5 minutes by default
}

// KafkaConfig - product_events topic, produced by the API and consumed by the worker
type KafkaConfig struct {
	Brokers  []string // host:port, comma separated in KAFKA_BROKERS
	Topic    string
	GroupID  string // worker consumer group
	MinBytes int
	MaxBytes int
}

// JWTConfig - bearer token verification; tokens are issued by the auth service
type JWTConfig struct {
	Secret     string
	AdminRoles []string // role_name values allowed on admin-only routes
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DispatcherConfig - background task pool
type DispatcherConfig struct {
	Workers   int // goroutines draining the queue
	QueueSize int // pending tasks before Dispatch starts dropping
}

// StatsConfig - dashboard snapshot repair
type StatsConfig struct {
	CronSchedule string        // 6-field cron expression (with seconds)
	StaleAfter   time.Duration // snapshot age reported as degraded by the worker health check
}

type WorkerConfig struct {
	HealthAddr string // health and metrics listener of the worker binary
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments pass plain environment variables
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	brandsTTL, err := getEnvDuration("BRANDS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	staleAfter, err := getEnvDuration("STATS_STALE_AFTER", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE value: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "5000"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "inventory"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			BrandsTTL: brandsTTL,
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:    getEnv("KAFKA_TOPIC", "product_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "inventory-stats-worker"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AdminRoles: splitList(getEnv("ADMIN_ROLES", "admin")),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Dispatcher: DispatcherConfig{
			Workers:   getEnvInt("DISPATCHER_WORKERS", 4),
			QueueSize: getEnvInt("DISPATCHER_QUEUE_SIZE", 256),
		},
		Stats: StatsConfig{
			// every 10 minutes
			CronSchedule: getEnv("STATS_CRON_SCHEDULE", "0 */10 * * * *"),
			StaleAfter:   staleAfter,
		},
		Worker: WorkerConfig{
			HealthAddr: getEnv("WORKER_HEALTH_ADDR", ":8085"),
		},
		Location: loc,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Logstash: getEnv("LOGSTASH_ADDR", ""),
	}

	if cfg.Dispatcher.Workers < 1 {
		return nil, fmt.Errorf("DISPATCHER_WORKERS must be positive, got %d", cfg.Dispatcher.Workers)
	}
	if cfg.Dispatcher.QueueSize < 1 {
		return nil, fmt.Errorf("DISPATCHER_QUEUE_SIZE must be positive, got %d", cfg.Dispatcher.QueueSize)
	}

	return cfg, nil
}

// Address returns host:port for the HTTP server
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address returns host:port for the Redis client
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "5m").
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
