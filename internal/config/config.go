package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Cache     CacheConfig     `json:"cache"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Environment     string        `json:"environment"`
	AllowedOrigins  []string      `json:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	SQLitePath      string        `json:"sqlite_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	MaxRetries   int           `json:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	Issuer    string        `json:"issuer"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	Backend         string        `json:"backend"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

type CacheConfig struct {
	Enabled            bool          `json:"enabled"`
	TTL                time.Duration `json:"ttl"`
	L1TTL              time.Duration `json:"l1_ttl"`
	BreakerMaxFailures int           `json:"breaker_max_failures"`
	BreakerTimeout     time.Duration `json:"breaker_timeout"`
}

// LoadConfig reads configuration from the environment. A .env file is loaded
// first when present, and CONFIG_FILE may name a file whose keys (lowercase
// env names) fill in anything the environment leaves unset.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file := viper.New()
		file.SetConfigFile(path)
		if err := file.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		src.file = file
	}

	return src.load()
}

func (s source) load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:            s.getEnv("HOST", "localhost"),
			Port:            s.getEnv("PORT", "8080"),
			ReadTimeout:     s.getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    s.getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     s.getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: s.getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			Environment:     s.getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  s.getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:          s.getEnv("DB_DRIVER", "postgres"),
			Host:            s.getEnv("DB_HOST", "localhost"),
			Port:            s.getEnv("DB_PORT", "5432"),
			User:            s.getEnv("DB_USER", "postgres"),
			Password:        s.getEnv("DB_PASSWORD", ""),
			Name:            s.getEnv("DB_NAME", "todo_manager"),
			SSLMode:         s.getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:      s.getEnv("DB_SQLITE_PATH", "todo_manager.db"),
			MaxOpenConns:    s.getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    s.getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: s.getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: s.getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:         s.getEnv("REDIS_HOST", "localhost"),
			Port:         s.getEnv("REDIS_PORT", "6379"),
			Password:     s.getEnv("REDIS_PASSWORD", ""),
			DB:           s.getEnvAsInt("REDIS_DB", 0),
			PoolSize:     s.getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: s.getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			MaxRetries:   s.getEnvAsInt("REDIS_MAX_RETRIES", 3),
			DialTimeout:  s.getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  s.getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: s.getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: s.getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:    s.getEnv("JWT_ISSUER", ""),
			TokenTTL:  s.getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:         s.getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Backend:         s.getEnv("RATE_LIMIT_BACKEND", "memory"),
			CleanupInterval: s.getEnvAsDuration("RATE_LIMIT_CLEANUP", 10*time.Minute),
		},
		Cache: CacheConfig{
			Enabled:            s.getEnvAsBool("CACHE_ENABLED", false),
			TTL:                s.getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			L1TTL:              s.getEnvAsDuration("CACHE_L1_TTL", 30*time.Second),
			BreakerMaxFailures: s.getEnvAsInt("CACHE_BREAKER_MAX_FAILURES", 5),
			BreakerTimeout:     s.getEnvAsDuration("CACHE_BREAKER_TIMEOUT", 30*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported rate limit backend %q", c.RateLimit.Backend)
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" && c.IsProduction() {
		return fmt.Errorf("database password is required in production")
	}

	if c.Auth.JWTSecret == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret must be set in production")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.Enabled || (c.RateLimit.Enabled && c.RateLimit.Backend == "redis")
}

// source resolves a key from the environment, then the optional config file.
type source struct {
	file *viper.Viper
}

func (s source) lookup(key string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	if s.file != nil {
		fileKey := strings.ToLower(key)
		if s.file.IsSet(fileKey) {
			if value := s.file.GetString(fileKey); value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func (s source) getEnv(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (s source) getEnvAsInt(key string, defaultValue int) int {
	if value, ok := s.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (s source) getEnvAsBool(key string, defaultValue bool) bool {
	if value, ok := s.lookup(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (s source) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := s.lookup(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (s source) getEnvAsList(key string, defaultValue []string) []string {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
