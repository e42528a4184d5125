package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory         = "memory"
	BackendPostgres       = "postgres"
	BackendPostgresDirect = "postgres_direct"
	BackendGorm           = "gorm"
)

type Config struct {
	Env        string
	LogLevel   string
	HTTPServer HTTPServer
	GRPCServer GRPCServer
	Database   Database
	Storage    Storage
	Prometheus Prometheus
	Redis      Redis
}

type HTTPServer struct {
	Address      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCServer struct {
	Enabled bool
	Address string
	Port    int
}

type Database struct {
	Host              string
	Port              string
	Name              string
	Username          string
	Password          string
	ConnectTimeout    int
	SSLMode           string
	URL               string
	ApplicationName   string
	MigrationsEnabled bool
	Pool              Pool
}

// Pool mirrors the pooled engine options: Size connections are kept warm and
// up to MaxOverflow more may be opened under load.
type Pool struct {
	Size        int
	MaxOverflow int
	Timeout     time.Duration
	Recycle     time.Duration
	PrePing     bool
}

type Storage struct {
	Backend string
}

type Prometheus struct {
	Address string
	Port    int
}

type Redis struct {
	Enabled  bool
	Address  string
	Port     int
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL assembled from
// the individual connection parameters.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	query := url.Values{}
	if d.SSLMode != "" {
		query.Set("sslmode", d.SSLMode)
	}
	if d.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(d.ConnectTimeout))
	}
	if d.ApplicationName != "" {
		query.Set("application_name", d.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Printf("Error loading config: %s", err)
		os.Exit(1)
	}
	return cfg
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),
		HTTPServer: HTTPServer{
			Address:      v.GetString("http_server.address"),
			Port:         v.GetInt("http_server.port"),
			ReadTimeout:  v.GetDuration("http_server.read_timeout"),
			WriteTimeout: v.GetDuration("http_server.write_timeout"),
			IdleTimeout:  v.GetDuration("http_server.idle_timeout"),
		},
		GRPCServer: GRPCServer{
			Enabled: v.GetBool("grpc_server.enabled"),
			Address: v.GetString("grpc_server.address"),
			Port:    v.GetInt("grpc_server.port"),
		},
		Database: Database{
			Host:              v.GetString("database.host"),
			Port:              v.GetString("database.port"),
			Name:              v.GetString("database.name"),
			Username:          v.GetString("database.username"),
			Password:          v.GetString("database.password"),
			ConnectTimeout:    v.GetInt("database.connect_timeout"),
			SSLMode:           v.GetString("database.ssl_mode"),
			URL:               v.GetString("database.url"),
			ApplicationName:   v.GetString("database.application_name"),
			MigrationsEnabled: v.GetBool("database.migrations_enabled"),
			Pool: Pool{
				Size:        v.GetInt("database.pool.size"),
				MaxOverflow: v.GetInt("database.pool.max_overflow"),
				Timeout:     v.GetDuration("database.pool.timeout"),
				Recycle:     v.GetDuration("database.pool.recycle"),
				PrePing:     v.GetBool("database.pool.pre_ping"),
			},
		},
		Storage: Storage{
			Backend: v.GetString("storage.backend"),
		},
		Prometheus: Prometheus{
			Address: v.GetString("prometheus.address"),
			Port:    v.GetInt("prometheus.port"),
		},
		Redis: Redis{
			Enabled:  v.GetBool("redis.enabled"),
			Address:  v.GetString("redis.address"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			PoolSize: v.GetInt("redis.pool_size"),
			TTL:      v.GetDuration("redis.ttl"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres, BackendPostgresDirect, BackendGorm:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Database.Pool.Size < 1 {
		return fmt.Errorf("database pool size must be positive, got %d", c.Database.Pool.Size)
	}
	if c.Database.Pool.MaxOverflow < 0 {
		return fmt.Errorf("database pool max overflow must not be negative, got %d", c.Database.Pool.MaxOverflow)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "")

	v.SetDefault("http_server.address", "0.0.0.0")
	v.SetDefault("http_server.port", 8000)
	v.SetDefault("http_server.read_timeout", 10*time.Second)
	v.SetDefault("http_server.write_timeout", 30*time.Second)
	v.SetDefault("http_server.idle_timeout", time.Minute)

	v.SetDefault("grpc_server.enabled", true)
	v.SetDefault("grpc_server.address", "0.0.0.0")
	v.SetDefault("grpc_server.port", 50053)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "fastapi")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.connect_timeout", 10)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.url", "")
	v.SetDefault("database.application_name", "marites-social-app")
	v.SetDefault("database.migrations_enabled", true)
	v.SetDefault("database.pool.size", 10)
	v.SetDefault("database.pool.max_overflow", 20)
	v.SetDefault("database.pool.timeout", 30*time.Second)
	v.SetDefault("database.pool.recycle", 30*time.Minute)
	v.SetDefault("database.pool.pre_ping", true)

	v.SetDefault("storage.backend", BackendMemory)

	v.SetDefault("prometheus.address", "0.0.0.0")
	v.SetDefault("prometheus.port", 9103)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", 30*time.Minute)
}

var envBindings = map[string]string{
	"env":                         "APP_ENV",
	"log_level":                   "LOG_LEVEL",
	"http_server.address":         "HTTP_ADDRESS",
	"http_server.port":            "HTTP_PORT",
	"grpc_server.enabled":         "GRPC_ENABLED",
	"grpc_server.port":            "GRPC_PORT",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.name":               "DB_NAME",
	"database.username":           "DB_USERNAME",
	"database.password":           "DB_PASSWORD",
	"database.connect_timeout":    "CONNECT_TIMEOUT",
	"database.ssl_mode":           "SSL_MODE",
	"database.url":                "DATABASE_URL",
	"database.migrations_enabled": "DB_MIGRATIONS_ENABLED",
	"database.pool.size":          "DB_POOL_SIZE",
	"database.pool.max_overflow":  "DB_POOL_MAX_OVERFLOW",
	"database.pool.timeout":       "DB_POOL_TIMEOUT",
	"database.pool.recycle":       "DB_POOL_RECYCLE",
	"database.pool.pre_ping":      "DB_POOL_PRE_PING",
	"storage.backend":             "STORAGE_BACKEND",
	"prometheus.port":             "METRICS_PORT",
	"redis.enabled":               "REDIS_ENABLED",
	"redis.address":               "REDIS_ADDRESS",
	"redis.port":                  "REDIS_PORT",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"redis.ttl":                   "REDIS_TTL",
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}
