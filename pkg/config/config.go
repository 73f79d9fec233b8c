// Package config loads the TOML service configuration with environment
// variable overrides and schema validation.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the ledger service.
type Config struct {
	// Service name, used for logging and metric namespaces.
	ServiceName string `mapstructure:"service_name"`
	// Environment: dev, staging, prod.
	Environment string `mapstructure:"environment"`
	// HTTP server settings.
	HTTP HTTPConfig `mapstructure:"http"`
	// Relational store settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Redis settings (catalog read cache).
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka settings (notification fan-out).
	Kafka KafkaConfig `mapstructure:"kafka"`
	// Notification delivery settings.
	Notification NotificationConfig `mapstructure:"notification"`
	// Rate limiting settings (requires redis).
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	// Logger settings.
	Logger LoggerConfig `mapstructure:"logger"`
	// Metrics settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	// Driver currently supports mysql only.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Connection pool settings.
	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// SQL logging and slow query threshold (milliseconds).
	LogEnabled         bool `mapstructure:"log_enabled"`
	SlowQueryThreshold int  `mapstructure:"slow_query_threshold"`
}

// RedisConfig holds redis settings.
type RedisConfig struct {
	// Enabled toggles the catalog read cache; the service runs without it.
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxPoolSize  int    `mapstructure:"max_pool_size"`
	ConnTimeout  int    `mapstructure:"conn_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// KafkaConfig holds kafka producer settings.
type KafkaConfig struct {
	// Enabled toggles the kafka notification sender.
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	MaxRetries   int      `mapstructure:"max_retries"`
	RetryBackoff int      `mapstructure:"retry_backoff"`
}

// NotificationConfig holds push-channel settings. When kafka is disabled
// and a webhook URL is set, notifications post to the webhook; with
// neither, delivery is logged only.
type NotificationConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// RateLimitConfig holds per-client request limiting settings. The
// limiter only runs when redis is enabled as well.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Rate requests per period, with bursts up to burst.
	Rate   int `mapstructure:"rate"`
	Period int `mapstructure:"period"`
	Burst  int `mapstructure:"burst"`
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// MetricsConfig holds prometheus exposure settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load reads a TOML config file, applies APP_* environment overrides and
// defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "ledger.notifications")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.rate", 50)
	v.SetDefault("ratelimit.period", 1)
	v.SetDefault("ratelimit.burst", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/ledgerd.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
