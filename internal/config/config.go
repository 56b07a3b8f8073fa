package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Delivery       DeliveryConfig
	Registry       RegistryConfig
	Logging        LoggingConfig
	Authoring      AuthoringConfig
	CircuitBreaker CircuitBreakerConfig
	Tracing        TracingConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
	MongoDB  MongoDBConfig
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// DeliveryConfig configures the outbound event transport. An empty Endpoint is
// legal: the transport then skips every send instead of erroring.
type DeliveryConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Integration    string        `mapstructure:"integration"`
	TimeoutSeconds time.Duration `mapstructure:"timeout_seconds"`
}

// RegistryConfig declares the triggers and option types registered at
// startup. Option types name the backend their data comes from; triggers
// name the option types they resolve on every firing.
type RegistryConfig struct {
	Options  []OptionSourceConfig `mapstructure:"options"`
	Triggers []TriggerConfig      `mapstructure:"triggers"`
}

type OptionSourceConfig struct {
	ID     string `mapstructure:"id"`
	Source string `mapstructure:"source"`
	Global bool   `mapstructure:"global"`

	URL        string            `mapstructure:"url"`
	Method     string            `mapstructure:"method"`
	Headers    map[string]string `mapstructure:"headers"`
	RetryCount int               `mapstructure:"retry_count"`

	Database   string                 `mapstructure:"database"`
	Collection string                 `mapstructure:"collection"`
	Query      map[string]interface{} `mapstructure:"query"`
	Field      string                 `mapstructure:"field"`

	KeyPattern string `mapstructure:"key_pattern"`

	Declared []OptionFieldConfig `mapstructure:"declared"`
}

type OptionFieldConfig struct {
	Key         string `mapstructure:"key"`
	Description string `mapstructure:"description"`
	Example     string `mapstructure:"example"`
}

type TriggerConfig struct {
	ID             string   `mapstructure:"id"`
	Name           string   `mapstructure:"name"`
	Description    string   `mapstructure:"description"`
	OptionTypes    []string `mapstructure:"option_types"`
	SupportsSingle bool     `mapstructure:"supports_single"`
	SupportsGlobal bool     `mapstructure:"supports_global"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthoringConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
