package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration written as "30s" in config files
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText writes the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" json:"server_address" toml:"server_address"`
	Environment   string `yaml:"environment" json:"environment" toml:"environment"`

	// Storage: "memory" or "dynamodb"
	StoreBackend  string `yaml:"store_backend" json:"store_backend" toml:"store_backend"`
	AWSRegion     string `yaml:"aws_region" json:"aws_region" toml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table" json:"dynamodb_table" toml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name" json:"event_bus_name" toml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda" json:"is_lambda" toml:"is_lambda"`
	LambdaFunctionName string `yaml:"-" json:"-" toml:"-"`
	ColdStartTimeout   int    `yaml:"cold_start_timeout" json:"cold_start_timeout" toml:"cold_start_timeout"` // milliseconds

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level" toml:"log_level"`

	// Authentication
	EnableAuth bool   `yaml:"enable_auth" json:"enable_auth" toml:"enable_auth"`
	JWTSecret  string `yaml:"-" json:"-" toml:"-"`
	JWTIssuer  string `yaml:"jwt_issuer" json:"jwt_issuer" toml:"jwt_issuer"`

	// Feature flags
	EnableMetrics  bool     `yaml:"enable_metrics" json:"enable_metrics" toml:"enable_metrics"`
	MetricsSink    string   `yaml:"metrics_sink" json:"metrics_sink" toml:"metrics_sink"` // prometheus or cloudwatch
	MetricsNS      string   `yaml:"metrics_namespace" json:"metrics_namespace" toml:"metrics_namespace"`
	EnableTracing  bool     `yaml:"enable_tracing" json:"enable_tracing" toml:"enable_tracing"`
	EnableCORS     bool     `yaml:"enable_cors" json:"enable_cors" toml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`

	Suggestions SuggestionsConfig `yaml:"suggestions" json:"suggestions" toml:"suggestions"`
	Sessions    SessionsConfig    `yaml:"sessions" json:"sessions" toml:"sessions"`
	Events      EventsConfig      `yaml:"events" json:"events" toml:"events"`

	// Metadata
	ConfigDir  string   `yaml:"-" json:"-" toml:"-"`
	LoadedFrom []string `yaml:"-" json:"-" toml:"-"`
}

// SuggestionsConfig configures the similarity service client
type SuggestionsConfig struct {
	ServiceURL string   `yaml:"service_url" json:"service_url" toml:"service_url"`
	Timeout    Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// Requests per owner per minute
	RatePerMinute int `yaml:"rate_per_minute" json:"rate_per_minute" toml:"rate_per_minute"`

	// Circuit breaker
	BreakerFailures uint32   `yaml:"breaker_failures" json:"breaker_failures" toml:"breaker_failures"`
	BreakerTimeout  Duration `yaml:"breaker_timeout" json:"breaker_timeout" toml:"breaker_timeout"`
}

// SessionsConfig configures the session host
type SessionsConfig struct {
	IdleTimeout     Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`
	JanitorInterval Duration `yaml:"janitor_interval" json:"janitor_interval" toml:"janitor_interval"`
	MaxPerOwner     int      `yaml:"max_per_owner" json:"max_per_owner" toml:"max_per_owner"`
}

// EventsConfig configures asynchronous event publishing
type EventsConfig struct {
	BufferSize int      `yaml:"buffer_size" json:"buffer_size" toml:"buffer_size"`
	BatchSize  int      `yaml:"batch_size" json:"batch_size" toml:"batch_size"`
	FlushEvery Duration `yaml:"flush_every" json:"flush_every" toml:"flush_every"`
}

// Default returns the configuration used before any file or variable is
// applied
func Default() *Config {
	return &Config{
		ServerAddress:    ":8080",
		Environment:      "development",
		StoreBackend:     "memory",
		AWSRegion:        "us-west-2",
		DynamoDBTable:    "mindmaps",
		EventBusName:     "",
		ColdStartTimeout: 3000,
		LogLevel:         "info",
		JWTIssuer:        "mindmap-auth",
		MetricsSink:      "prometheus",
		MetricsNS:        "MindMap",
		EnableCORS:       true,
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		Suggestions: SuggestionsConfig{
			ServiceURL:      "http://localhost:8000/suggest",
			Timeout:         Duration{10 * time.Second},
			RatePerMinute:   30,
			BreakerFailures: 5,
			BreakerTimeout:  Duration{30 * time.Second},
		},
		Sessions: SessionsConfig{
			IdleTimeout:     Duration{2 * time.Hour},
			JanitorInterval: Duration{5 * time.Minute},
			MaxPerOwner:     20,
		},
		Events: EventsConfig{
			BufferSize: 1024,
			BatchSize:  10,
			FlushEvery: Duration{time.Second},
		},
	}
}

// LoadConfig loads configuration from environment variables only
func LoadConfig() (*Config, error) {
	cfg := Default()
	applyEnv(cfg)

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads the layered configuration: defaults, then base, environment
// and local files from CONFIG_DIR, then environment variables
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	return NewLoader(getEnv("CONFIG_DIR", "./config"), env).Load()
}

// applyEnv overlays environment variables, the highest priority source
func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.DynamoDBTable))
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)

	// Lambda configuration
	cfg.IsLambda = getEnvBool("IS_LAMBDA", cfg.IsLambda)
	cfg.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", cfg.LambdaFunctionName)
	cfg.ColdStartTimeout = getEnvInt("COLD_START_TIMEOUT", cfg.ColdStartTimeout)

	// Authentication
	cfg.EnableAuth = getEnvBool("ENABLE_AUTH", cfg.EnableAuth)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)

	// Logging and features
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.MetricsSink = getEnv("METRICS_SINK", cfg.MetricsSink)
	cfg.MetricsNS = getEnv("METRICS_NAMESPACE", cfg.MetricsNS)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	// Suggestions
	cfg.Suggestions.ServiceURL = getEnv("SUGGESTIONS_URL", cfg.Suggestions.ServiceURL)
	cfg.Suggestions.Timeout = getEnvDuration("SUGGESTIONS_TIMEOUT", cfg.Suggestions.Timeout)
	cfg.Suggestions.RatePerMinute = getEnvInt("SUGGESTIONS_RATE_PER_MINUTE", cfg.Suggestions.RatePerMinute)

	// Sessions
	cfg.Sessions.IdleTimeout = getEnvDuration("SESSION_IDLE_TIMEOUT", cfg.Sessions.IdleTimeout)
	cfg.Sessions.MaxPerOwner = getEnvInt("SESSION_MAX_PER_OWNER", cfg.Sessions.MaxPerOwner)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "dynamodb":
	default:
		return fmt.Errorf("STORE_BACKEND must be memory or dynamodb, got %q", c.StoreBackend)
	}
	switch c.MetricsSink {
	case "prometheus", "cloudwatch":
	default:
		return fmt.Errorf("METRICS_SINK must be prometheus or cloudwatch, got %q", c.MetricsSink)
	}
	if c.Suggestions.RatePerMinute < 0 {
		return fmt.Errorf("SUGGESTIONS_RATE_PER_MINUTE cannot be negative")
	}
	if c.Sessions.MaxPerOwner < 0 {
		return fmt.Errorf("SESSION_MAX_PER_OWNER cannot be negative")
	}

	if c.Environment == "production" {
		if c.EnableAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StoreBackend == "dynamodb" && c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue Duration) Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return Duration{d}
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
