// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, CORS, Ollama, Analysis, Redis, Kafka, RateLimit, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// OllamaConfig controls the optional local generative-text call.
type OllamaConfig struct {
	// Enabled is the default for requests that do not set use_llm.
	Enabled          bool          `yaml:"enabled"`
	BaseURL          string        `yaml:"baseUrl"`
	Model            string        `yaml:"model"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// AnalysisConfig controls the keyword display.
type AnalysisConfig struct {
	KeywordLimit int `yaml:"keywordLimit"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings for analytics events.
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumerGroup"`
	Topic         string   `yaml:"topic"`
	BufferSize    int      `yaml:"bufferSize"`
}

// RateLimitConfig controls per-client request limits. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config suitable for local development next to the
// browser client on port 3000 and Ollama on its default port.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			AllowCredentials: true,
			MaxAge:           600,
		},
		Ollama: OllamaConfig{
			BaseURL:          "http://localhost:11434",
			Model:            "llama3.1",
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Analysis: AnalysisConfig{
			KeywordLimit: 60,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "ai-tailor",
			Topic:         "analysis-events",
			BufferSize:    10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.maxBodyBytes must be positive")
	}
	if c.Ollama.Timeout <= 0 {
		return errors.New("ollama.timeout must be positive")
	}
	if c.Ollama.Enabled && c.Ollama.BaseURL == "" {
		return errors.New("ollama.baseUrl is required when ollama is enabled")
	}
	if c.Analysis.KeywordLimit < 0 {
		return fmt.Errorf("analysis.keywordLimit must not be negative, got %d", c.Analysis.KeywordLimit)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rateLimit.requestsPerMinute must not be negative, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf(`logging.format must be "json" or "text", got %q`, c.Logging.Format)
	}
	return nil
}

// applyEnvOverrides reads USE_OLLAMA and TAILOR_* environment variables and
// overrides the corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	// Any non-empty value turns the generative call on by default.
	if v := os.Getenv("USE_OLLAMA"); v != "" {
		cfg.Ollama.Enabled = true
	}
	if v := os.Getenv("TAILOR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TAILOR_CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("TAILOR_OLLAMA_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("TAILOR_OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("TAILOR_OLLAMA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ollama.Timeout = d
		}
	}
	if v := os.Getenv("TAILOR_REDIS_ADDR"); v != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TAILOR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TAILOR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Enabled = true
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("TAILOR_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("TAILOR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TAILOR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
