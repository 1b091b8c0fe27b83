// Package config loads the settings shared by the ledger binaries.
// Values are resolved in three layers: built-in defaults, an optional YAML
// file named by LEDGER_CONFIG, then environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the YAML file path.
const EnvConfigPath = "LEDGER_CONFIG"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	App         AppConfig         `yaml:"app"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
	Storage     StorageConfig     `yaml:"storage"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	AMQP        AMQPConfig        `yaml:"amqp"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type AppConfig struct {
	Env     string `yaml:"env"`
	Version string `yaml:"version"`
}

// Development reports whether the binaries run with development logging.
func (a AppConfig) Development() bool {
	return a.Env == "development"
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (h HTTPConfig) Addr() string {
	return ":" + strconv.Itoa(h.Port)
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend"`
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`

	// CloseConcurrency bounds the accounts closed in parallel by the month-end job.
	CloseConcurrency int `yaml:"close_concurrency"`
}

type IdempotencyConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// AMQPConfig is optional for the server and required by the worker.
type AMQPConfig struct {
	URL             string `yaml:"url"`
	Exchange        string `yaml:"exchange"`
	JobQueue        string `yaml:"job_queue"`
	EventRoutingKey string `yaml:"event_routing_key"`
}

// Enabled reports whether a broker is configured.
func (a AMQPConfig) Enabled() bool {
	return a.URL != ""
}

type WorkerConfig struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	StatsInterval   time.Duration `yaml:"stats_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:     "development",
			Version: "dev",
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Backend:          BackendMemory,
			MaxConns:         10,
			MinConns:         2,
			MigrateOnStart:   true,
			CloseConcurrency: 4,
		},
		Idempotency: IdempotencyConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		AMQP: AMQPConfig{
			Exchange:        "ledger",
			JobQueue:        "ledger.jobs",
			EventRoutingKey: "ledger.movements",
		},
		Worker: WorkerConfig{
			CleanupInterval: time.Hour,
			StatsInterval:   5 * time.Minute,
		},
	}
}

// Load resolves the configuration. An empty path falls back to LEDGER_CONFIG;
// when both are empty only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// envReader reads one environment variable.
type envReader func(key string) (string, bool)

// applyEnv overrides every field with a set environment variable.
// Malformed values are reported together.
func (c *Config) applyEnv(lookup envReader) error {
	p := envParser{lookup: lookup}

	p.str("APP_ENV", &c.App.Env)
	p.str("APP_VERSION", &c.App.Version)

	p.integer("APP_PORT", &c.HTTP.Port)
	p.duration("HTTP_READ_TIMEOUT", &c.HTTP.ReadTimeout)
	p.duration("HTTP_WRITE_TIMEOUT", &c.HTTP.WriteTimeout)
	p.duration("HTTP_IDLE_TIMEOUT", &c.HTTP.IdleTimeout)
	p.duration("HTTP_SHUTDOWN_TIMEOUT", &c.HTTP.ShutdownTimeout)

	p.str("LOG_LEVEL", &c.Log.Level)

	p.str("DATA_BACKEND", &c.Storage.Backend)
	p.str("DATABASE_URL", &c.Storage.DSN)
	p.int32("DB_MAX_CONNS", &c.Storage.MaxConns)
	p.int32("DB_MIN_CONNS", &c.Storage.MinConns)
	p.boolean("MIGRATE_ON_START", &c.Storage.MigrateOnStart)
	p.integer("CLOSE_CONCURRENCY", &c.Storage.CloseConcurrency)

	p.boolean("IDEMPOTENCY_ENABLED", &c.Idempotency.Enabled)
	p.duration("IDEMPOTENCY_TTL", &c.Idempotency.TTL)

	p.str("AMQP_URL", &c.AMQP.URL)
	p.str("AMQP_EXCHANGE", &c.AMQP.Exchange)
	p.str("AMQP_JOB_QUEUE", &c.AMQP.JobQueue)
	p.str("AMQP_EVENT_ROUTING_KEY", &c.AMQP.EventRoutingKey)

	p.duration("WORKER_CLEANUP_INTERVAL", &c.Worker.CleanupInterval)
	p.duration("WORKER_STATS_INTERVAL", &c.Worker.StatsInterval)

	return errors.Join(p.errs...)
}

type envParser struct {
	lookup envReader
	errs   []error
}

func (p *envParser) value(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *envParser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
}

func (p *envParser) str(key string, dst *string) {
	if v, ok := p.value(key); ok {
		*dst = v
	}
}

func (p *envParser) integer(key string, dst *int) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *envParser) int32(key string, dst *int32) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = int32(n)
}

func (p *envParser) boolean(key string, dst *bool) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}

func (p *envParser) duration(key string, dst *time.Duration) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.HTTP.Port))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		problems = append(problems, "shutdown timeout must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			problems = append(problems, "database URL is required when using postgres backend")
		}
		if c.Storage.MaxConns < 1 {
			problems = append(problems, fmt.Sprintf("invalid max connections %d: must be at least 1", c.Storage.MaxConns))
		} else if c.Storage.MinConns < 0 || c.Storage.MinConns > c.Storage.MaxConns {
			problems = append(problems, fmt.Sprintf("invalid min connections %d: must be between 0 and %d", c.Storage.MinConns, c.Storage.MaxConns))
		}
		if c.Idempotency.Enabled && c.Idempotency.TTL <= 0 {
			problems = append(problems, "idempotency TTL must be positive")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.Storage.Backend, BackendMemory, BackendPostgres))
	}

	if c.Storage.CloseConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid close concurrency %d: must be at least 1", c.Storage.CloseConcurrency))
	}

	if c.AMQP.Enabled() {
		if parsed, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.JobQueue == "" {
			problems = append(problems, "AMQP job queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Worker.CleanupInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid cleanup interval %v: must be at least 1 minute", c.Worker.CleanupInterval))
	}
	if c.Worker.StatsInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid stats interval %v: must be at least 1 second", c.Worker.StatsInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// RequireAMQP fails when no broker is configured.
func (c *Config) RequireAMQP() error {
	if !c.AMQP.Enabled() {
		return errors.New("AMQP_URL is required")
	}
	return nil
}
