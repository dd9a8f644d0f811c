package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ECOGW_MODBUS_PORT.
const EnvPrefix = "ECOGW_"

type Config struct {
	Modbus struct {
		Host       string        `yaml:"host" env:"HOST" default:"localhost" validate:"required"`
		Port       int           `yaml:"port" env:"PORT" default:"502" validate:"gte=1,lte=65535"`
		Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT" default:"30s" validate:"gt=0"`
		MaxClients uint          `yaml:"max_clients" env:"MAX_CLIENTS" default:"16" validate:"gte=1"`
	} `yaml:"modbus" envPrefix:"MODBUS_"`

	HTTP struct {
		Enabled         bool          `yaml:"enabled" env:"ENABLED" default:"true"`
		Host            string        `yaml:"host" env:"HOST" default:"0.0.0.0"`
		Port            int           `yaml:"port" env:"PORT" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"10s"`
	} `yaml:"http" envPrefix:"HTTP_"`

	Scheduler struct {
		Tick         time.Duration `yaml:"tick" env:"TICK" default:"1s" validate:"gt=0"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT" default:"30s" validate:"gt=0"`
	} `yaml:"scheduler" envPrefix:"SCHEDULER_"`

	Ecogaz struct {
		Enabled  bool          `yaml:"enabled" env:"ENABLED" default:"true"`
		URL      string        `yaml:"url" env:"URL"`
		Interval time.Duration `yaml:"interval" env:"INTERVAL" default:"1h" validate:"gt=0"`
		RunNow   bool          `yaml:"run_now" env:"RUN_NOW" default:"true"`
		Start    uint16        `yaml:"start" env:"START" default:"0"`
		Days     int           `yaml:"days" env:"DAYS" default:"6" validate:"gte=1,lte=125"`
	} `yaml:"ecogaz" envPrefix:"ECOGAZ_"`

	Ecowatt struct {
		Enabled            bool          `yaml:"enabled" env:"ENABLED" default:"true"`
		TokenURL           string        `yaml:"token_url" env:"TOKEN_URL"`
		SignalsURL         string        `yaml:"signals_url" env:"SIGNALS_URL"`
		Sandbox            bool          `yaml:"sandbox" env:"SANDBOX"`
		ClientID           string        `yaml:"client_id" env:"CLIENT_ID"`
		ClientSecret       string        `yaml:"client_secret" env:"CLIENT_SECRET"`
		Interval           time.Duration `yaml:"interval" env:"INTERVAL" default:"1h" validate:"gt=0"`
		RunNow             bool          `yaml:"run_now" env:"RUN_NOW" default:"true"`
		Start              uint16        `yaml:"start" env:"START" default:"100"`
		Days               int           `yaml:"days" env:"DAYS" default:"4" validate:"gte=1,lte=125"`
		MinRequestInterval time.Duration `yaml:"min_request_interval" env:"MIN_REQUEST_INTERVAL" default:"15m"`
	} `yaml:"ecowatt" envPrefix:"ECOWATT_"`

	Location string `yaml:"location" env:"LOCATION" default:"Europe/Paris"`

	Cache struct {
		Backend string        `yaml:"backend" env:"BACKEND" default:"memory" validate:"oneof=memory redis none"`
		TTL     time.Duration `yaml:"ttl" env:"TTL" default:"15m"`
		Memory  struct {
			MaxEntries      int           `yaml:"max_entries" env:"MAX_ENTRIES" default:"64" validate:"min=1"`
			CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" default:"5m" validate:"gt=0"`
		} `yaml:"memory" envPrefix:"MEMORY_"`
		Redis struct {
			Addr         string        `yaml:"addr" env:"ADDR" default:"localhost:6379"`
			Password     string        `yaml:"password" env:"PASSWORD"`
			DB           int           `yaml:"db" env:"DB"`
			PoolSize     int           `yaml:"pool_size" env:"POOL_SIZE" default:"4" validate:"min=1"`
			MinIdleConns int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS" default:"1" validate:"min=0"`
			PoolTimeout  time.Duration `yaml:"pool_timeout" env:"POOL_TIMEOUT" default:"30s"`
			Prefix       string        `yaml:"prefix" env:"PREFIX" default:"ecogw"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"cache" envPrefix:"CACHE_"`

	Kafka struct {
		Enabled      bool     `yaml:"enabled" env:"ENABLED"`
		Brokers      []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
		Topic        string   `yaml:"topic" env:"TOPIC" default:"ecogw.signals"`
		RequiredAcks int      `yaml:"required_acks" env:"REQUIRED_ACKS" default:"-1"`
		Compression  string   `yaml:"compression" env:"COMPRESSION" default:"gzip" validate:"oneof=gzip snappy lz4 zstd none"`
	} `yaml:"kafka" envPrefix:"KAFKA_"`

	Breaker struct {
		Enabled     bool          `yaml:"enabled" env:"ENABLED" default:"true"`
		MaxFailures uint32        `yaml:"max_failures" env:"MAX_FAILURES" default:"5" validate:"gte=1"`
		OpenTimeout time.Duration `yaml:"open_timeout" env:"OPEN_TIMEOUT" default:"5m" validate:"gt=0"`
	} `yaml:"breaker" envPrefix:"BREAKER_"`

	Debug struct {
		Enabled  bool          `yaml:"enabled" env:"ENABLED"`
		Interval time.Duration `yaml:"interval" env:"INTERVAL" default:"5s" validate:"gt=0"`
	} `yaml:"debug" envPrefix:"DEBUG_"`

	Log struct {
		Level  string `yaml:"level" env:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" env:"FORMAT" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" env:"OUTPUT" default:"stdout"`
	} `yaml:"log" envPrefix:"LOG_"`
}

// Load builds the configuration: defaults, then the YAML file (optional, empty path
// skips it), then ECOGW_* environment variables, then overrides. The result is validated.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	for _, o := range overrides {
		o(&c)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.HTTP.Enabled && c.HTTP.Port == c.Modbus.Port && c.HTTP.Host == c.Modbus.Host {
		return fmt.Errorf("http and modbus cannot share %s:%d", c.HTTP.Host, c.HTTP.Port)
	}
	ecogazEnd := int(c.Ecogaz.Start) + c.Ecogaz.Days
	ecowattEnd := int(c.Ecowatt.Start) + c.Ecowatt.Days
	if ecogazEnd > 1<<16 || ecowattEnd > 1<<16 {
		return errors.New("register block exceeds 16-bit address space")
	}
	return nil
}
