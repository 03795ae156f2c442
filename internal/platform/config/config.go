// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr            string        `env:"REGDESK_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"REGDESK_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// DatabaseURL selects the postgres store; when empty the server runs on
	// the in-memory store, which only suits development.
	DatabaseURL string `env:"DATABASE_URL"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	Kafka KafkaConfig `envPrefix:"KAFKA_"`

	// EventConfigFile is the fallback configuration source when Redis is not
	// configured.
	EventConfigFile string `env:"EVENT_CONFIG_FILE" envDefault:"event-config.json"`

	Identity IdentityConfig `envPrefix:"IDENTITY_"`
}

// RedisConfig holds connection settings for the configuration source.
type RedisConfig struct {
	URL          string        `env:"URL"`
	Key          string        `env:"KEY" envDefault:"regdesk:event-config"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig holds the audit sink settings. Empty brokers disable the sink.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"AUDIT_TOPIC" envDefault:"regdesk.audit"`
}

// IdentityConfig holds the assertion verification settings.
type IdentityConfig struct {
	SigningKey string `env:"SIGNING_KEY,required"`
	Issuer     string `env:"ISSUER" envDefault:"identity-provider"`
	Audience   string `env:"AUDIENCE" envDefault:"regdesk"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
