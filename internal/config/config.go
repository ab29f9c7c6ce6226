// Package config loads the ledger's settings from defaults, an optional .env file and
// the process environment, and validates them before any component starts.
package config

import (
	"errors"
	"strings"
	"time"
)

// Storage drivers
const (
	StorageMemory     = "memory"
	StoragePersistent = "persistent"
)

// Config is the complete application configuration
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Storage     StorageConfig
	Ledger      LedgerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	WorkerPool  WorkerPoolConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// StorageConfig selects the store implementations
type StorageConfig struct {
	Driver string // memory or persistent (Postgres + MongoDB)
}

// Persistent reports whether the Postgres and MongoDB stores are in use
func (s StorageConfig) Persistent() bool {
	return s.Driver == StoragePersistent
}

// LedgerConfig holds domain settings
type LedgerConfig struct {
	SeedDemoData     bool // load the demo book at startup
	SeriesWindowDays int  // default window of the daily collection series
}

// KafkaConfig configures ledger event publication and the audit consumer
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	LedgerTopic       string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// BrokerList splits the comma separated broker string
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// WorkerPoolConfig sizes the audit processor's worker pool
type WorkerPoolConfig struct {
	Size int
}

// validate collects every violation so one failed start reports all of them.
// Store and broker settings are only checked when those components are enabled.
func (c *Config) validate() error {
	var validationErrors []string
	add := func(msg string) { validationErrors = append(validationErrors, msg) }

	if c.Server.Port <= 0 {
		add("SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		add("SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		add("SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		add("SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	switch c.Storage.Driver {
	case StorageMemory, StoragePersistent:
	default:
		add("STORAGE_DRIVER must be one of memory, persistent")
	}

	if c.Ledger.SeriesWindowDays <= 0 {
		add("LEDGER_SERIES_WINDOW_DAYS must be greater than 0")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.BrokerList()) == 0 {
			add("KAFKA_BROKERS is required")
		}
		if c.Kafka.LedgerTopic == "" {
			add("KAFKA_LEDGER_TOPIC is required")
		}
		if c.Kafka.ConsumerGroup == "" {
			add("KAFKA_CONSUMER_GROUP is required")
		}
		if c.Kafka.MinBytes <= 0 {
			add("KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
		}
		if c.Kafka.MaxBytes <= 0 {
			add("KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
		}
		if c.Kafka.MaxWait <= 0 {
			add("KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
		}
		if c.Kafka.DLQTopic == "" {
			add("KAFKA_DLQ_TOPIC is required")
		}
	}

	if c.Storage.Persistent() {
		if c.Postgres.URL == "" {
			add("POSTGRES_URL is required")
		}
		if c.Postgres.MaxConns <= 0 {
			add("POSTGRES_MAX_CONNS must be greater than 0")
		}
		if c.Postgres.MinConns <= 0 {
			add("POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 {
			add("POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		}
		if c.Postgres.ConnMaxIdleTime <= 0 {
			add("POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}

		c.validateMongo(add)
	}

	if c.WorkerPool.Size <= 0 {
		add("WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (c *Config) validateMongo(add func(string)) {
	if c.MongoDB.URI == "" {
		add("MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		add("MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		add("MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		add("MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		add("MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
}

// ValidateAuditProcessor checks the settings the audit processor needs on top of
// validate: it always consumes Kafka and always writes to MongoDB, whatever the
// API's storage driver.
func (c *Config) ValidateAuditProcessor() error {
	var validationErrors []string
	add := func(msg string) { validationErrors = append(validationErrors, msg) }

	if !c.Kafka.Enabled {
		add("KAFKA_ENABLED must be true")
	}
	c.validateMongo(add)

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}
	return nil
}
