// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// answering pipeline, the corpus source and the optional service backends
// (Postgres, Redis, Kafka, metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
)

// Corpus sources.
const (
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Answer   AnswerConfig   `yaml:"answer"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AnswerConfig controls how many documents feed sentence extraction and how
// many sentences are returned.
type AnswerConfig struct {
	FileMatches     int    `yaml:"fileMatches"`
	SentenceMatches int    `yaml:"sentenceMatches"`
	StopwordsPath   string `yaml:"stopwordsPath"`
}

// CorpusConfig selects where documents come from and how they are read.
type CorpusConfig struct {
	Source         string   `yaml:"source"`
	Path           string   `yaml:"path"`
	Extensions     []string `yaml:"extensions"`
	Workers        int      `yaml:"workers"`
	SkipUnreadable bool     `yaml:"skipUnreadable"`
	Table          string   `yaml:"table"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RateLimit is the number of API requests per minute allowed for each
	// client address; 0 disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings for query analytics.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	QueryEvents string `yaml:"queryEvents"`
}

// RedisConfig holds Redis connection and answer caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
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
	return LoadFrom(Default(), path)
}

// LoadFrom is Load with caller-supplied defaults. The file and the
// environment are applied on top of base, which is modified in place.
func LoadFrom(base *Config, path string) (*Config, error) {
	cfg := base
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
	return cfg, nil
}

// Default returns the configuration used when no file is given: one file
// match, one sentence match, built-in stop-words, corpus read from a
// directory.
func Default() *Config {
	return &Config{
		Answer: AnswerConfig{
			FileMatches:     1,
			SentenceMatches: 1,
		},
		Corpus: CorpusConfig{
			Source:  SourceDir,
			Workers: 4,
			Table:   "documents",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "questions",
			User:            "questions",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				QueryEvents: "question-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
	}
}

// Validate checks the settings the answering pipeline depends on.
func (c *Config) Validate() error {
	if c.Answer.FileMatches < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "answer.fileMatches must be at least 1, got %d", c.Answer.FileMatches)
	}
	if c.Answer.SentenceMatches < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "answer.sentenceMatches must be at least 1, got %d", c.Answer.SentenceMatches)
	}
	switch c.Corpus.Source {
	case SourceDir, SourcePostgres:
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "corpus.source must be %q or %q, got %q", SourceDir, SourcePostgres, c.Corpus.Source)
	}
	if c.Server.RateLimit < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "server.rateLimit must not be negative, got %d", c.Server.RateLimit)
	}
	if c.Corpus.Workers < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "corpus.workers must be at least 1, got %d", c.Corpus.Workers)
	}
	return nil
}

// applyEnvOverrides reads QA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QA_FILE_MATCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Answer.FileMatches = n
		}
	}
	if v := os.Getenv("QA_SENTENCE_MATCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Answer.SentenceMatches = n
		}
	}
	if v := os.Getenv("QA_STOPWORDS_PATH"); v != "" {
		cfg.Answer.StopwordsPath = v
	}
	if v := os.Getenv("QA_CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("QA_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("QA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QA_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("QA_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("QA_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("QA_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("QA_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("QA_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("QA_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("QA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QA_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
