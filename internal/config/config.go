package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceStatic   = "static"
	SourceDatabase = "database"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Mongo    MongoConfig    `yaml:"mongo" envPrefix:"MONGO_"`
	Quiz     QuizConfig     `yaml:"quiz" envPrefix:"QUIZ_"`
	Attempt  AttemptConfig  `yaml:"attempt" envPrefix:"ATTEMPT_"`
	Policy   PolicyConfig   `yaml:"policy" envPrefix:"POLICY_"`
	Events   EventsConfig   `yaml:"events" envPrefix:"EVENTS_"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// DatabaseConfig selects the SQL store. An empty URL keeps submissions and policy in memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	URL    string `yaml:"url" env:"URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	TTL      string `yaml:"ttl" env:"TTL"`
}

type MongoConfig struct {
	URI        string `yaml:"uri" env:"URI"`
	Database   string `yaml:"database" env:"DATABASE"`
	Collection string `yaml:"collection" env:"COLLECTION"`
}

type QuizConfig struct {
	Source string `yaml:"source" env:"SOURCE"`
	TTL    string `yaml:"ttl" env:"TTL"`
}

type AttemptConfig struct {
	TTL string `yaml:"ttl" env:"TTL"`
}

type PolicyConfig struct {
	BarredRoles []string `yaml:"barred_roles" env:"BARRED_ROLES" envSeparator:","`
}

type EventsConfig struct {
	SQSQueueURL string `yaml:"sqs_queue_url" env:"SQS_QUEUE_URL"`
	SQSRegion   string `yaml:"sqs_region" env:"SQS_REGION"`
}

// Default returns the settings used when neither the file nor the environment say otherwise.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", AllowedOrigins: []string{"*"}},
		Log:      LogConfig{Level: "INFO"},
		Database: DatabaseConfig{Driver: "postgres"},
		Mongo:    MongoConfig{Database: "quiz", Collection: "quizzes"},
		Quiz:     QuizConfig{Source: SourceStatic, TTL: "10m"},
		Attempt:  AttemptConfig{TTL: "2h"},
		Policy:   PolicyConfig{BarredRoles: []string{"admin"}},
	}
}

// Load reads YAML config from path, then applies .env and environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error loading .env file", "error", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if !slices.Contains([]string{"postgres", "sqlite"}, c.Database.Driver) {
		result = multierror.Append(result, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}

	switch c.Quiz.Source {
	case SourceStatic:
	case SourceDatabase:
		if c.Database.URL == "" {
			result = multierror.Append(result, errors.New("quiz.source database requires database.url"))
		}
	case SourcePostgres:
		if c.Database.URL == "" || c.Database.Driver != "postgres" {
			result = multierror.Append(result, errors.New("quiz.source postgres requires a postgres database.url"))
		}
	case SourceMongo:
		if c.Mongo.URI == "" {
			result = multierror.Append(result, errors.New("quiz.source mongo requires mongo.uri"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown quiz.source %q", c.Quiz.Source))
	}

	for name, raw := range map[string]string{"redis.ttl": c.Redis.TTL, "quiz.ttl": c.Quiz.TTL, "attempt.ttl": c.Attempt.TTL} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	for _, role := range c.Policy.BarredRoles {
		if !slices.Contains([]string{"student", "teacher", "admin"}, role) {
			result = multierror.Append(result, fmt.Errorf("policy.barred_roles: unknown role %q", role))
		}
	}

	return result.ErrorOrNil()
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
