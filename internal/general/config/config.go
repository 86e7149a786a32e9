package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store and notifier backends.
const (
	StorePostgres    = "postgres"
	StoreRedis       = "redis"
	NotifierRabbitMQ = "rabbitmq"
	NotifierKafka    = "kafka"
)

type Config struct {
	Booking struct {
		TableName string `yaml:"table_name" env:"TABLE_NAME" env-required:"true"`
		TopicARN  string `yaml:"topic_arn" env:"TOPIC_ARN" env-required:"true"`
	} `yaml:"booking"`
	Service struct {
		Name     string `yaml:"name" env:"POWERTOOLS_SERVICE_NAME" env-default:"unicorn-management-service"`
		Port     int    `yaml:"port" env:"BOOKING_SERVICE_PORT" env-default:"3000"`
		LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	} `yaml:"service"`
	Store struct {
		Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"postgres"`
	} `yaml:"store"`
	Notifier struct {
		Backend string `yaml:"backend" env:"NOTIFIER_BACKEND" env-default:"rabbitmq"`
	} `yaml:"notifier"`
	// Client holds the budgets shared by every collaborator client.
	Client struct {
		ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CLIENT_CONNECT_TIMEOUT" env-default:"5s"`
		ReadTimeout    time.Duration `yaml:"read_timeout" env:"CLIENT_READ_TIMEOUT" env-default:"5s"`
		MaxAttempts    int           `yaml:"max_attempts" env:"CLIENT_MAX_ATTEMPTS" env-default:"1"`
	} `yaml:"client"`
	Database struct {
		Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
		Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		Name     string `yaml:"database" env:"DB_NAME"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`
	RabbitMQ struct {
		Host     string `yaml:"host" env:"RABBITMQ_HOST" env-default:"localhost"`
		Port     int    `yaml:"port" env:"RABBITMQ_PORT" env-default:"5672"`
		User     string `yaml:"user" env:"RABBITMQ_USER"`
		Password string `yaml:"password" env:"RABBITMQ_PASSWORD"`
	} `yaml:"rabbitmq"`
	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	} `yaml:"kafka"`
	RateLimit struct {
		RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"0"`
		Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"0"`
	} `yaml:"rate_limit"`
}

// tableNamePattern is the key-value table naming rule; the postgres backend quotes the name.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,255}$`)

// maxPostgresIdentifier is NAMEDATALEN-1; postgres silently truncates longer identifiers.
const maxPostgresIdentifier = 63

// Load reads path (if it exists) and then the environment, which overrides the file.
// TABLE_NAME and TOPIC_ARN are required; Load fails without them.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// booking
	if strings.TrimSpace(c.Booking.TableName) == "" {
		problems = append(problems, "booking.table_name (TABLE_NAME) is required")
	} else if !tableNamePattern.MatchString(c.Booking.TableName) {
		problems = append(problems, "booking.table_name must match "+tableNamePattern.String())
	}
	if strings.TrimSpace(c.Booking.TopicARN) == "" {
		problems = append(problems, "booking.topic_arn (TOPIC_ARN) is required")
	}

	// service
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		problems = append(problems, "service.port must be in 1..65535")
	}

	// client budgets
	if c.Client.ConnectTimeout <= 0 {
		problems = append(problems, "client.connect_timeout must be > 0")
	}
	if c.Client.ReadTimeout <= 0 {
		problems = append(problems, "client.read_timeout must be > 0")
	}
	if c.Client.MaxAttempts != 1 {
		problems = append(problems, "client.max_attempts must be 1 (collaborator calls are never retried)")
	}

	// backends
	switch c.Store.Backend {
	case StorePostgres:
		if len(c.Booking.TableName) > maxPostgresIdentifier {
			problems = append(problems, fmt.Sprintf("booking.table_name must be at most %d bytes for the postgres backend", maxPostgresIdentifier))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			problems = append(problems, "database.port must be in 1..65535")
		}
		if c.Database.User == "" {
			problems = append(problems, "database.user is required")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.database is required")
		}
	case StoreRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			problems = append(problems, "redis.addr is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be %q or %q", StorePostgres, StoreRedis))
	}

	switch c.Notifier.Backend {
	case NotifierRabbitMQ:
		if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
			problems = append(problems, "rabbitmq.port must be in 1..65535")
		}
		if c.RabbitMQ.User == "" {
			problems = append(problems, "rabbitmq.user is required")
		}
		if c.RabbitMQ.Password == "" {
			problems = append(problems, "rabbitmq.password is required")
		}
	case NotifierKafka:
		if len(c.Kafka.Brokers) == 0 {
			problems = append(problems, "kafka.brokers is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifier.backend must be %q or %q", NotifierRabbitMQ, NotifierKafka))
	}

	// rate limit (0 disables)
	if c.RateLimit.RPS < 0 {
		problems = append(problems, "rate_limit.rps must be >= 0")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		problems = append(problems, "rate_limit.burst must be >= 1 when rate_limit.rps is set")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
