package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/quantonr/exchange/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // a missing .env file is fine outside local development

	return env.Parse(cfg)
}

// Config holds the configuration for the matching engine.
type Config struct {
	// Symbols are the instruments registered with the exchange at startup,
	// e.g. AAPL,MSFT.
	Symbols []string `env:"SYMBOLS,required"`

	Kafka KafkaConfig  `envPrefix:"KAFKA_"`
	Redis redis.Config `envPrefix:"REDIS_"`
}

// KafkaConfig holds the configuration for the order consumer and the
// execution report publisher.
type KafkaConfig struct {
	Brokers        []string `env:"BROKER,required"`
	OrderTopic     string   `env:"ORDER_TOPIC,required"`
	ExecutionTopic string   `env:"EXECUTION_TOPIC,required"`
	GroupID        string   `env:"GROUP_ID" envDefault:"matching-engine"`
}
