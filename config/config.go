package config

import (
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8090"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis (queue store)
	RedisURL      string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// MongoDB (room store, registry, accounts)
	MongoURL      string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"codepair"`

	// PubNub (per-user notifications)
	PubNubPublishKey   string `env:"PUBNUB_PUBLISH_KEY" envDefault:""`
	PubNubSubscribeKey string `env:"PUBNUB_SUBSCRIBE_KEY" envDefault:""`
	PubNubSecretKey    string `env:"PUBNUB_SECRET_KEY" envDefault:""`

	// Auth
	GitHubClientID     string        `env:"GITHUB_CLIENT_ID" envDefault:""`
	GitHubClientSecret string        `env:"GITHUB_CLIENT_SECRET" envDefault:""`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Matchmaking
	RoomSize            int           `env:"ROOM_SIZE" envDefault:"4"`
	MatchInterval       time.Duration `env:"MATCH_INTERVAL" envDefault:"2s"`
	RoomInsertRetries   int           `env:"ROOM_INSERT_RETRIES" envDefault:"3"`
	QueuePositionUpdate time.Duration `env:"QUEUE_POSITION_UPDATE" envDefault:"2s"`

	// Rate limiting
	QueueRateLimit int `env:"QUEUE_RATE_LIMIT" envDefault:"30"` // per user per minute

	// Monitoring
	EnableMetrics   bool          `env:"ENABLE_METRICS" envDefault:"true"`
	MetricsPort     string        `env:"METRICS_PORT" envDefault:"9090"`
	MetricsInterval time.Duration `env:"METRICS_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
