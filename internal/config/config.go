package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drafts storage backends.
const (
	DraftsRedis = "redis"
	DraftsSQL   = "sql"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	RedisURL            string
	DatabaseURL         string // Postgres URL, or sqlite:<path> for local runs
	DraftsBackend       string // "redis" (default) or "sql"
	BackendAPIURL       string // base URL of the property backend
	BackendTimeout      time.Duration
	MediaDir            string // uploaded draft images are written here
	RabbitMQURL         string // empty disables listing events
	EventsExchange      string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}
	logLevel := viper.GetString("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	drafts := strings.ToLower(strings.TrimSpace(viper.GetString("DRAFTS_BACKEND")))
	if drafts != DraftsSQL {
		drafts = DraftsRedis
	}
	redisURL := viper.GetString("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	mediaDir := viper.GetString("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "./media"
	}

	return &Config{
		Env:                 env,
		Port:                port,
		LogLevel:            logLevel,
		RedisURL:            redisURL,
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		DraftsBackend:       drafts,
		BackendAPIURL:       strings.TrimRight(viper.GetString("BACKEND_API_URL"), "/"),
		BackendTimeout:      viper.GetDuration("BACKEND_TIMEOUT"),
		MediaDir:            mediaDir,
		RabbitMQURL:         viper.GetString("RABBITMQ_URL"),
		EventsExchange:      viper.GetString("EVENTS_EXCHANGE"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}
