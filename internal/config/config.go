package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Environment    string   `envconfig:"APP_ENV" default:"development"`
	Port           string   `envconfig:"API_PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://localhost:5000"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	Timezone       string   `envconfig:"TIMEZONE" default:"Local"`

	// Nested sections are prefixed with their own key, e.g. MONGO_URI.
	Mongo    MongoConfig     `envconfig:"MONGO"`
	Redis    RedisConfig     `envconfig:"REDIS"`
	JWT      JWTConfig       `envconfig:"JWT"`
	Auth     AuthConfig      `envconfig:"AUTH"`
	SMTP     SMTPConfig      `envconfig:"SMTP"`
	Textbelt TextbeltConfig  `envconfig:"TEXTBELT"`
	Gemini   GeminiConfig    `envconfig:"GEMINI"`
	Limits   RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// MongoConfig selects the live document store. An empty URI runs the API in demo mode
// on the in-memory store.
type MongoConfig struct {
	URI            string        `envconfig:"URI"`
	Database       string        `envconfig:"DATABASE" default:"ayursutra"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL      string `envconfig:"URL"`
	PoolSize int    `envconfig:"POOL_SIZE" default:"10"`
}

type JWTConfig struct {
	Secret string        `envconfig:"SECRET"`
	TTL    time.Duration `envconfig:"TTL" default:"24h"`
}

type AuthConfig struct {
	RecentLoginWindow time.Duration `envconfig:"RECENT_LOGIN_WINDOW" default:"5m"`
	ResetTokenTTL     time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
	ResetURL          string        `envconfig:"RESET_URL" default:"http://localhost:5173/reset-password"`
	PasswordCost      int           `envconfig:"PASSWORD_COST" default:"12"`
}

type SMTPConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"no-reply@ayursutra.app"`
}

type TextbeltConfig struct {
	APIKey string `envconfig:"API_KEY"`
	URL    string `envconfig:"URL" default:"https://textbelt.com/text"`
}

type GeminiConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Model   string `envconfig:"MODEL" default:"gemini-2.5-flash"`
}

type RateLimitConfig struct {
	AuthPerSecond float64 `envconfig:"AUTH_RPS" default:"1"`
	AuthBurst     int     `envconfig:"AUTH_BURST" default:"5"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, dotenv, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, dotenv, nil
}

// Demo reports whether the API runs without a live document store.
func (c *Config) Demo() bool {
	return c.Mongo.URI == ""
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
