package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	AlertWebhookURL string
}

// IsConfigured returns true if Slack error alerts can be sent
func (c SlackConfig) IsConfigured() bool {
	return c.AlertWebhookURL != ""
}

type ClerkConfig struct {
	SecretKey string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type BroadcastConfig struct {
	SessionBufferSize   int
	CoordinatePrecision int32
	Scope               string // "all" or "owner"
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string

	AuthConfig      AuthConfig
	BroadcastConfig BroadcastConfig

	// Optional integrations
	SlackConfig SlackConfig
	ClerkConfig ClerkConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	jwtSecret, err := getEnvRequired("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	tokenTTL, err := time.ParseDuration(getEnvWithDefault("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL is not a valid duration: %w", err)
	}

	sessionBufferSize, err := getEnvInt("SESSION_BUFFER_SIZE", 64)
	if err != nil {
		return nil, err
	}
	if sessionBufferSize <= 0 {
		return nil, fmt.Errorf("SESSION_BUFFER_SIZE must be positive, got %d", sessionBufferSize)
	}

	coordinatePrecision, err := getEnvInt("COORDINATE_PRECISION", 7)
	if err != nil {
		return nil, err
	}
	if coordinatePrecision < 0 || coordinatePrecision > 15 {
		return nil, fmt.Errorf("COORDINATE_PRECISION must be between 0 and 15, got %d", coordinatePrecision)
	}

	broadcastScope := getEnvWithDefault("BROADCAST_SCOPE", "all")
	if broadcastScope != "all" && broadcastScope != "owner" {
		return nil, fmt.Errorf("BROADCAST_SCOPE must be \"all\" or \"owner\", got %q", broadcastScope)
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),

		AuthConfig: AuthConfig{
			JWTSecret: jwtSecret,
			TokenTTL:  tokenTTL,
		},

		BroadcastConfig: BroadcastConfig{
			SessionBufferSize:   sessionBufferSize,
			CoordinatePrecision: int32(coordinatePrecision),
			Scope:               broadcastScope,
		},

		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},

		ClerkConfig: ClerkConfig{
			SecretKey: os.Getenv("CLERK_SECRET_KEY"),
		},
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack error alerts configured")
	} else {
		log.Printf("⚠️ Slack error alerts not configured - errors will only be logged")
	}

	if config.ClerkConfig.IsConfigured() {
		log.Printf("✅ Clerk authentication configured")
	} else {
		log.Printf("⚠️ Clerk authentication not configured - only locally issued tokens will be accepted")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
