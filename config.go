package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
)

// Config holds all configuration for the backend.
type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string

	JWTSecret string

	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPSenderName string

	ImageBucket           string
	NotificationQueueName string
	PushSNSTopicARN       string
}

// LoadConfig reads configuration from .env / environment variables with an
// optional Secrets Manager override for credentials.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Jerusalem"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:       getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   os.Getenv("SMTP_EMAIL"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPSenderName: getEnv("SMTP_SENDER_NAME", "CakeShop"),

		ImageBucket:           os.Getenv("IMAGE_BUCKET"),
		NotificationQueueName: getEnv("NOTIFICATION_QUEUE_NAME", "cakeshop-notifications"),
		PushSNSTopicARN:       os.Getenv("PUSH_SNS_TOPIC_ARN"),
	}

	// Override credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)

			if creds, err := sm.GetSecretJSON(context.Background(), "DB_CREDENTIALS"); err == nil {
				if v := creds["POSTGRES_USER"]; v != "" {
					cfg.PostgresUser = v
				}
				if v := creds["POSTGRES_PASSWORD"]; v != "" {
					cfg.PostgresPassword = v
				}
				if v := creds["POSTGRES_DB"]; v != "" {
					cfg.PostgresDB = v
				}
				if v := creds["POSTGRES_HOST"]; v != "" {
					cfg.PostgresHost = v
				}
				if v := creds["POSTGRES_PORT"]; v != "" {
					cfg.PostgresPort = v
				}
			}

			if secret, err := sm.GetSecret(context.Background(), "JWT_SECRET"); err == nil && secret != "" {
				cfg.JWTSecret = secret
			}
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
