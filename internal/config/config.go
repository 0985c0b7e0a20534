package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Payment  PaymentConfig
	Auth     AuthConfig
	Booking  BookingConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventTopic         string
	Timezone           string
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// Enabled reports whether notices are actually mailed.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Email != ""
}

type PaymentConfig struct {
	MidtransServerKey string
	IsProduction      bool
	FinishURL         string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type BookingConfig struct {
	LockTimeout   time.Duration
	LockTTL       time.Duration
	PlanCacheTTL  time.Duration
	UseRedisLocks bool
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventTopic:         getEnv("EVENT_TOPIC_NAME", "LIFECYCLE_EVENTS"),
			Timezone:           getEnv("APP_TIMEZONE", "UTC"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Campus Dining"),
		},
		Payment: PaymentConfig{
			MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction:      getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			FinishURL:         getEnv("PAYMENT_FINISH_URL", "http://localhost:5173/payment/finish"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Booking: BookingConfig{
			LockTimeout:   getEnvAsDuration("BOOKING_LOCK_TIMEOUT", 10*time.Second),
			LockTTL:       getEnvAsDuration("BOOKING_LOCK_TTL", 30*time.Second),
			PlanCacheTTL:  getEnvAsDuration("PLAN_CACHE_TTL", 5*time.Minute),
			UseRedisLocks: getEnvAsBool("BOOKING_REDIS_LOCKS", true),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "meal-ordering-backend"),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		log.Printf("[WARN] Unknown timezone %q, using UTC", c.App.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
