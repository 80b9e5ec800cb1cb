package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Sweep    SweepConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	ExpiryHours int
}

type PaymentConfig struct {
	Provider      string
	APIBaseURL    string
	SecretKey     string
	WebhookSecret string
	// Tolerance bounds accepted webhook timestamp skew (replay guard).
	Tolerance  time.Duration
	SuccessURL string
	CancelURL  string
	// RequestsPerSecond limits outbound calls to the provider API.
	RequestsPerSecond int
}

type SweepConfig struct {
	Interval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("PAYMENT_PROVIDER", "payflow")
	viper.SetDefault("WEBHOOK_TOLERANCE_SECONDS", 300)
	viper.SetDefault("PAYMENT_RPS", 10)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 5)
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Payment: PaymentConfig{
			Provider:          viper.GetString("PAYMENT_PROVIDER"),
			APIBaseURL:        viper.GetString("PAYMENT_API_URL"),
			SecretKey:         viper.GetString("PAYMENT_SECRET_KEY"),
			WebhookSecret:     viper.GetString("PAYMENT_WEBHOOK_SECRET"),
			Tolerance:         time.Duration(viper.GetInt("WEBHOOK_TOLERANCE_SECONDS")) * time.Second,
			SuccessURL:        viper.GetString("PAYMENT_SUCCESS_URL"),
			CancelURL:         viper.GetString("PAYMENT_CANCEL_URL"),
			RequestsPerSecond: viper.GetInt("PAYMENT_RPS"),
		},
		Sweep: SweepConfig{
			Interval: time.Duration(viper.GetInt("SWEEP_INTERVAL_MINUTES")) * time.Minute,
		},
	}

	return config, nil
}
