package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Mailer   MailerConfig
	Credit   CreditConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	// BaseURL is the public origin used when building links sent to users.
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	Migrate  bool
}

type SessionConfig struct {
	ExpiryHours int
}

type PaymentConfig struct {
	BaseURL   string
	SecretKey string
}

type MailerConfig struct {
	BaseURL     string
	APIKey      string
	SenderEmail string
	SenderName  string
}

type CreditConfig struct {
	// Weight covered by one credit, in kilograms.
	ThresholdKg float64
	// Billed rate for weight above the threshold, cents per kilogram.
	SurplusRateCents int64
	// RunReset enables the in-process weekly reset job.
	RunReset bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIGRATE", true)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("CREDIT_THRESHOLD_KG", 15.0)
	viper.SetDefault("CREDIT_SURPLUS_RATE_CENTS", 300)
	viper.SetDefault("CREDIT_RUN_RESET", true)

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
			BaseURL: viper.GetString("APP_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
			Migrate:  viper.GetBool("DB_MIGRATE"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Payment: PaymentConfig{
			BaseURL:   viper.GetString("PAYMENT_BASE_URL"),
			SecretKey: viper.GetString("PAYMENT_SECRET_KEY"),
		},
		Mailer: MailerConfig{
			BaseURL:     viper.GetString("MAILER_BASE_URL"),
			APIKey:      viper.GetString("MAILER_API_KEY"),
			SenderEmail: viper.GetString("MAILER_SENDER_EMAIL"),
			SenderName:  viper.GetString("MAILER_SENDER_NAME"),
		},
		Credit: CreditConfig{
			ThresholdKg:      viper.GetFloat64("CREDIT_THRESHOLD_KG"),
			SurplusRateCents: viper.GetInt64("CREDIT_SURPLUS_RATE_CENTS"),
			RunReset:         viper.GetBool("CREDIT_RUN_RESET"),
		},
	}

	return config, nil
}
