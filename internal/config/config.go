package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	SMS      SMSConfig
	Payment  PaymentConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	AfricasTalking AfricasTalkingConfig
	DefaultGateway string
	MockSMSGateway bool
}

// AfricasTalkingConfig holds Africa's Talking gateway credentials
type AfricasTalkingConfig struct {
	BaseURL  string
	Username string
	APIKey   string
	SenderID string
}

// PaymentConfig is the payment workflow configuration, injected into the
// payment service at construction time rather than materialized as a
// settings row.
type PaymentConfig struct {
	TimeoutMinutes       int
	SweepInterval        time.Duration
	Currency             string
	InstructionsTemplate string
	ConfirmedTemplate    string
	ReminderTemplate     string
	FailedTemplate       string
}

// Timeout returns the payment window as a duration.
func (p PaymentConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMinutes) * time.Minute
}

// Load loads configuration from environment variables and config files
func Load(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "learnhub")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("SMS.DefaultGateway", "africas_talking")
	viper.SetDefault("SMS.MockSMSGateway", true)
	viper.SetDefault("SMS.AfricasTalking.BaseURL", "https://api.africastalking.com/version1/messaging")
	viper.SetDefault("SMS.AfricasTalking.Username", "sandbox")
	viper.SetDefault("SMS.AfricasTalking.SenderID", "LEARNHUB")
	viper.SetDefault("Payment.TimeoutMinutes", 30)
	viper.SetDefault("Payment.SweepInterval", time.Minute)
	viper.SetDefault("Payment.Currency", "ZMW")
	viper.SetDefault("Payment.InstructionsTemplate",
		"Complete your payment of {amount} {currency} for {course_title}. "+
			"Dial {ussd_code} and use reference: {reference_code}")
	viper.SetDefault("Payment.ConfirmedTemplate",
		"Payment confirmed! You now have access to {course_title}. "+
			"Reference: {reference_code}")
	viper.SetDefault("Payment.ReminderTemplate",
		"Reminder: Complete your payment of {amount} {currency} for {course_title}. "+
			"Reference: {reference_code}. Payment expires in 30 minutes.")
	viper.SetDefault("Payment.FailedTemplate",
		"Your payment for {course_title} could not be confirmed. "+
			"Reference: {reference_code}. Please try again.")
}
