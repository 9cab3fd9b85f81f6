package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Gateway  GatewayConfig
	Wallet   WalletConfig
	Formance FormanceConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AuthConfig holds the identity provider token settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// GatewayConfig holds External Payment Gateway settings
type GatewayConfig struct {
	BaseURL          string
	SecretKey        string
	WebhookSecret    string
	WebhookTolerance time.Duration
	Timeout          time.Duration
	SuccessURL       string
	CancelURL        string
}

// WalletConfig holds wallet ledger settings
type WalletConfig struct {
	DefaultCurrency      string
	CurrenciesFile       string
	InstantPayoutEnabled bool
	InvitationTTL        time.Duration
}

// FormanceConfig holds Formance Stack connection settings for the ledger mirror
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// Enabled reports whether the ledger mirror has been configured
func (c FormanceConfig) Enabled() bool {
	return c.StackURL != ""
}

// KafkaConfig holds wallet event publishing settings
type KafkaConfig struct {
	Brokers []string
	Topic   string
}
