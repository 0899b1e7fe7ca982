package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting of the service.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitMQURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Payment  PaymentConfig
	Checkout CheckoutConfig
}

// PaymentConfig configures the payment gateway.
type PaymentConfig struct {
	GatewayURL string
	KeyID      string
	KeySecret  string
	Currency   string
	Timeout    time.Duration
	// Offline signs and creates gateway orders locally, for development.
	Offline bool
}

// CheckoutConfig tunes payment verification.
type CheckoutConfig struct {
	MaxVerifyAttempts int
	LockTTL           time.Duration
}

// Load reads the configuration from the environment, with defaults suitable
// for local development.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv() // Load environment variables

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("JWT_TTL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		Payment: PaymentConfig{
			GatewayURL: v.GetString("PAYMENT_GATEWAY_URL"),
			KeyID:      v.GetString("PAYMENT_KEY_ID"),
			KeySecret:  v.GetString("PAYMENT_KEY_SECRET"),
			Currency:   strings.ToUpper(v.GetString("PAYMENT_CURRENCY")),
			Timeout:    v.GetDuration("PAYMENT_GATEWAY_TIMEOUT"),
			Offline:    v.GetBool("PAYMENT_GATEWAY_OFFLINE"),
		},
		Checkout: CheckoutConfig{
			MaxVerifyAttempts: v.GetInt("CHECKOUT_MAX_VERIFY_ATTEMPTS"),
			LockTTL:           v.GetDuration("CHECKOUT_LOCK_TTL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Payment.Offline && cfg.Payment.KeySecret == "" {
		// Signatures only need to verify within this process
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate offline payment secret: %w", err)
		}
		cfg.Payment.KeySecret = secret
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:kelas.db?cache=shared")
	v.SetDefault("JWT_SECRET", "supersecretjwtkey")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYMENT_GATEWAY_URL", "https://api.razorpay.com")
	v.SetDefault("PAYMENT_KEY_ID", "rzp_test_local")
	v.SetDefault("PAYMENT_KEY_SECRET", "")
	v.SetDefault("PAYMENT_CURRENCY", "INR")
	v.SetDefault("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second)
	v.SetDefault("PAYMENT_GATEWAY_OFFLINE", false)
	v.SetDefault("CHECKOUT_MAX_VERIFY_ATTEMPTS", 0)
	v.SetDefault("CHECKOUT_LOCK_TTL", 30*time.Second)
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Payment.KeySecret == "" && !c.Payment.Offline {
		return fmt.Errorf("PAYMENT_KEY_SECRET is required unless PAYMENT_GATEWAY_OFFLINE is set")
	}
	if c.Checkout.MaxVerifyAttempts < 0 {
		return fmt.Errorf("CHECKOUT_MAX_VERIFY_ATTEMPTS must not be negative")
	}
	return nil
}
