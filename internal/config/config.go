package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	MySQLDSN  string `mapstructure:"MYSQL_DSN"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	PaymentBaseURL     string `mapstructure:"PAYMENT_BASE_URL"`
	PaymentAccessToken string `mapstructure:"PAYMENT_ACCESS_TOKEN"`
	StoreBaseURL       string `mapstructure:"STORE_BASE_URL"`

	// StaffTokens is a comma-separated list of token=name pairs.
	StaffTokens string `mapstructure:"STAFF_TOKENS"`
}

// Load reads an optional config file and the environment; the environment
// wins. Missing values fall back to local-development defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "order-events")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("EMAIL_FROM", "Storefront <no-reply@storefront.local>")
	v.SetDefault("PAYMENT_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("PAYMENT_ACCESS_TOKEN", "")
	v.SetDefault("STORE_BASE_URL", "http://localhost:3000")
	v.SetDefault("STAFF_TOKENS", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Brokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

// ParseStaffTokens turns "token=name,token2=name2" into a lookup map.
func (c *Config) ParseStaffTokens() map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(c.StaffTokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, name, found := strings.Cut(pair, "=")
		if !found || token == "" {
			continue
		}
		tokens[token] = name
	}
	return tokens
}
