package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort            string
	DatabaseDSN        string
	RedisURL           string
	RabbitMQURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	OTPTTL             time.Duration
	OTPHashCost        int
	PhoneDefaultRegion string
	WhatsApp           WhatsAppConfig
	AdminPhones        []string
}

type WhatsAppConfig struct {
	APIURL        string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	OTPTemplate   string
	OrderTemplate string
	Language      string
}

// Enabled reports whether Cloud API credentials are configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "supersecretjwtkey")
	v.SetDefault("TOKEN_TTL", "72h")
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_HASH_COST", 10)
	v.SetDefault("PHONE_DEFAULT_REGION", "IN")
	v.SetDefault("WHATSAPP_API_URL", "https://graph.facebook.com")
	v.SetDefault("WHATSAPP_API_VERSION", "v18.0")
	v.SetDefault("WHATSAPP_PHONE_NUMBER_ID", "")
	v.SetDefault("WHATSAPP_ACCESS_TOKEN", "")
	v.SetDefault("WHATSAPP_OTP_TEMPLATE", "marmomart_otp_template")
	v.SetDefault("WHATSAPP_ORDER_TEMPLATE", "marmomart_order_update")
	v.SetDefault("WHATSAPP_LANGUAGE", "en")
	v.SetDefault("ADMIN_PHONES", "")
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:            v.GetString("APP_PORT"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		RedisURL:           v.GetString("REDIS_URL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		OTPTTL:             v.GetDuration("OTP_TTL"),
		OTPHashCost:        v.GetInt("OTP_HASH_COST"),
		PhoneDefaultRegion: v.GetString("PHONE_DEFAULT_REGION"),
		WhatsApp: WhatsAppConfig{
			APIURL:        v.GetString("WHATSAPP_API_URL"),
			APIVersion:    v.GetString("WHATSAPP_API_VERSION"),
			PhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
			AccessToken:   v.GetString("WHATSAPP_ACCESS_TOKEN"),
			OTPTemplate:   v.GetString("WHATSAPP_OTP_TEMPLATE"),
			OrderTemplate: v.GetString("WHATSAPP_ORDER_TEMPLATE"),
			Language:      v.GetString("WHATSAPP_LANGUAGE"),
		},
		AdminPhones: splitList(v.GetString("ADMIN_PHONES")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
