package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "IN", cfg.PhoneDefaultRegion)
	assert.Equal(t, "marmomart_otp_template", cfg.WhatsApp.OTPTemplate)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Empty(t, cfg.AdminPhones)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("ADMIN_PHONES", "+919876543210, +919000000000,")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, []string{"+919876543210", "+919000000000"}, cfg.AdminPhones)
	assert.True(t, cfg.WhatsApp.Enabled())
}
