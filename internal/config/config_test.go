package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("BOOKING_LOCK_TIMEOUT", "")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.Booking.LockTimeout)
	assert.False(t, cfg.Payment.IsProduction)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_LOCK_TIMEOUT", "3s")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.Booking.LockTimeout)
	assert.True(t, cfg.Payment.IsProduction)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := &Config{App: AppConfig{Timezone: "Mars/Olympus"}}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.campus.test", Email: "dining@campus.test"}.Enabled())
}
