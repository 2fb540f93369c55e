package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	const key = "PARTYWEAVER_TEST_STRING"
	t.Setenv(key, "")
	assert.Equal(t, "fallback", getEnv(key, "fallback"))
	t.Setenv(key, "value")
	assert.Equal(t, "value", getEnv(key, "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	const key = "PARTYWEAVER_TEST_INT"
	t.Setenv(key, "")
	assert.Equal(t, 7, getEnvInt(key, 7))
	t.Setenv(key, "abc")
	assert.Equal(t, 7, getEnvInt(key, 7))
	t.Setenv(key, "42")
	assert.Equal(t, 42, getEnvInt(key, 7))
}

func TestGetEnvBool(t *testing.T) {
	const key = "PARTYWEAVER_TEST_BOOL"
	t.Setenv(key, "")
	assert.False(t, getEnvBool(key, false))
	t.Setenv(key, "maybe")
	assert.True(t, getEnvBool(key, true))
	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))
}

func TestLoadEmailLogOnly(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("EMAIL_LOG_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Email.Configured())
	assert.True(t, cfg.Email.LogOnly)
}

func TestLoad(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://party.example.com/")
	t.Setenv("VONAGE_API_KEY", "key")
	t.Setenv("VONAGE_API_SECRET", "secret")
	t.Setenv("MAGIC_LINK_TTL_MINUTES", "30")
	t.Setenv("DISPLAY_TIMEZONE", "America/New_York")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://party.example.com", cfg.App.PublicBaseURL)
	assert.True(t, cfg.SMS.Configured())
	assert.Equal(t, 30*time.Minute, cfg.MagicLink.TTL)
	assert.Equal(t, "America/New_York", cfg.App.Location().String())
}

func TestLoadSMSNotConfigured(t *testing.T) {
	t.Setenv("VONAGE_API_KEY", "key")
	t.Setenv("VONAGE_API_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.SMS.Configured())
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "non-positive magic link ttl", key: "MAGIC_LINK_TTL_MINUTES", value: "0", wantErr: "MAGIC_LINK_TTL_MINUTES must be > 0"},
		{name: "unknown timezone", key: "DISPLAY_TIMEZONE", value: "Mars/Olympus", wantErr: "DISPLAY_TIMEZONE is invalid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "partyweaver", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/partyweaver?sslmode=disable", c.DSN())

	c.URL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}
