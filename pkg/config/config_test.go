package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("BILLING_DATABASE_PASSWORD", "s3cret")
	t.Setenv("BILLING_PROVIDER_TIMEOUT", "3s")
	t.Setenv("BILLING_SERVER_HTTP_PORT", "8088")

	cfg := FromEnv("billing")

	assert.True(t, cfg.IsSet("database.password"))
	assert.Equal(t, "s3cret", cfg.GetString("database.password"))
	assert.Equal(t, 3*time.Second, cfg.GetDuration("provider.timeout"))
	assert.Equal(t, 8088, cfg.GetInt("server.http.port"))
	assert.False(t, cfg.IsSet("service.stripe_secret_key"))
}
