package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
service:
  name: billing
  stripe_webhook_secret: whsec_test
  prices:
    monthly: price_monthly
    yearly: price_yearly
database:
  name: salon
  user: salon
provider:
  timeout: 2s
reporting:
  timezone: Europe/Paris
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "salon", cfg.Database.Name)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 6, cfg.Reporting.TrendMonths)
	assert.Equal(t, "411000", cfg.Accounting.ReceivableAccount)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("missing webhook secret", func(t *testing.T) {
		cfg, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		cfg.Service.StripeWebhookSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("same price for both plans", func(t *testing.T) {
		cfg, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		cfg.Service.Prices.Yearly = cfg.Service.Prices.Monthly
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown timezone", func(t *testing.T) {
		cfg, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		cfg.Reporting.Timezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero provider timeout", func(t *testing.T) {
		cfg, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		cfg.Provider.Timeout = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("BILLING_DATABASE_PASSWORD", "from-env")
	t.Setenv("BILLING_SERVICE_STRIPE_WEBHOOK_SECRET", "whsec_env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "whsec_env", cfg.Service.StripeWebhookSecret)
}

func TestAcquisitionCost(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	cost, err := cfg.Reporting.AcquisitionCostValue()
	require.NoError(t, err)
	assert.Nil(t, cost)

	cfg.Reporting.AcquisitionCost = "1200.50"
	cost, err = cfg.Reporting.AcquisitionCostValue()
	require.NoError(t, err)
	require.NotNil(t, cost)
	assert.Equal(t, "1200.5", cost.String())

	cfg.Reporting.AcquisitionCost = "-1"
	assert.Error(t, cfg.Validate())
}
