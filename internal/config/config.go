package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/wekeepgrowing/salon-billing/pkg/config"
	"github.com/wekeepgrowing/salon-billing/pkg/logger"
	"github.com/wekeepgrowing/salon-billing/pkg/messaging"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BILLING"

type Config struct {
	Service    ServiceConfig     `yaml:"service"`
	Database   DatabaseConfig    `yaml:"database"`
	Server     ServerConfig      `yaml:"server"`
	Redis      messaging.Options `yaml:"redis"`
	Log        logger.Config     `yaml:"log"`
	JWT        JWTConfig         `yaml:"jwt"`
	Provider   ProviderConfig    `yaml:"provider"`
	Reporting  ReportingConfig   `yaml:"reporting"`
	Accounting AccountingConfig  `yaml:"accounting"`
	Audit      AuditConfig       `yaml:"audit"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LoadConfig reads the YAML config file and applies BILLING_* environment
// overrides on top of it. A .env file in the working directory is honoured.
func LoadConfig() (*Config, error) {
	pkgconfig.LoadDotEnv()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/billing.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv(pkgconfig.FromEnv(envPrefix))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML config bytes and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used for any key the file leaves out.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "billing",
			Environment: "development",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Server: ServerConfig{
			HTTP:            HTTPConfig{Host: "0.0.0.0", Port: 8080},
			GRPC:            GRPCConfig{Host: "0.0.0.0", Port: 9090},
			ShutdownTimeout: 15 * time.Second,
		},
		Log: logger.Config{Level: "info", Format: "json", Output: "stdout"},
		Provider: ProviderConfig{
			Timeout:          5 * time.Second,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Reporting: ReportingConfig{
			Timezone:    "UTC",
			TrendMonths: 6,
		},
		Accounting: DefaultAccounting(),
		Audit: AuditConfig{
			Channel:        "billing.audit",
			BufferSize:     256,
			PublishTimeout: 2 * time.Second,
		},
	}
}

// applyEnv overlays secrets and deployment-specific values from the environment.
func (c *Config) applyEnv(env pkgconfig.Config) {
	overrideString(env, "service.environment", &c.Service.Environment)
	overrideString(env, "service.client_url", &c.Service.ClientURL)
	overrideString(env, "service.stripe_secret_key", &c.Service.StripeSecretKey)
	overrideString(env, "service.stripe_webhook_secret", &c.Service.StripeWebhookSecret)
	overrideString(env, "service.prices.monthly", &c.Service.Prices.Monthly)
	overrideString(env, "service.prices.yearly", &c.Service.Prices.Yearly)
	overrideString(env, "database.host", &c.Database.Host)
	overrideString(env, "database.name", &c.Database.Name)
	overrideString(env, "database.user", &c.Database.User)
	overrideString(env, "database.password", &c.Database.Password)
	overrideString(env, "redis.addr", &c.Redis.Addr)
	overrideString(env, "redis.password", &c.Redis.Password)
	overrideString(env, "jwt.secret", &c.JWT.Secret)
	overrideString(env, "log.level", &c.Log.Level)
	overrideString(env, "reporting.acquisition_cost", &c.Reporting.AcquisitionCost)

	if env.IsSet("database.port") {
		c.Database.Port = env.GetInt("database.port")
	}
	if env.IsSet("server.http.port") {
		c.Server.HTTP.Port = env.GetInt("server.http.port")
	}
	if env.IsSet("provider.timeout") {
		c.Provider.Timeout = env.GetDuration("provider.timeout")
	}
}

func overrideString(env pkgconfig.Config, key string, dst *string) {
	if env.IsSet(key) {
		*dst = env.GetString(key)
	}
}

// Validate rejects configurations the billing core cannot run safely with.
func (c *Config) Validate() error {
	if c.Service.StripeWebhookSecret == "" {
		return fmt.Errorf("service.stripe_webhook_secret is required")
	}
	if err := c.Service.Prices.Validate(); err != nil {
		return err
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	if _, err := c.Reporting.Location(); err != nil {
		return err
	}
	if c.Reporting.TrendMonths <= 0 {
		return fmt.Errorf("reporting.trend_months must be positive")
	}
	if _, err := c.Reporting.AcquisitionCostValue(); err != nil {
		return err
	}
	return nil
}
