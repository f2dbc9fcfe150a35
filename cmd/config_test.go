package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shipping/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := cmd.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, cmd.Defaults(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
kafka:
  brokers: [kafka-1:9092, kafka-2:9092]
jobs:
  tracking_poll_interval: 1m
lifecycle:
  auto_select_courier: false
`), 0o600))

	cfg, err := cmd.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Minute, cfg.Jobs.TrackingPollInterval)
	assert.False(t, cfg.Lifecycle.AutoSelectCourier)
	assert.Equal(t, "shipping.shipment-events", cfg.Kafka.Topic, "unset keys keep defaults")
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := cmd.Defaults()

	err := cfg.ApplyEnv(envMap(map[string]string{
		"DB_HOST":                "db",
		"KAFKA_BROKERS":          "a:9092, b:9092,",
		"LOGISTICS_EMAIL":        "ops@example.com",
		"TRACKING_POLL_INTERVAL": "45s",
		"BULK_WORKERS":           "8",
		"AUTO_SELECT_COURIER":    "false",
	}))

	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "ops@example.com", cfg.Logistics.Email)
	assert.Equal(t, 45*time.Second, cfg.Jobs.TrackingPollInterval)
	assert.Equal(t, 8, cfg.Lifecycle.BulkWorkers)
	assert.False(t, cfg.Lifecycle.AutoSelectCourier)
}

func TestConfig_ApplyEnv_ReportsMalformedValues(t *testing.T) {
	cfg := cmd.Defaults()

	err := cfg.ApplyEnv(envMap(map[string]string{
		"BULK_WORKERS": "many",
		"LOCK_WAIT":    "soon",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BULK_WORKERS")
	assert.Contains(t, err.Error(), "LOCK_WAIT")
}

func TestConfig_Validate(t *testing.T) {
	cfg := cmd.Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logistics.base_url")

	cfg.Logistics.BaseURL = "https://logistics.example"
	cfg.Logistics.Email = "ops@example.com"
	cfg.Logistics.Password = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := cmd.Defaults().Database
	d.Password = "pw"

	assert.Equal(t, "host=localhost port=5432 user=shipping password=pw dbname=shipping sslmode=disable", d.DSN())
}
