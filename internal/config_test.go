package internal

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, uint16(3000), cfg.Port)
	assert.False(t, cfg.Cart.MergeStrict)
	assert.Equal(t, 30*24*time.Hour, cfg.Cart.AbandonAfter)
	assert.Equal(t, "none", cfg.Events.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CART_MERGE_STRICT", "true")
	t.Setenv("CART_ABANDON_AFTER", "72h")
	t.Setenv("EVENTS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg := loadConfig()

	assert.Equal(t, uint16(8080), cfg.Port)
	assert.True(t, cfg.Cart.MergeStrict)
	assert.Equal(t, 72*time.Hour, cfg.Cart.AbandonAfter)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.KafkaBrokers)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown events driver", func(c *Config) { c.Events.Driver = "rabbit" }, "Config.Events.Driver"},
		{"kafka without brokers", func(c *Config) { c.Events.Driver = "kafka" }, "Config.Events.KafkaBrokers"},
		{"sentry enabled without dsn", func(c *Config) { c.Sentry.Enabled = true }, "Config.Sentry.DSN"},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 2 }, "Config.Tracing.SampleRatio"},
		{"missing database url", func(c *Config) { c.DatabaseUrl = "" }, "Config.DatabaseUrl"},
		{"zero abandon window", func(c *Config) { c.Cart.AbandonAfter = 0 }, "Config.Cart.AbandonAfter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "prod", "warn")

	logger.Info("dropped")
	logger.Warn("kept", "order_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(7), entry["order_id"])
	_, err := time.Parse(time.RFC3339Nano, entry["time"].(string))
	assert.NoError(t, err)
}
