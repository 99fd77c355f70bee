package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "order-events", cfg.KafkaTopic)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Brokers())
}

func TestParseStaffTokens(t *testing.T) {
	cfg := &Config{StaffTokens: "tok-1=maria, tok-2=camilo,,=nameless"}

	tokens := cfg.ParseStaffTokens()
	assert.Equal(t, map[string]string{"tok-1": "maria", "tok-2": "camilo"}, tokens)
}

func TestParseStaffTokens_Empty(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.ParseStaffTokens())
}
