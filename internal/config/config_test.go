package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func loadIsolated() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func TestDefaults(t *testing.T) {
	cfg := loadIsolated()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 21, cfg.Inventory.HorizonDays)
	assert.Equal(t, 30, cfg.Inventory.LookbackDays)
	assert.Equal(t, 10, cfg.Inventory.LockTTLSeconds)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, int64(10), cfg.Database.MaxConcurrentTx)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=cleanops sslmode=disable", cfg.Database.DSN())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("INVENTORY_HORIZON_DAYS", "14")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://admin.example.com,https://ops.example.com")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/cleanops?sslmode=disable")
	t.Setenv("CACHE_ENABLED", "true")

	cfg := loadIsolated()

	assert.Equal(t, 14, cfg.Inventory.HorizonDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/cleanops?sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Cache.Enabled)
}
