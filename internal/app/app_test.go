package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository/memory"
)

func TestBuildWithoutOptionalBackends(t *testing.T) {
	a, err := Build(&config.Config{}, memory.New())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Services.Ledger)
	assert.NotNil(t, a.Services.Recommendation)
	assert.Nil(t, a.Services.Export)
	assert.Nil(t, a.Storage)
}

func TestBuildWithRedisAndExports(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Cache:     config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()},
		Inventory: config.InventoryConfig{HorizonDays: 14, LockTTLSeconds: 5},
		Export: config.ExportConfig{
			Enabled: true, Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "exports",
		},
	}

	a, err := Build(cfg, memory.New())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Services.Export)
	require.NotNil(t, a.Storage)
	assert.Equal(t, 14, a.Services.Recommendation.HorizonDays())

	// ledger writes go through the redis lock
	ctx := context.Background()
	supply, err := a.Services.Catalog.CreateSupply(ctx, "t1", domain.SupplyInput{Name: "Savo"})
	require.NoError(t, err)
	_, err = a.Services.Ledger.ApplyManualIn(ctx, "t1", "p1", supply.ID, 3, domain.SourceManual)
	require.NoError(t, err)
}

func TestBuildRejectsBadDictionary(t *testing.T) {
	cfg := &config.Config{Inventory: config.InventoryConfig{CommonTermsFile: "/does/not/exist.yaml"}}
	_, err := Build(cfg, memory.New())
	assert.Error(t, err)
}
