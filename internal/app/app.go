// Package app wires configuration, stores and services for the binaries.
package app

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/api"
	"github.com/andresuchdata/cleanops/backend-go/internal/cache"
	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/normalize"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
	"github.com/andresuchdata/cleanops/backend-go/internal/service"
	"github.com/andresuchdata/cleanops/backend-go/internal/storage"
)

// App holds the wired services and the resources they share.
type App struct {
	Services *api.Services
	Storage  *storage.MinioClient
	redis    *redis.Client
}

// Build assembles the services on top of store. Redis and object storage are
// optional: without them the shopping-list cache is a noop, ledger locks are
// in-process and exports are disabled.
func Build(cfg *config.Config, store repository.Store) (*App, error) {
	dict, err := normalize.LoadDictionary(cfg.Inventory.CommonTermsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load common terms: %w", err)
	}
	log.Info().Int("terms", dict.Len()).Msg("common terms dictionary loaded")

	redisClient, err := cache.NewRedisClient(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if redisClient == nil {
		log.Info().Msg("redis disabled; using noop cache and local locks")
	}

	shoppingCache := cache.NewShoppingListCache(redisClient, cache.ShoppingListTTL(cfg.Cache))
	locker := cache.NewLocker(redisClient, time.Duration(cfg.Inventory.LockTTLSeconds)*time.Second, cfg.Inventory.LockRetries)

	normalizer := normalize.NewNormalizer(store, dict)
	reconciler := service.NewReconcileService(store, store, shoppingCache)
	consumption := service.NewConsumptionService(store)
	recommendations := service.NewRecommendationService(store, consumption, shoppingCache, cfg.Inventory)

	a := &App{
		Services: &api.Services{
			Catalog:        service.NewCatalogService(store, normalizer),
			Ledger:         service.NewLedgerService(store, normalizer, reconciler, locker, shoppingCache),
			Reconcile:      reconciler,
			Consumption:    consumption,
			Recommendation: recommendations,
		},
		redis: redisClient,
	}

	if cfg.Export.Enabled {
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			Region:    cfg.Export.Region,
			UseSSL:    cfg.Export.UseSSL,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init export storage: %w", err)
		}
		a.Storage = client
		a.Services.Export = service.NewExportService(client, recommendations, consumption, cfg.Export)
	}

	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
