// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/cleanops/backend-go/internal/api/handlers"
	"github.com/andresuchdata/cleanops/backend-go/internal/api/middleware"
	"github.com/andresuchdata/cleanops/backend-go/internal/service"
)

type Services struct {
	Catalog        *service.CatalogService
	Ledger         *service.LedgerService
	Reconcile      *service.ReconcileService
	Consumption    *service.ConsumptionService
	Recommendation *service.RecommendationService
	Export         *service.ExportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	tenantGroup := router.Group("/api/v1/tenants/:tenant")

	if services.Catalog != nil {
		catalogHandler := handlers.NewCatalogHandler(services.Catalog)
		supplyGroup := tenantGroup.Group("/supplies")
		{
			supplyGroup.GET("", catalogHandler.ListSupplies)
			supplyGroup.POST("", catalogHandler.CreateSupply)
			supplyGroup.GET("/:supply", catalogHandler.GetSupply)
			supplyGroup.PUT("/:supply", catalogHandler.UpdateSupply)
			supplyGroup.DELETE("/:supply", catalogHandler.DeactivateSupply)
		}
		tenantGroup.GET("/aliases", catalogHandler.ListAliases)
		tenantGroup.POST("/aliases", catalogHandler.CreateAlias)
		tenantGroup.POST("/normalize", catalogHandler.PreviewNormalization)
	}

	propertyGroup := tenantGroup.Group("/properties/:property")

	if services.Ledger != nil && services.Reconcile != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Ledger, services.Reconcile)
		propertyGroup.POST("/events", inventoryHandler.ApplyEvent)
		propertyGroup.POST("/recount", inventoryHandler.Recount)

		inventoryGroup := propertyGroup.Group("/inventory")
		{
			inventoryGroup.POST("", inventoryHandler.SeedRecord)
			inventoryGroup.PUT("/:supply/thresholds", inventoryHandler.SetThresholds)
			inventoryGroup.POST("/:supply/in", inventoryHandler.ApplyIn)
			inventoryGroup.POST("/:supply/adjust", inventoryHandler.ApplyAdjust)
			inventoryGroup.GET("/:supply/movements", inventoryHandler.ListMovements)
		}
	}

	if services.Recommendation != nil && services.Consumption != nil {
		reportHandler := handlers.NewReportHandler(services.Recommendation, services.Consumption, services.Export)
		tenantGroup.GET("/alerts", reportHandler.GetAlerts)

		propertyGroup.GET("/inventory", reportHandler.GetSnapshot)
		propertyGroup.GET("/consumption", reportHandler.GetConsumption)
		propertyGroup.GET("/recommendations", reportHandler.GetRecommendations)
		propertyGroup.GET("/recommendations/:supply", reportHandler.GetRecommendation)
		propertyGroup.GET("/shopping-list", reportHandler.GetShoppingList)
		propertyGroup.GET("/alerts", reportHandler.GetAlerts)

		exportGroup := propertyGroup.Group("/exports")
		{
			exportGroup.GET("", reportHandler.ListExports)
			exportGroup.POST("/shopping-list", reportHandler.ExportShoppingList)
			exportGroup.POST("/consumption", reportHandler.ExportConsumption)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
