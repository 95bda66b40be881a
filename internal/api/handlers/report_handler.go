package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/cleanops/backend-go/internal/service"
)

const defaultReportLookbackDays = 30

// ReportHandler serves the read side: snapshot, consumption, recommendations
// and exports.
type ReportHandler struct {
	recommendations *service.RecommendationService
	consumption     *service.ConsumptionService
	exports         *service.ExportService
	now             func() time.Time
}

func NewReportHandler(recs *service.RecommendationService, consumption *service.ConsumptionService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{
		recommendations: recs,
		consumption:     consumption,
		exports:         exports,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (h *ReportHandler) GetSnapshot(c *gin.Context) {
	items, err := h.recommendations.GetInventorySnapshot(c.Request.Context(), c.Param("tenant"), c.Param("property"))
	if err != nil {
		respondError(c, "failed to fetch inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *ReportHandler) GetConsumption(c *gin.Context) {
	from, to, err := parseRange(c, h.now(), defaultReportLookbackDays)
	if err != nil {
		badRequest(c, "invalid date range", err)
		return
	}

	report, err := h.consumption.Calculate(c.Request.Context(), c.Param("tenant"), c.Param("property"), from, to)
	if err != nil {
		respondError(c, "failed to calculate consumption", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetRecommendations(c *gin.Context) {
	horizon := parsePositiveIntWithDefault(c.Query("horizon_days"), 0)
	items, err := h.recommendations.GetRecommendations(c.Request.Context(), c.Param("tenant"), c.Param("property"), horizon)
	if err != nil {
		respondError(c, "failed to build recommendations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *ReportHandler) GetRecommendation(c *gin.Context) {
	horizon := parsePositiveIntWithDefault(c.Query("horizon_days"), 0)
	rec, err := h.recommendations.GetRecommendation(c.Request.Context(), c.Param("tenant"), c.Param("property"), c.Param("supply"), horizon)
	if err != nil {
		respondError(c, "failed to build recommendation", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ReportHandler) GetShoppingList(c *gin.Context) {
	horizon := parsePositiveIntWithDefault(c.Query("horizon_days"), 0)
	list, err := h.recommendations.GetShoppingList(c.Request.Context(), c.Param("tenant"), c.Param("property"), horizon)
	if err != nil {
		respondError(c, "failed to build shopping list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAlerts serves both the tenant-wide and the per-property alert routes.
func (h *ReportHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.recommendations.GetLowStockAlerts(c.Request.Context(), c.Param("tenant"), c.Param("property"))
	if err != nil {
		respondError(c, "failed to fetch low stock alerts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": alerts, "total": len(alerts)})
}

func (h *ReportHandler) ExportShoppingList(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are disabled"})
		return
	}
	horizon := parsePositiveIntWithDefault(c.Query("horizon_days"), 0)
	res, err := h.exports.ExportShoppingList(c.Request.Context(), c.Param("tenant"), c.Param("property"), horizon)
	if err != nil {
		respondError(c, "failed to export shopping list", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ReportHandler) ExportConsumption(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are disabled"})
		return
	}
	from, to, err := parseRange(c, h.now(), defaultReportLookbackDays)
	if err != nil {
		badRequest(c, "invalid date range", err)
		return
	}
	res, err := h.exports.ExportConsumption(c.Request.Context(), c.Param("tenant"), c.Param("property"), from, to)
	if err != nil {
		respondError(c, "failed to export consumption", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ReportHandler) ListExports(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are disabled"})
		return
	}
	objects, err := h.exports.ListExports(c.Request.Context(), c.Param("tenant"), c.Param("property"))
	if err != nil {
		respondError(c, "failed to list exports", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": objects, "total": len(objects)})
}
