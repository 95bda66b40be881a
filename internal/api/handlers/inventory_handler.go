package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/service"
)

// InventoryHandler serves ledger writes and recounts.
type InventoryHandler struct {
	ledger     *service.LedgerService
	reconciler *service.ReconcileService
}

func NewInventoryHandler(ledger *service.LedgerService, reconciler *service.ReconcileService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reconciler: reconciler}
}

type seedRecordRequest struct {
	SupplyID   string  `json:"supply_id" binding:"required"`
	InitialQty float64 `json:"initial_qty"`
	MinQty     float64 `json:"min_qty"`
	MaxQty     float64 `json:"max_qty"`
}

func (h *InventoryHandler) SeedRecord(c *gin.Context) {
	var req seedRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid seed payload", err)
		return
	}

	rec, err := h.ledger.SeedRecord(c.Request.Context(), c.Param("tenant"), c.Param("property"), req.SupplyID,
		req.InitialQty, req.MinQty, req.MaxQty)
	if err != nil {
		respondError(c, "failed to seed inventory record", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type thresholdsRequest struct {
	MinQty float64 `json:"min_qty"`
	MaxQty float64 `json:"max_qty"`
}

func (h *InventoryHandler) SetThresholds(c *gin.Context) {
	var req thresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid thresholds payload", err)
		return
	}

	err := h.ledger.SetThresholds(c.Request.Context(), c.Param("tenant"), c.Param("property"), c.Param("supply"),
		req.MinQty, req.MaxQty)
	if err != nil {
		respondError(c, "failed to set thresholds", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type manualInRequest struct {
	Quantity float64 `json:"quantity"`
	Source   string  `json:"source"`
}

func (h *InventoryHandler) ApplyIn(c *gin.Context) {
	var req manualInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid movement payload", err)
		return
	}

	res, err := h.ledger.ApplyManualIn(c.Request.Context(), c.Param("tenant"), c.Param("property"), c.Param("supply"),
		req.Quantity, req.Source)
	if err != nil {
		respondError(c, "failed to record restock", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type adjustRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason"`
}

func (h *InventoryHandler) ApplyAdjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid movement payload", err)
		return
	}

	res, err := h.ledger.ApplyManualAdjust(c.Request.Context(), c.Param("tenant"), c.Param("property"), c.Param("supply"),
		req.Quantity, req.Reason)
	if err != nil {
		respondError(c, "failed to record adjustment", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter := domain.MovementFilter{
		TenantID:   c.Param("tenant"),
		PropertyID: c.Param("property"),
		SupplyID:   c.Param("supply"),
		Page:       parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:   parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}

	page, err := h.ledger.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to fetch movements", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *InventoryHandler) Recount(c *gin.Context) {
	result := h.reconciler.Recount(c.Request.Context(), c.Param("tenant"), c.Param("property"))
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// ApplyEvent ingests an operational event posted by the operations app.
// Tenant and property come from the path.
func (h *InventoryHandler) ApplyEvent(c *gin.Context) {
	var ev domain.OperationalEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, "invalid event payload", err)
		return
	}
	if ev.ID == "" {
		badRequest(c, "event id is required", nil)
		return
	}
	ev.TenantID = c.Param("tenant")
	ev.PropertyID = c.Param("property")

	result := h.ledger.ApplyFromEvent(c.Request.Context(), ev)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}
