package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/service"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) CreateSupply(c *gin.Context) {
	var in domain.SupplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid supply payload", err)
		return
	}

	supply, err := h.service.CreateSupply(c.Request.Context(), c.Param("tenant"), in)
	if err != nil {
		respondError(c, "failed to create supply", err)
		return
	}
	c.JSON(http.StatusCreated, supply)
}

func (h *CatalogHandler) UpdateSupply(c *gin.Context) {
	var in domain.SupplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid supply payload", err)
		return
	}

	supply, err := h.service.UpdateSupply(c.Request.Context(), c.Param("tenant"), c.Param("supply"), in)
	if err != nil {
		respondError(c, "failed to update supply", err)
		return
	}
	c.JSON(http.StatusOK, supply)
}

func (h *CatalogHandler) DeactivateSupply(c *gin.Context) {
	if err := h.service.DeactivateSupply(c.Request.Context(), c.Param("tenant"), c.Param("supply")); err != nil {
		respondError(c, "failed to deactivate supply", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) GetSupply(c *gin.Context) {
	supply, err := h.service.GetSupply(c.Request.Context(), c.Param("tenant"), c.Param("supply"))
	if err != nil {
		respondError(c, "failed to fetch supply", err)
		return
	}
	c.JSON(http.StatusOK, supply)
}

func (h *CatalogHandler) ListSupplies(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	supplies, err := h.service.ListSupplies(c.Request.Context(), c.Param("tenant"), includeInactive)
	if err != nil {
		respondError(c, "failed to fetch supplies", err)
		return
	}
	c.JSON(http.StatusOK, supplies)
}

type createAliasRequest struct {
	Alias    string `json:"alias" binding:"required"`
	SupplyID string `json:"supply_id" binding:"required"`
}

func (h *CatalogHandler) CreateAlias(c *gin.Context) {
	var req createAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid alias payload", err)
		return
	}

	alias, err := h.service.CreateAlias(c.Request.Context(), c.Param("tenant"), req.Alias, req.SupplyID)
	if err != nil {
		respondError(c, "failed to create alias", err)
		return
	}
	c.JSON(http.StatusCreated, alias)
}

func (h *CatalogHandler) ListAliases(c *gin.Context) {
	aliases, err := h.service.ListAliases(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		respondError(c, "failed to fetch aliases", err)
		return
	}
	c.JSON(http.StatusOK, aliases)
}

type normalizeRequest struct {
	Items []domain.ItemMention `json:"items"`
	Note  string               `json:"note"`
}

// PreviewNormalization resolves text without touching the ledger.
func (h *CatalogHandler) PreviewNormalization(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid normalize payload", err)
		return
	}

	items := h.service.PreviewNormalization(c.Request.Context(), c.Param("tenant"), req.Items, req.Note)
	c.JSON(http.StatusOK, gin.H{"items": items})
}
