package handlers

import (
	"net/http"
	"time"

	"nekocare/internal/auth"
	dom "nekocare/internal/domain"
	"nekocare/internal/dto"
	"nekocare/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	svc *service.CareService
	loc *time.Location
	log *zap.Logger
}

// NewInventoryHandler returns an InventoryHandler; purchase dates are read in loc.
func NewInventoryHandler(svc *service.CareService, loc *time.Location, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, loc: loc, log: log}
}

// List godoc
// @Summary      List supplies
// @Tags         inventory
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  dto.InventoryResponse
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.ListInventory(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list inventory", err)
		return
	}
	out := make([]dto.InventoryResponse, len(items))
	for i, it := range items {
		out[i] = inventoryToResponse(it)
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Add a supply
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.InventoryCreateRequest  true  "Supply"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  map[string]string
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.InventoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	it, err := h.svc.CreateInventoryItem(c.Request.Context(), dom.InventoryItem{
		HouseholdID: auth.HouseholdIDFromContext(c),
		Label:       req.Label,
		RangeMin:    req.RangeMin,
		RangeMax:    req.RangeMax,
		AlertDays:   req.AlertDays,
		LastBought:  req.LastBought.In(h.loc),
		StockLevel:  dom.StockLevel(req.StockLevel),
	})
	if err != nil {
		writeError(c, h.log, "create inventory item", err)
		return
	}
	c.JSON(http.StatusCreated, inventoryToResponse(it))
}

// Update godoc
// @Summary      Update a supply
// @Description  Partial update. bought=true records a purchase today and resets the stock level to full.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                        true  "Item ID"
// @Param        body  body      dto.InventoryPatchRequest  true  "Patch"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /inventory/{id} [patch]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.InventoryPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	patch := dom.InventoryPatch{
		Label:     req.Label,
		RangeMin:  req.RangeMin,
		RangeMax:  req.RangeMax,
		AlertDays: req.AlertDays,
		Enabled:   req.Enabled,
	}
	if req.LastBought != nil {
		patch.LastBought = req.LastBought.In(h.loc)
	}
	if req.StockLevel != nil {
		lvl := dom.StockLevel(*req.StockLevel)
		patch.StockLevel = &lvl
	}
	it, err := h.svc.UpdateInventoryItem(c.Request.Context(), auth.HouseholdIDFromContext(c), id,
		service.InventoryUpdate{Patch: patch, Bought: req.Bought})
	if err != nil {
		writeError(c, h.log, "update inventory item", err)
		return
	}
	c.JSON(http.StatusOK, inventoryToResponse(it))
}
