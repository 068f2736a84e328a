package handlers

import (
	"net/http"

	"nekocare/internal/auth"
	"nekocare/internal/dto"
	"nekocare/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HouseholdHandler struct {
	svc *service.HouseholdService
	log *zap.Logger
}

func NewHouseholdHandler(svc *service.HouseholdService, log *zap.Logger) *HouseholdHandler {
	return &HouseholdHandler{svc: svc, log: log}
}

// ListCats godoc
// @Summary      List the household's cats
// @Tags         household
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  dto.CatResponse
// @Router       /cats [get]
func (h *HouseholdHandler) ListCats(c *gin.Context) {
	cats, err := h.svc.ListCats(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list cats", err)
		return
	}
	c.JSON(http.StatusOK, catsToResponses(cats))
}

// AddCat godoc
// @Summary      Add a cat
// @Tags         household
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CatRequest  true  "Cat"
// @Success      201   {object}  dto.CatResponse
// @Failure      400   {object}  map[string]string
// @Router       /cats [post]
func (h *HouseholdHandler) AddCat(c *gin.Context) {
	var req dto.CatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.svc.AddCat(c.Request.Context(), auth.HouseholdIDFromContext(c), req.Name, req.PhotoPath)
	if err != nil {
		writeError(c, h.log, "add cat", err)
		return
	}
	c.JSON(http.StatusCreated, dto.CatResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		PhotoPath: cat.PhotoPath,
		SortOrder: cat.SortOrder,
		CreatedAt: cat.CreatedAt,
	})
}

// Settings godoc
// @Summary      Household settings and point balance
// @Tags         household
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.SettingsResponse
// @Router       /settings [get]
func (h *HouseholdHandler) Settings(c *gin.Context) {
	st, err := h.svc.Settings(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "settings", err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}

// SetDayStart godoc
// @Summary      Set the hour the business day starts
// @Tags         household
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.DayStartRequest  true  "Hour (0-23)"
// @Success      200   {object}  dto.SettingsResponse
// @Failure      400   {object}  map[string]string
// @Router       /settings/day-start [put]
func (h *HouseholdHandler) SetDayStart(c *gin.Context) {
	var req dto.DayStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	st, err := h.svc.SetDayStartHour(c.Request.Context(), auth.HouseholdIDFromContext(c), *req.Hour)
	if err != nil {
		writeError(c, h.log, "set day start", err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}
