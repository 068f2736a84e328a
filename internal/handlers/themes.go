package handlers

import (
	"net/http"
	"slices"

	"nekocare/internal/auth"
	"nekocare/internal/dto"
	"nekocare/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ThemeHandler serves the footprint-point theme shop and layout selection.
type ThemeHandler struct {
	svc *service.ThemeService
	log *zap.Logger
}

func NewThemeHandler(svc *service.ThemeService, log *zap.Logger) *ThemeHandler {
	return &ThemeHandler{svc: svc, log: log}
}

// Shop godoc
// @Summary      Theme catalog with ownership and point balance
// @Tags         themes
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ShopResponse
// @Router       /themes [get]
func (h *ThemeHandler) Shop(c *gin.Context) {
	shop, err := h.svc.Shop(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "theme shop", err)
		return
	}
	out := dto.ShopResponse{
		Themes:   make([]dto.ThemeResponse, len(shop.Themes)),
		Settings: settingsToResponse(shop.Settings),
	}
	for i, th := range shop.Themes {
		out.Themes[i] = dto.ThemeResponse{ID: th.ID, Name: th.Name, Price: th.Price, Owned: slices.Contains(shop.Owned, th.ID)}
	}
	c.JSON(http.StatusOK, out)
}

// Purchase godoc
// @Summary      Buy a theme with footprint points
// @Tags         themes
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Theme ID"
// @Success      200  {object}  dto.SettingsResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /themes/{id}/purchase [post]
func (h *ThemeHandler) Purchase(c *gin.Context) {
	st, err := h.svc.Purchase(c.Request.Context(), auth.HouseholdIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, "purchase theme", err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}

// SetLayout godoc
// @Summary      Choose the home layout
// @Tags         themes
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.LayoutRequest  true  "Layout"
// @Success      200   {object}  dto.SettingsResponse
// @Failure      400   {object}  map[string]string
// @Router       /settings/layout [put]
func (h *ThemeHandler) SetLayout(c *gin.Context) {
	var req dto.LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	st, err := h.svc.SetLayout(c.Request.Context(), auth.HouseholdIDFromContext(c), req.Layout)
	if err != nil {
		writeError(c, h.log, "set layout", err)
		return
	}
	c.JSON(http.StatusOK, settingsToResponse(st))
}
