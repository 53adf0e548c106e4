package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("/upi", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.GetUpiSettings)
		settings.PUT("/upi", middleware.RequireRole(model.RoleAdmin), h.UpdateUpiSettings)
	}
}

// GetUpiSettings returns the UPI payment identifier used on bills
// @Summary      Get UPI settings
// @Description  Returns the stored UPI id, falling back to the configured default; never fails
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.UpiSettingsResponse}
// @Router       /api/settings/upi [get]
func (h *SettingsHandler) GetUpiSettings(c *gin.Context) {
	settings := h.settingsService.GetUpiSettings(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateUpiSettings stores a new UPI payment identifier
// @Summary      Update UPI settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateUpiSettingsRequest  true  "UPI settings"
// @Success      200      {object}  response.Response{data=service.UpiSettingsResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/upi [put]
func (h *SettingsHandler) UpdateUpiSettings(c *gin.Context) {
	var req service.UpdateUpiSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settings, err := h.settingsService.UpdateUpiSettings(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
