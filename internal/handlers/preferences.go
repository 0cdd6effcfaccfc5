package handlers

import (
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PreferencesHandler struct {
	preferencesService services.PreferencesService
}

func NewPreferencesHandler(preferencesService services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService}
}

func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferencesService.Get(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	var input services.UpdatePreferencesInput
	if !bindJSON(c, &input) {
		return
	}
	prefs, err := h.preferencesService.Update(c.Request.Context(), userID(c), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
