package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/services"
)

// ThemeHandler handles the shared theme preference
type ThemeHandler struct {
	themeService services.ThemeServicer
}

// NewThemeHandler creates a new ThemeHandler
func NewThemeHandler(themeService services.ThemeServicer) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// SetThemeRequest represents the request body for changing the theme
type SetThemeRequest struct {
	Theme string `json:"theme" binding:"required,notblank"`
}

// GetTheme returns the current theme
// @Summary     Get theme
// @Description Get the current theme. Unknown stored values fall back to the default.
// @Tags        theme
// @Produce     json
// @Success     200 {object} map[string]string "Current theme"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /theme [get]
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	theme, err := h.themeService.Theme()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme changes the theme
// @Summary     Set theme
// @Description Change the theme shared by every user of this store
// @Tags        theme
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetThemeRequest true "Theme"
// @Success     200 {object} map[string]string "Updated theme"
// @Failure     400 {object} ErrorResponse "Unknown theme"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /theme [put]
func (h *ThemeHandler) SetTheme(c *gin.Context) {
	var req SetThemeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	theme, err := h.themeService.SetTheme(req.Theme)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
