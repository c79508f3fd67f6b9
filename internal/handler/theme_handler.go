package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/dcu-portal-api/internal/dto"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	"github.com/noah-isme/dcu-portal-api/internal/service"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
	"github.com/noah-isme/dcu-portal-api/pkg/logger"
	"github.com/noah-isme/dcu-portal-api/pkg/response"
)

// SystemThemeHeader carries the browser's preferred colour scheme.
const SystemThemeHeader = "Sec-CH-Prefers-Color-Scheme"

type themeService interface {
	Get(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error)
	Set(ctx context.Context, clientID string, theme, system models.Theme) (models.ThemePreference, error)
	Toggle(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error)
	Reset(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error)
}

// ThemeHandler exposes the per-client light/dark preference.
type ThemeHandler struct {
	service   themeService
	validator *validator.Validate
}

// NewThemeHandler constructs the handler.
func NewThemeHandler(service themeService, validate *validator.Validate) *ThemeHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ThemeHandler{service: service, validator: validate}
}

// Get godoc
// @Summary Resolve the client's theme
// @Tags Preferences
// @Produce json
// @Param X-Client-ID header string true "Client identifier"
// @Param Sec-CH-Prefers-Color-Scheme header string false "System colour scheme"
// @Success 200 {object} response.Envelope
// @Router /preferences/theme [get]
func (h *ThemeHandler) Get(c *gin.Context) {
	pref, err := h.service.Get(c.Request.Context(), clientIDFrom(c), systemTheme(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Set godoc
// @Summary Save the client's theme
// @Tags Preferences
// @Accept json
// @Produce json
// @Param X-Client-ID header string true "Client identifier"
// @Param payload body dto.ThemeRequest true "Theme"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences/theme [put]
func (h *ThemeHandler) Set(c *gin.Context) {
	var req dto.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid theme payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "theme must be light or dark"))
		return
	}
	pref, err := h.service.Set(c.Request.Context(), clientIDFrom(c), models.Theme(req.Theme), systemTheme(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Toggle godoc
// @Summary Switch between light and dark
// @Tags Preferences
// @Produce json
// @Param X-Client-ID header string true "Client identifier"
// @Success 200 {object} response.Envelope
// @Router /preferences/theme/toggle [post]
func (h *ThemeHandler) Toggle(c *gin.Context) {
	pref, err := h.service.Toggle(c.Request.Context(), clientIDFrom(c), systemTheme(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Reset godoc
// @Summary Forget the saved theme
// @Tags Preferences
// @Produce json
// @Param X-Client-ID header string true "Client identifier"
// @Success 200 {object} response.Envelope
// @Router /preferences/theme [delete]
func (h *ThemeHandler) Reset(c *gin.Context) {
	pref, err := h.service.Reset(c.Request.Context(), clientIDFrom(c), systemTheme(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

func clientIDFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(logger.ClientHeader))
}

func systemTheme(c *gin.Context) models.Theme {
	return service.ParseSystemHint(c.GetHeader(SystemThemeHeader))
}
