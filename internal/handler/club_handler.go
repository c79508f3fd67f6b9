package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dcu-portal-api/internal/middleware"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	"github.com/noah-isme/dcu-portal-api/internal/service"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
	"github.com/noah-isme/dcu-portal-api/pkg/response"
)

type clubService interface {
	List(ctx context.Context, req service.ListClubsRequest) (*service.ClubListResult, error)
	Get(ctx context.Context, id int64) (*models.Club, error)
	Popular(ctx context.Context, limit int) ([]models.ClubSummary, error)
	Stats(ctx context.Context) (models.DirectoryStats, error)
	Join(ctx context.Context, id int64) (*models.JoinResult, error)
	Export(ctx context.Context, req service.ExportClubsRequest) (*service.ExportResult, error)
}

// ClubHandler exposes the stateless club directory endpoints.
type ClubHandler struct {
	service clubService
}

// NewClubHandler constructs the handler.
func NewClubHandler(service clubService) *ClubHandler {
	return &ClubHandler{service: service}
}

// List godoc
// @Summary List clubs
// @Description Search, filter, sort and paginate the club directory. Out-of-range pages are clamped.
// @Tags Clubs
// @Produce json
// @Param search query string false "Substring matched against name, description and activities"
// @Param category query string false "all, recruiting, academic, arts, sports, volunteer or hobby"
// @Param sort query string false "name, memberCount, category or establishedYear"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /clubs [get]
func (h *ClubHandler) List(c *gin.Context) {
	var req service.ListClubsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	res, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "query", res.Query)
	middleware.SetMeta(c, "stats", res.Stats)
	middleware.SetMeta(c, "empty", res.Empty)
	response.JSON(c, http.StatusOK, res.Clubs, &res.Pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Club detail
// @Tags Clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clubs/{id} [get]
func (h *ClubHandler) Get(c *gin.Context) {
	id, ok := clubID(c)
	if !ok {
		return
	}
	club, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// Popular godoc
// @Summary Most popular clubs
// @Tags Clubs
// @Produce json
// @Param limit query int false "Number of clubs"
// @Success 200 {object} response.Envelope
// @Router /clubs/popular [get]
func (h *ClubHandler) Popular(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 50"))
			return
		}
		limit = parsed
	}
	clubs, err := h.service.Popular(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clubs, nil)
}

// Stats godoc
// @Summary Directory statistics
// @Tags Clubs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clubs/stats [get]
func (h *ClubHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Join godoc
// @Summary Apply to join a club
// @Description Nothing is persisted; the response carries the notification shown to the student.
// @Tags Clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clubs/{id}/join [post]
func (h *ClubHandler) Join(c *gin.Context) {
	id, ok := clubID(c)
	if !ok {
		return
	}
	result, err := h.service.Join(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export the filtered directory
// @Tags Clubs
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param search query string false "Search text"
// @Param category query string false "Category filter"
// @Param sort query string false "Sort key"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /clubs/export [get]
func (h *ClubHandler) Export(c *gin.Context) {
	var req service.ExportClubsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data, result.Count)
}

func clubID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "club id must be a positive integer"))
		return 0, false
	}
	return id, true
}
