package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/dcu-portal-api/internal/directory"
	"github.com/noah-isme/dcu-portal-api/internal/dto"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
	"github.com/noah-isme/dcu-portal-api/pkg/response"
)

const sseKeepAlive = 15 * time.Second

type sessionService interface {
	Create(ctx context.Context) (*directory.Session, error)
	Get(ctx context.Context, id string) (*directory.Session, error)
	Apply(ctx context.Context, id string, intent directory.Intent) (directory.View, error)
	Close(ctx context.Context, id string) error
}

// SessionHandler exposes interactive directory sessions: intents in, views out.
type SessionHandler struct {
	service   sessionService
	validator *validator.Validate
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService, validate *validator.Validate) *SessionHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &SessionHandler{service: service, validator: validate}
}

// Create godoc
// @Summary Open a directory session
// @Tags Directory
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /directory/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := h.service.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SessionResponse{ID: session.ID(), View: session.View()})
}

// Get godoc
// @Summary Current session view
// @Tags Directory
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /directory/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SessionResponse{ID: session.ID(), View: session.View()}, nil)
}

// Intent godoc
// @Summary Send an intent to a session
// @Description Searches are debounced unless immediate is set; the resulting view is pushed on the events stream.
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.IntentRequest true "Intent"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /directory/sessions/{id}/intents [post]
func (h *SessionHandler) Intent(c *gin.Context) {
	var req dto.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid intent payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intent payload"))
		return
	}
	intent, err := toIntent(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Apply(c.Request.Context(), c.Param("id"), intent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Events godoc
// @Summary Stream session views
// @Description Server-sent events: one "view" event per recompute, starting with the current view.
// @Tags Directory
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} response.Envelope
// @Router /directory/sessions/{id}/events [get]
func (h *SessionHandler) Events(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	views, cancel := session.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("view", session.View())
	c.Writer.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case view, ok := <-views:
			if !ok {
				c.SSEvent("closed", gin.H{"session_id": session.ID()})
				return false
			}
			c.SSEvent("view", view)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}

// Delete godoc
// @Summary Close a directory session
// @Tags Directory
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /directory/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func toIntent(req dto.IntentRequest) (directory.Intent, error) {
	kind, err := directory.ParseIntentKind(req.Type)
	if err != nil {
		return directory.Intent{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	intent := directory.Intent{
		Kind:      kind,
		Text:      req.Text,
		Page:      req.Page,
		Delta:     req.Delta,
		Immediate: req.Immediate,
	}
	switch kind {
	case directory.IntentCategory:
		filter, ok := models.ParseCategoryFilter(req.Category)
		if !ok {
			return directory.Intent{}, appErrors.Clone(appErrors.ErrValidation, "unknown category "+req.Category)
		}
		intent.Category = filter
	case directory.IntentSort:
		key, ok := models.ParseSortKey(req.Sort)
		if !ok {
			key = models.SortKey(req.Sort)
		}
		intent.Sort = key
	}
	return intent, nil
}
