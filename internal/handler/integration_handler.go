package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/repository"
	"github.com/fieldops/dispatch-backend-go/pkg/response"
)

// IntegrationHandler handles management API requests for integrations
type IntegrationHandler struct {
	integrations *repository.IntegrationRepository
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(integrations *repository.IntegrationRepository) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations}
}

// CreateIntegrationRequest represents the request body for creating an integration
type CreateIntegrationRequest struct {
	Name                   string `json:"name" binding:"required"`
	OwnerChatID            int64  `json:"owner_chat_id" binding:"required"`
	NotifyOnProblem        *bool  `json:"notify_on_problem"`
	LocationWebhookURL     string `json:"location_webhook_url"`
	EnableLocationTracking bool   `json:"enable_location_tracking"`
}

// CreateIntegration creates a new integration with a fresh webhook token
// POST /api/v1/integrations
func (h *IntegrationHandler) CreateIntegration(c *gin.Context) {
	var req CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ig := &models.Integration{
		Name:                   req.Name,
		OwnerChatID:            req.OwnerChatID,
		WebhookToken:           uuid.NewString(),
		NotifyOnProblem:        true,
		LocationWebhookURL:     req.LocationWebhookURL,
		EnableLocationTracking: req.EnableLocationTracking,
	}
	if req.NotifyOnProblem != nil {
		ig.NotifyOnProblem = *req.NotifyOnProblem
	}

	if err := h.integrations.Create(ig); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, ig)
}

// GetIntegration retrieves an integration by id
// GET /api/v1/integrations/:id
func (h *IntegrationHandler) GetIntegration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid integration ID")
		return
	}

	ig, err := h.integrations.FindByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if ig == nil {
		response.NotFound(c, "Integration not found")
		return
	}

	response.Success(c, ig)
}

// ListIntegrations retrieves all integrations
// GET /api/v1/integrations
func (h *IntegrationHandler) ListIntegrations(c *gin.Context) {
	items, err := h.integrations.List()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"integrations": items})
}

// UpdateSettings updates the mutable settings of an integration
// PATCH /api/v1/integrations/:id/settings
func (h *IntegrationHandler) UpdateSettings(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid integration ID")
		return
	}

	var req models.IntegrationSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ig, err := h.integrations.FindByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if ig == nil {
		response.NotFound(c, "Integration not found")
		return
	}

	if req.NotifyOnProblem != nil {
		ig.NotifyOnProblem = *req.NotifyOnProblem
	}
	if req.LocationWebhookURL != nil {
		ig.LocationWebhookURL = *req.LocationWebhookURL
	}
	if req.EnableLocationTracking != nil {
		ig.EnableLocationTracking = *req.EnableLocationTracking
	}

	if err := h.integrations.Save(ig); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, ig)
}
