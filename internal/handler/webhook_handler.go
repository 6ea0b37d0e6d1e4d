package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/fieldops/dispatch-backend-go/internal/service"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

// WebhookHandler receives Telegram webhook deliveries
type WebhookHandler struct {
	dispatch *service.DispatchService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(dispatch *service.DispatchService) *WebhookHandler {
	return &WebhookHandler{dispatch: dispatch}
}

// Receive processes one webhook delivery
// POST /telegram/webhook/:secret
//
// Always answers 200 {ok:true}: Telegram retries non-2xx deliveries, and a
// retry storm over a processing bug is worse than a dropped update.
func (h *WebhookHandler) Receive(c *gin.Context) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic while processing update: %v", p)
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}()

	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Printf("unparseable update: %v", err)
		return
	}

	h.dispatch.HandleUpdate(c.Request.Context(), upd)
}

// Status answers the lightweight GET health check on the webhook endpoint
// GET /telegram/webhook/:secret
func (h *WebhookHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Dispatch webhook is running",
	})
}
