package handler

import (
	"io"

	"hesab-payment-service/internal/adapter/http/dto"
	"hesab-payment-service/internal/adapter/http/middleware"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"
	"hesab-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles provider callback deliveries.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Receive handles POST /webhooks/hesabpay. The body is read raw: the HMAC
// signature covers the exact wire bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	signature := c.GetHeader(middleware.HeaderSignature)

	result, err := h.webhookSvc.Process(c.Request.Context(), rawBody, signature)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookResponse{
		SessionID: result.SessionID,
		Outcome:   string(result.Outcome),
		Status:    string(result.Status),
	})
}
