package handler

import (
	"time"

	"hesab-payment-service/internal/adapter/http/dto"
	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"
	"hesab-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles checkout-session endpoints.
type SessionHandler struct {
	sessionSvc ports.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionSvc ports.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// CreateSession handles POST /api/v1/sessions.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.sessionSvc.CreateSession(c.Request.Context(), ports.CreateSessionRequest{
		Items:      dto.ToDomainItems(req.Items),
		Email:      req.Email,
		UserID:     req.UserID,
		SuccessURL: req.SuccessURL,
		FailURL:    req.FailURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateSessionResponse{
		SessionID:   result.SessionID,
		CheckoutURL: result.CheckoutURL,
	})
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionSvc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSessionResponse(session))
}

func toSessionResponse(s *domain.PaymentSession) dto.SessionResponse {
	items := make([]dto.ItemRequest, len(s.Items))
	for i, it := range s.Items {
		items[i] = dto.ItemRequest{ID: it.ID, Name: it.Name, Price: it.Price}
	}

	var receivedAt *string
	if s.WebhookReceivedAt != nil {
		v := s.WebhookReceivedAt.UTC().Format(time.RFC3339)
		receivedAt = &v
	}

	return dto.SessionResponse{
		SessionID:         s.SessionID,
		Status:            string(s.Status),
		Email:             s.Email,
		Guest:             s.Guest,
		Items:             items,
		TotalAmount:       s.TotalAmount(),
		CheckoutURL:       s.CheckoutURL,
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339),
		WebhookReceivedAt: receivedAt,
	}
}
