package handler

import (
	"strconv"
	"time"

	"hesab-payment-service/internal/adapter/http/dto"
	"hesab-payment-service/internal/adapter/http/middleware"
	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"
	"hesab-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// DistributionHandler handles multi-vendor payout endpoints.
type DistributionHandler struct {
	distSvc ports.DistributionService
}

// NewDistributionHandler creates a new DistributionHandler.
func NewDistributionHandler(distSvc ports.DistributionService) *DistributionHandler {
	return &DistributionHandler{distSvc: distSvc}
}

// Distribute handles POST /api/v1/distributions.
func (h *DistributionHandler) Distribute(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.distSvc.Distribute(c.Request.Context(), ports.DistributeRequest{
		InitiatorUserID: userID.(string),
		Vendors:         dto.ToDomainVendors(req.Vendors),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DistributeResponse{
		TransactionID: result.TransactionID,
		Summary:       result.Summary,
	})
}

// List handles GET /api/v1/distributions.
func (h *DistributionHandler) List(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	params := ports.DistributionListParams{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}

	// Callers only see their own payouts.
	initiator := userID.(string)
	params.InitiatorUserID = &initiator

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.DistributionStatus(statusStr)
		if status != domain.DistributionStatusCompleted && status != domain.DistributionStatusFailed {
			response.Error(c, apperror.Validation("invalid status filter"))
			return
		}
		params.Status = &status
	}

	records, total, err := h.distSvc.ListDistributions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.DistributionResponse, len(records))
	for i, rec := range records {
		out[i] = toDistributionResponse(rec)
	}

	response.OK(c, dto.ListDistributionsResponse{
		Distributions: out,
		Total:         total,
		Page:          params.Page,
		PageSize:      params.PageSize,
	})
}

func toDistributionResponse(rec domain.DistributionRecord) dto.DistributionResponse {
	vendors := make([]dto.VendorPayoutRequest, len(rec.Vendors))
	for i, v := range rec.Vendors {
		vendors[i] = dto.VendorPayoutRequest{AccountNumber: v.AccountNumber, Amount: v.Amount}
	}
	return dto.DistributionResponse{
		TransactionID:    rec.TxnID,
		InitiatorUserID:  rec.InitiatorUserID,
		Vendors:          vendors,
		TotalAmount:      rec.TotalAmount(),
		Status:           string(rec.Status),
		ProviderResponse: rec.ProviderResponse,
		ErrorDetail:      rec.ErrorDetail,
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
