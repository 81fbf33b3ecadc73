package dto

import (
	"encoding/json"

	"hesab-payment-service/internal/core/domain"
)

// ItemRequest is one purchasable item in a session request.
type ItemRequest struct {
	ID    string `json:"id" binding:"required,max=100"`
	Name  string `json:"name" binding:"required,max=200"`
	Price int64  `json:"price" binding:"gte=0"`
}

// CreateSessionRequest is the request body for session creation.
type CreateSessionRequest struct {
	Items      []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Email      *string       `json:"email,omitempty" binding:"omitempty,email"`
	UserID     *string       `json:"user_id,omitempty"`
	SuccessURL string        `json:"success_url" binding:"required,url"`
	FailURL    string        `json:"fail_url" binding:"required,url"`
}

// CreateSessionResponse is the response body for successful session creation.
type CreateSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// SessionResponse is the response body for session status queries.
type SessionResponse struct {
	SessionID         string        `json:"session_id"`
	Status            string        `json:"status"`
	Email             *string       `json:"email,omitempty"`
	Guest             bool          `json:"guest"`
	Items             []ItemRequest `json:"items"`
	TotalAmount       int64         `json:"total_amount"`
	CheckoutURL       string        `json:"checkout_url"`
	CreatedAt         string        `json:"created_at"`
	WebhookReceivedAt *string       `json:"webhook_received_at,omitempty"`
}

// WebhookResponse acknowledges a processed webhook delivery.
type WebhookResponse struct {
	SessionID string `json:"session_id"`
	Outcome   string `json:"outcome"`
	Status    string `json:"status"`
}

// VendorPayoutRequest is one payout leg in a distribution request.
type VendorPayoutRequest struct {
	AccountNumber string `json:"account_number" binding:"required,max=100"`
	Amount        int64  `json:"amount" binding:"gte=0"`
}

// DistributeRequest is the request body for multi-vendor distribution.
type DistributeRequest struct {
	Vendors []VendorPayoutRequest `json:"vendors" binding:"required,dive"`
}

// DistributeResponse is the response body for a completed distribution.
type DistributeResponse struct {
	TransactionID string `json:"transaction_id"`
	Summary       string `json:"summary"`
}

// DistributionResponse is one audit record in a listing.
type DistributionResponse struct {
	TransactionID    string                `json:"transaction_id"`
	InitiatorUserID  string                `json:"initiator_user_id"`
	Vendors          []VendorPayoutRequest `json:"vendors"`
	TotalAmount      int64                 `json:"total_amount"`
	Status           string                `json:"status"`
	ProviderResponse json.RawMessage       `json:"provider_response,omitempty"`
	ErrorDetail      *string               `json:"error_detail,omitempty"`
	CreatedAt        string                `json:"created_at"`
}

// ListDistributionsResponse is the paginated listing envelope.
type ListDistributionsResponse struct {
	Distributions []DistributionResponse `json:"distributions"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// ToDomainItems converts request items to domain items.
func ToDomainItems(items []ItemRequest) []domain.Item {
	out := make([]domain.Item, len(items))
	for i, it := range items {
		out[i] = domain.Item{ID: it.ID, Name: it.Name, Price: it.Price}
	}
	return out
}

// ToDomainVendors converts request payouts to domain payouts.
func ToDomainVendors(vendors []VendorPayoutRequest) []domain.VendorPayout {
	out := make([]domain.VendorPayout, len(vendors))
	for i, v := range vendors {
		out[i] = domain.VendorPayout{AccountNumber: v.AccountNumber, Amount: v.Amount}
	}
	return out
}
