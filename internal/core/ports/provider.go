package ports

import (
	"context"
	"encoding/json"

	"hesab-payment-service/internal/core/domain"
)

// ProviderSession is the parsed result of a create-session call.
type ProviderSession struct {
	SessionID   string
	CheckoutURL string
}

// CreateProviderSessionParams is the outbound create-session request.
type CreateProviderSessionParams struct {
	Items      []domain.Item
	Email      *string
	SuccessURL string
	FailURL    string
}

// MultiVendorTransferParams is the outbound disbursement request.
// EncryptedPin carries the merchant PIN encrypted per the provider contract;
// the plaintext PIN never crosses this boundary.
type MultiVendorTransferParams struct {
	EncryptedPin string
	Vendors      []domain.VendorPayout
}

// ProviderClient is the HTTP boundary to HesabPay. Calls are synchronous
// with no internal retry; timeouts surface as errors and the caller owns
// retry policy.
type ProviderClient interface {
	CreateSession(ctx context.Context, params CreateProviderSessionParams) (*ProviderSession, error)
	TransferMultiVendor(ctx context.Context, params MultiVendorTransferParams) (json.RawMessage, error)
}
