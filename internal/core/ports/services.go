package ports

import (
	"context"
	"time"

	"hesab-payment-service/internal/core/domain"
)

// PinCipher encrypts the merchant PIN for transmission to the provider.
// The key is supplied per call because HesabPay derives it from the current
// API key, which can rotate independently of process lifetime.
type PinCipher interface {
	Encrypt(pin string, key string) (string, error)
	Decrypt(ciphertextB64 string, key string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
// Payloads are always the raw request body bytes, never a re-serialized
// object: re-serialization changes key order and whitespace and breaks
// the signature.
type SignatureService interface {
	Sign(secret string, payload []byte) string
	Verify(secret string, payload []byte, signature string) bool
}

// TokenService handles JWT token operations for distribution callers.
type TokenService interface {
	Generate(userID string, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims. The user identity is opaque to
// the core beyond its string id.
type TokenClaims struct {
	UserID string
	Email  string
}

// ReplayCache is the Redis fast path for duplicate webhook suppression.
// Misses and errors fall through to the transactional path, which remains
// the source of truth for idempotence.
type ReplayCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// SessionService defines the checkout-session lifecycle operations.
type SessionService interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error)
	GetSession(ctx context.Context, sessionID string) (*domain.PaymentSession, error)
}

// CreateSessionRequest holds validated input for session creation.
type CreateSessionRequest struct {
	Items      []domain.Item
	Email      *string
	UserID     *string // nil = guest checkout
	SuccessURL string
	FailURL    string
}

// CreateSessionResult is returned to the caller, who redirects the end
// user to CheckoutURL to complete the purchase externally.
type CreateSessionResult struct {
	SessionID   string
	CheckoutURL string
}

// WebhookService authenticates and applies provider callbacks.
type WebhookService interface {
	Process(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error)
}

// WebhookOutcome describes how a verified webhook was applied.
type WebhookOutcome string

const (
	// WebhookOutcomeApplied: the session transitioned to a new status.
	WebhookOutcomeApplied WebhookOutcome = "applied"
	// WebhookOutcomeDuplicate: same status already recorded; no-op.
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	// WebhookOutcomeStale: terminal flip rejected, event not newer than
	// the one already applied; no-op.
	WebhookOutcomeStale WebhookOutcome = "stale"
)

// WebhookResult reports the processing outcome for a verified webhook.
type WebhookResult struct {
	SessionID string
	Outcome   WebhookOutcome
	Status    domain.SessionStatus
}

// DistributionService defines the multi-vendor payout operation.
type DistributionService interface {
	Distribute(ctx context.Context, req DistributeRequest) (*DistributeResult, error)
	ListDistributions(ctx context.Context, params DistributionListParams) ([]domain.DistributionRecord, int64, error)
}

// DistributeRequest holds validated input for a payout.
type DistributeRequest struct {
	InitiatorUserID string
	Vendors         []domain.VendorPayout
}

// DistributeResult is returned on a completed payout.
type DistributeResult struct {
	TransactionID string
	Summary       string
}
