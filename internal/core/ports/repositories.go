package ports

import (
	"context"
	"encoding/json"
	"time"

	"hesab-payment-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SessionRepository defines persistence operations for payment sessions.
// Methods accepting pgx.Tx run inside the webhook read-modify-write
// transaction so concurrent deliveries for one session serialize on the row.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.PaymentSession) error
	GetByID(ctx context.Context, sessionID string) (*domain.PaymentSession, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.PaymentSession, error)
	ApplyWebhook(ctx context.Context, tx pgx.Tx, sessionID string, status domain.SessionStatus, payload json.RawMessage, receivedAt time.Time) error
}

// DistributionRepository defines persistence for payout audit records.
// Records are append-only; there is no update operation.
type DistributionRepository interface {
	Create(ctx context.Context, record *domain.DistributionRecord) error
	GetByTxnID(ctx context.Context, txnID string) (*domain.DistributionRecord, error)
	List(ctx context.Context, params DistributionListParams) ([]domain.DistributionRecord, int64, error)
}

// DistributionListParams holds filter + pagination for listing payout records.
type DistributionListParams struct {
	InitiatorUserID *string
	Status          *domain.DistributionStatus
	Page            int
	PageSize        int
}

// ErrorLogRepository persists diagnostic error entries (best effort).
type ErrorLogRepository interface {
	Create(ctx context.Context, entry *domain.PaymentErrorLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
