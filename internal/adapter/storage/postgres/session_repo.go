package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hesab-payment-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SessionRepo implements ports.SessionRepository.
type SessionRepo struct {
	pool Pool
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(pool Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionColumns = `session_id, status, email, user_id, guest, items, checkout_url, created_at, webhook_received_at, webhook_payload`

// Create inserts a new payment session.
func (r *SessionRepo) Create(ctx context.Context, s *domain.PaymentSession) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	query := `INSERT INTO payment_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		s.SessionID, s.Status, s.Email, s.UserID, s.Guest,
		items, s.CheckoutURL, s.CreatedAt, s.WebhookReceivedAt, s.WebhookPayload,
	)
	if err != nil {
		return fmt.Errorf("insert payment session: %w", err)
	}
	return nil
}

// GetByID fetches a session by its provider session id. Returns nil, nil
// when no row exists.
func (r *SessionRepo) GetByID(ctx context.Context, sessionID string) (*domain.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE session_id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, sessionID))
}

// GetByIDForUpdate fetches a session with a row lock inside tx. Concurrent
// webhook deliveries for the same session serialize here.
func (r *SessionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE session_id = $1 FOR UPDATE`
	return scanSession(tx.QueryRow(ctx, query, sessionID))
}

// ApplyWebhook records the status transition and the raw webhook payload
// inside tx.
func (r *SessionRepo) ApplyWebhook(ctx context.Context, tx pgx.Tx, sessionID string, status domain.SessionStatus, payload json.RawMessage, receivedAt time.Time) error {
	query := `UPDATE payment_sessions
		SET status = $1, webhook_payload = $2, webhook_received_at = $3
		WHERE session_id = $4`

	tag, err := tx.Exec(ctx, query, status, []byte(payload), receivedAt, sessionID)
	if err != nil {
		return fmt.Errorf("update payment session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment session not found: %s", sessionID)
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.PaymentSession, error) {
	var (
		s     domain.PaymentSession
		items []byte
	)
	err := row.Scan(
		&s.SessionID, &s.Status, &s.Email, &s.UserID, &s.Guest,
		&items, &s.CheckoutURL, &s.CreatedAt, &s.WebhookReceivedAt, &s.WebhookPayload,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment session: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &s, nil
}
