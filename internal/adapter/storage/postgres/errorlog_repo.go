package postgres

import (
	"context"
	"fmt"

	"hesab-payment-service/internal/core/domain"
)

// ErrorLogRepo implements ports.ErrorLogRepository.
type ErrorLogRepo struct {
	pool Pool
}

// NewErrorLogRepo creates a new ErrorLogRepo.
func NewErrorLogRepo(pool Pool) *ErrorLogRepo {
	return &ErrorLogRepo{pool: pool}
}

// Create inserts a diagnostic error entry.
func (r *ErrorLogRepo) Create(ctx context.Context, entry *domain.PaymentErrorLog) error {
	query := `INSERT INTO payment_error_logs (id, source, message, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Source, entry.Message, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}
