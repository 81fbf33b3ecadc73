package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// DistributionRepo implements ports.DistributionRepository.
type DistributionRepo struct {
	pool Pool
}

// NewDistributionRepo creates a new DistributionRepo.
func NewDistributionRepo(pool Pool) *DistributionRepo {
	return &DistributionRepo{pool: pool}
}

const distributionColumns = `txn_id, initiator_user_id, vendors, status, provider_response, error_detail, created_at`

// Create inserts a payout audit record. Records are append-only.
func (r *DistributionRepo) Create(ctx context.Context, rec *domain.DistributionRecord) error {
	vendors, err := json.Marshal(rec.Vendors)
	if err != nil {
		return fmt.Errorf("encode vendors: %w", err)
	}

	query := `INSERT INTO distributions (` + distributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		rec.TxnID, rec.InitiatorUserID, vendors, rec.Status,
		rec.ProviderResponse, rec.ErrorDetail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}

// GetByTxnID fetches a distribution record by transaction id. Returns
// nil, nil when no row exists.
func (r *DistributionRepo) GetByTxnID(ctx context.Context, txnID string) (*domain.DistributionRecord, error) {
	query := `SELECT ` + distributionColumns + ` FROM distributions WHERE txn_id = $1`

	rec, err := scanDistribution(r.pool.QueryRow(ctx, query, txnID))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List fetches distribution records with filtering and pagination.
func (r *DistributionRepo) List(ctx context.Context, params ports.DistributionListParams) ([]domain.DistributionRecord, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.InitiatorUserID != nil {
		conditions = append(conditions, fmt.Sprintf("initiator_user_id = $%d", argIdx))
		args = append(args, *params.InitiatorUserID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM distributions" + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count distributions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf("SELECT "+distributionColumns+" FROM distributions"+where+" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	var records []domain.DistributionRecord
	for rows.Next() {
		rec, err := scanDistribution(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate distribution rows: %w", err)
	}
	return records, total, nil
}

func scanDistribution(row pgx.Row) (*domain.DistributionRecord, error) {
	var (
		rec     domain.DistributionRecord
		vendors []byte
	)
	err := row.Scan(
		&rec.TxnID, &rec.InitiatorUserID, &vendors, &rec.Status,
		&rec.ProviderResponse, &rec.ErrorDetail, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan distribution: %w", err)
	}
	if len(vendors) > 0 {
		if err := json.Unmarshal(vendors, &rec.Vendors); err != nil {
			return nil, fmt.Errorf("decode vendors: %w", err)
		}
	}
	return &rec, nil
}
