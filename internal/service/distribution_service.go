package service

import (
	"context"
	"fmt"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// DistributionServiceImpl implements ports.DistributionService.
//
// Every distribution attempt, successful or not, leaves exactly one audit
// record keyed by a transaction id generated before the provider call. A
// transfer that fails after the provider accepted it is therefore still
// traceable by its id.
type DistributionServiceImpl struct {
	distRepo     ports.DistributionRepository
	errorLogRepo ports.ErrorLogRepository
	provider     ports.ProviderClient
	pinCipher    ports.PinCipher
	merchantPin  string
	apiKey       string
	log          zerolog.Logger
}

// NewDistributionService creates a new DistributionServiceImpl.
func NewDistributionService(
	distRepo ports.DistributionRepository,
	errorLogRepo ports.ErrorLogRepository,
	provider ports.ProviderClient,
	pinCipher ports.PinCipher,
	merchantPin string,
	apiKey string,
	log zerolog.Logger,
) *DistributionServiceImpl {
	return &DistributionServiceImpl{
		distRepo:     distRepo,
		errorLogRepo: errorLogRepo,
		provider:     provider,
		pinCipher:    pinCipher,
		merchantPin:  merchantPin,
		apiKey:       apiKey,
		log:          log,
	}
}

// Distribute validates the payout, encrypts the merchant PIN, calls the
// provider's multi-vendor transfer endpoint and writes the audit record.
func (s *DistributionServiceImpl) Distribute(ctx context.Context, req ports.DistributeRequest) (*ports.DistributeResult, error) {
	if req.InitiatorUserID == "" {
		return nil, apperror.ErrUnauthenticated()
	}
	if err := validateVendors(req.Vendors); err != nil {
		return nil, err
	}

	txnID := newTxnID()

	encryptedPin, err := s.pinCipher.Encrypt(s.merchantPin, s.apiKey)
	if err != nil {
		s.recordFailure(ctx, req, txnID, fmt.Sprintf("pin encryption failed: %v", err))
		return nil, apperror.ErrEncryptionFailure(err)
	}

	providerResp, err := s.provider.TransferMultiVendor(ctx, ports.MultiVendorTransferParams{
		EncryptedPin: encryptedPin,
		Vendors:      req.Vendors,
	})
	if err != nil {
		s.recordFailure(ctx, req, txnID, fmt.Sprintf("provider transfer failed: %v", err))
		s.log.Error().Err(err).Str("txn_id", txnID).Msg("multi-vendor transfer failed")
		return nil, apperror.ProviderError(err)
	}

	record := &domain.DistributionRecord{
		TxnID:            txnID,
		InitiatorUserID:  req.InitiatorUserID,
		Vendors:          req.Vendors,
		Status:           domain.DistributionStatusCompleted,
		ProviderResponse: providerResp,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.distRepo.Create(ctx, record); err != nil {
		// The money moved. Surface the persistence failure loudly but do
		// not pretend the transfer failed.
		s.log.Error().Err(err).Str("txn_id", txnID).Msg("transfer succeeded but audit record write failed")
		s.logError(ctx, fmt.Sprintf("audit write failed for %s", txnID), err.Error())
		return nil, apperror.InternalError(fmt.Errorf("persist distribution record: %w", err))
	}

	s.log.Info().
		Str("txn_id", txnID).
		Str("initiator", req.InitiatorUserID).
		Int("vendor_count", len(req.Vendors)).
		Int64("total_amount", record.TotalAmount()).
		Msg("distribution completed")

	return &ports.DistributeResult{
		TransactionID: txnID,
		Summary:       fmt.Sprintf("distributed to %d vendors", len(req.Vendors)),
	}, nil
}

// ListDistributions returns audit records matching the filters.
func (s *DistributionServiceImpl) ListDistributions(ctx context.Context, params ports.DistributionListParams) ([]domain.DistributionRecord, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	records, total, err := s.distRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list distributions: %w", err))
	}
	return records, total, nil
}

// recordFailure writes the failed-attempt audit record plus a diagnostic
// error log entry. Both are best effort: the caller already has an error.
func (s *DistributionServiceImpl) recordFailure(ctx context.Context, req ports.DistributeRequest, txnID string, detail string) {
	record := &domain.DistributionRecord{
		TxnID:           txnID,
		InitiatorUserID: req.InitiatorUserID,
		Vendors:         req.Vendors,
		Status:          domain.DistributionStatusFailed,
		ErrorDetail:     &detail,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.distRepo.Create(ctx, record); err != nil {
		s.log.Error().Err(err).Str("txn_id", txnID).Msg("failed to persist failed-distribution record")
	}
	s.logError(ctx, "distribution failed", detail)
}

func (s *DistributionServiceImpl) logError(ctx context.Context, message string, detail string) {
	entry := &domain.PaymentErrorLog{
		ID:        uuid.New(),
		Source:    domain.ErrorSourceDistribution,
		Message:   message,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.errorLogRepo.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Msg("failed to persist error log entry")
	}
}

// validateVendors enforces the payout constraints: 1 to 16 vendors, unique
// non-empty account numbers, non-negative amounts.
func validateVendors(vendors []domain.VendorPayout) error {
	if len(vendors) < domain.MinVendors || len(vendors) > domain.MaxVendors {
		return apperror.ErrVendorCount(len(vendors))
	}
	seen := make(map[string]struct{}, len(vendors))
	for _, v := range vendors {
		if v.AccountNumber == "" {
			return apperror.Validation("vendor account number must not be empty")
		}
		if _, dup := seen[v.AccountNumber]; dup {
			return apperror.ErrDuplicateVendorAccount(v.AccountNumber)
		}
		seen[v.AccountNumber] = struct{}{}
		if v.Amount < 0 {
			return apperror.ErrInvalidVendorAmount(v.AccountNumber)
		}
	}
	return nil
}

// newTxnID builds the audit transaction id. ULIDs sort by creation time,
// which keeps the audit table naturally ordered.
func newTxnID() string {
	return "TXN-" + ulid.Make().String()
}
