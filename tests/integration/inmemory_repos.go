package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Session Repo ---

type inMemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*domain.PaymentSession
}

func newInMemorySessionRepo() *inMemorySessionRepo {
	return &inMemorySessionRepo{sessions: make(map[string]*domain.PaymentSession)}
}

func (r *inMemorySessionRepo) Create(ctx context.Context, s *domain.PaymentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.SessionID]; ok {
		return fmt.Errorf("session already exists: %s", s.SessionID)
	}
	copied := *s
	r.sessions[s.SessionID] = &copied
	return nil
}

func (r *inMemorySessionRepo) GetByID(ctx context.Context, sessionID string) (*domain.PaymentSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *inMemorySessionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.PaymentSession, error) {
	return r.GetByID(ctx, sessionID)
}

func (r *inMemorySessionRepo) ApplyWebhook(ctx context.Context, tx pgx.Tx, sessionID string, status domain.SessionStatus, payload json.RawMessage, receivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	s.Status = status
	s.WebhookPayload = payload
	s.WebhookReceivedAt = &receivedAt
	return nil
}

// --- In-Memory Distribution Repo ---

type inMemoryDistributionRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.DistributionRecord
}

func newInMemoryDistributionRepo() *inMemoryDistributionRepo {
	return &inMemoryDistributionRepo{records: make(map[string]*domain.DistributionRecord)}
}

func (r *inMemoryDistributionRepo) Create(ctx context.Context, rec *domain.DistributionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.TxnID]; ok {
		return fmt.Errorf("distribution already exists: %s", rec.TxnID)
	}
	copied := *rec
	r.records[rec.TxnID] = &copied
	return nil
}

func (r *inMemoryDistributionRepo) GetByTxnID(ctx context.Context, txnID string) (*domain.DistributionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[txnID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *inMemoryDistributionRepo) List(ctx context.Context, params ports.DistributionListParams) ([]domain.DistributionRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.DistributionRecord
	for _, rec := range r.records {
		if params.InitiatorUserID != nil && rec.InitiatorUserID != *params.InitiatorUserID {
			continue
		}
		if params.Status != nil && rec.Status != *params.Status {
			continue
		}
		matched = append(matched, *rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- In-Memory Error Log Repo ---

type inMemoryErrorLogRepo struct {
	mu      sync.RWMutex
	entries []*domain.PaymentErrorLog
}

func newInMemoryErrorLogRepo() *inMemoryErrorLogRepo {
	return &inMemoryErrorLogRepo{}
}

func (r *inMemoryErrorLogRepo) Create(ctx context.Context, entry *domain.PaymentErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *inMemoryErrorLogRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
