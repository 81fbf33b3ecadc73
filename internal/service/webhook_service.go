package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// replayTTL bounds how long a processed delivery is remembered in the fast
// path. The transactional status check remains authoritative after expiry.
const replayTTL = 24 * time.Hour

// WebhookServiceImpl implements ports.WebhookService.
//
// Per-session state machine: pending -> {success, failed}. A terminal state
// may only be overwritten by an event carrying a strictly newer provider
// timestamp than the one already applied (late corrections from HesabPay).
// Unknown sessions are a not-found outcome, never a create.
type WebhookServiceImpl struct {
	sessionRepo ports.SessionRepository
	transactor  ports.DBTransactor
	sigSvc      ports.SignatureService
	replayCache ports.ReplayCache // nil = fast path disabled
	secret      string
	log         zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	sessionRepo ports.SessionRepository,
	transactor ports.DBTransactor,
	sigSvc ports.SignatureService,
	replayCache ports.ReplayCache,
	secret string,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		sessionRepo: sessionRepo,
		transactor:  transactor,
		sigSvc:      sigSvc,
		replayCache: replayCache,
		secret:      secret,
		log:         log,
	}
}

// Process authenticates a raw webhook delivery and applies the resulting
// state transition. rawBody must be the exact bytes received on the wire:
// the signature covers them, and any re-serialization would invalidate it.
func (s *WebhookServiceImpl) Process(ctx context.Context, rawBody []byte, signature string) (*ports.WebhookResult, error) {
	if signature == "" {
		return nil, apperror.ErrMissingSignature()
	}
	if !s.sigSvc.Verify(s.secret, rawBody, signature) {
		s.log.Warn().Msg("webhook signature verification failed")
		return nil, apperror.ErrInvalidSignature()
	}

	event, err := parseWebhookEvent(rawBody)
	if err != nil {
		return nil, err
	}

	// Fast path: a delivery already processed under this exact signature
	// is a duplicate. Cache errors fall through to the transactional path.
	replayKey := buildReplayKey(event.SessionID, signature)
	if s.replayCache != nil {
		seen, cacheErr := s.replayCache.Seen(ctx, replayKey)
		if cacheErr != nil {
			s.log.Warn().Err(cacheErr).Str("session_id", event.SessionID).Msg("replay cache check failed, falling through to DB")
		} else if seen {
			return &ports.WebhookResult{
				SessionID: event.SessionID,
				Outcome:   ports.WebhookOutcomeDuplicate,
				Status:    event.StatusFromOutcome(),
			}, nil
		}
	}

	result, err := s.applyEvent(ctx, event, rawBody)
	if err != nil {
		return nil, err
	}

	if s.replayCache != nil {
		if cacheErr := s.replayCache.MarkProcessed(ctx, replayKey, replayTTL); cacheErr != nil {
			s.log.Warn().Err(cacheErr).Str("session_id", event.SessionID).Msg("failed to mark webhook in replay cache")
		}
	}

	s.log.Info().
		Str("session_id", result.SessionID).
		Str("outcome", string(result.Outcome)).
		Str("status", string(result.Status)).
		Msg("webhook processed")

	return result, nil
}

// applyEvent runs the read-modify-write transaction on the session row.
// Concurrent deliveries for the same session serialize on the row lock.
func (s *WebhookServiceImpl) applyEvent(ctx context.Context, event *domain.WebhookEvent, rawBody []byte) (*ports.WebhookResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	session, err := s.sessionRepo.GetByIDForUpdate(ctx, dbTx, event.SessionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock session: %w", err))
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound(event.SessionID)
	}

	newStatus := event.StatusFromOutcome()

	// Idempotence: same status again is a no-op that still succeeds.
	if session.Status == newStatus {
		return &ports.WebhookResult{
			SessionID: session.SessionID,
			Outcome:   ports.WebhookOutcomeDuplicate,
			Status:    session.Status,
		}, nil
	}

	if session.IsTerminal() && !eventIsNewer(event, session) {
		return &ports.WebhookResult{
			SessionID: session.SessionID,
			Outcome:   ports.WebhookOutcomeStale,
			Status:    session.Status,
		}, nil
	}

	if err := s.sessionRepo.ApplyWebhook(ctx, dbTx, session.SessionID, newStatus, json.RawMessage(rawBody), time.Now().UTC()); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("apply webhook: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return &ports.WebhookResult{
		SessionID: session.SessionID,
		Outcome:   ports.WebhookOutcomeApplied,
		Status:    newStatus,
	}, nil
}

// eventIsNewer reports whether the event may overwrite an already-terminal
// session. Ordering uses provider timestamps only, never the local receipt
// time: the provider's clock and ours are not comparable. The event must
// carry a timestamp strictly after the one in the applied payload; if the
// applied payload carried none, a timestamped correction wins.
func eventIsNewer(event *domain.WebhookEvent, session *domain.PaymentSession) bool {
	if event.Timestamp == nil {
		return false
	}
	prev := appliedTimestamp(session.WebhookPayload)
	if prev == nil {
		return true
	}
	return *event.Timestamp > *prev
}

// appliedTimestamp extracts the provider timestamp from the raw payload of
// the last applied webhook.
func appliedTimestamp(payload json.RawMessage) *int64 {
	if len(payload) == 0 {
		return nil
	}
	var body struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	return body.Timestamp
}

// rawWebhookBody is the wire shape of a HesabPay callback. Some provider
// revisions send transaction_id instead of session_id; both identify the
// checkout session.
type rawWebhookBody struct {
	SessionID     string `json:"session_id"`
	TransactionID string `json:"transaction_id"`
	Success       *bool  `json:"success"`
	Amount        *int64 `json:"amount"`
	Timestamp     *int64 `json:"timestamp"`
}

// parseWebhookEvent validates the payload shape and produces a typed event.
func parseWebhookEvent(rawBody []byte) (*domain.WebhookEvent, error) {
	var raw rawWebhookBody
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return nil, apperror.ErrMalformedWebhook("body is not valid JSON")
	}

	sessionID := raw.SessionID
	if sessionID == "" {
		sessionID = raw.TransactionID
	}
	if sessionID == "" {
		return nil, apperror.ErrMalformedWebhook("missing session identifier")
	}
	if raw.Success == nil {
		return nil, apperror.ErrMalformedWebhook("missing success flag")
	}

	return &domain.WebhookEvent{
		SessionID: sessionID,
		Success:   *raw.Success,
		Amount:    raw.Amount,
		Timestamp: raw.Timestamp,
	}, nil
}

// buildReplayKey hashes session id + signature so the cache key stays
// bounded and does not store the signature itself.
func buildReplayKey(sessionID string, signature string) string {
	sum := sha256.Sum256([]byte(sessionID + ":" + signature))
	return hex.EncodeToString(sum[:])
}
