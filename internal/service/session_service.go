package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionServiceImpl implements ports.SessionService.
type SessionServiceImpl struct {
	sessionRepo  ports.SessionRepository
	errorLogRepo ports.ErrorLogRepository
	provider     ports.ProviderClient
	log          zerolog.Logger
}

// NewSessionService creates a new SessionServiceImpl.
func NewSessionService(
	sessionRepo ports.SessionRepository,
	errorLogRepo ports.ErrorLogRepository,
	provider ports.ProviderClient,
	log zerolog.Logger,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		sessionRepo:  sessionRepo,
		errorLogRepo: errorLogRepo,
		provider:     provider,
		log:          log,
	}
}

// CreateSession validates the checkout request, obtains a checkout URL from
// HesabPay and persists a pending session keyed by the provider session id.
// Provider failures are reported to the caller, not retried here: the
// caller owns retry policy.
func (s *SessionServiceImpl) CreateSession(ctx context.Context, req ports.CreateSessionRequest) (*ports.CreateSessionResult, error) {
	if err := validateCreateSession(req); err != nil {
		return nil, err
	}

	providerSession, err := s.provider.CreateSession(ctx, ports.CreateProviderSessionParams{
		Items:      req.Items,
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
		FailURL:    req.FailURL,
	})
	if err != nil {
		s.logProviderFailure(ctx, err)
		return nil, apperror.ProviderError(fmt.Errorf("create session: %w", err))
	}
	if providerSession.SessionID == "" || providerSession.CheckoutURL == "" {
		s.logProviderFailure(ctx, fmt.Errorf("response missing session_id or checkout_url"))
		return nil, apperror.ErrProviderResponse("missing session_id or checkout_url")
	}

	session := &domain.PaymentSession{
		SessionID:   providerSession.SessionID,
		Status:      domain.SessionStatusPending,
		Email:       req.Email,
		UserID:      req.UserID,
		Guest:       req.UserID == nil,
		Items:       req.Items,
		CheckoutURL: providerSession.CheckoutURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist session: %w", err))
	}

	s.log.Info().
		Str("session_id", session.SessionID).
		Int("items", len(session.Items)).
		Int64("total_amount", session.TotalAmount()).
		Bool("guest", session.Guest).
		Msg("payment session created")

	return &ports.CreateSessionResult{
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// GetSession fetches a session by id.
func (s *SessionServiceImpl) GetSession(ctx context.Context, sessionID string) (*domain.PaymentSession, error) {
	if sessionID == "" {
		return nil, apperror.Validation("session id is required")
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch session: %w", err))
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound(sessionID)
	}
	return session, nil
}

// logProviderFailure writes a diagnostic entry, best effort. Failures to
// record the failure are only logged.
func (s *SessionServiceImpl) logProviderFailure(ctx context.Context, cause error) {
	s.log.Error().Err(cause).Msg("provider create-session call failed")

	if s.errorLogRepo == nil {
		return
	}
	detail, _ := json.Marshal(map[string]string{"error": cause.Error()})
	entry := &domain.PaymentErrorLog{
		ID:        uuid.New(),
		Source:    domain.ErrorSourceSessionCreate,
		Message:   "provider create-session call failed",
		Detail:    string(detail),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.errorLogRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist error log entry")
	}
}

func validateCreateSession(req ports.CreateSessionRequest) error {
	if len(req.Items) == 0 {
		return apperror.ErrEmptyItems()
	}
	for i, it := range req.Items {
		switch {
		case it.ID == "":
			return apperror.ErrInvalidItem(i, "id is required")
		case it.Name == "":
			return apperror.ErrInvalidItem(i, "name is required")
		case it.Price < 0:
			return apperror.ErrInvalidItem(i, "price is negative")
		}
	}
	if req.SuccessURL == "" {
		return apperror.Validation("success_url is required")
	}
	if req.FailURL == "" {
		return apperror.Validation("fail_url is required")
	}
	return nil
}
