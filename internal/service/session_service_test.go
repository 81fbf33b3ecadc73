package service

import (
	"context"
	"errors"
	"testing"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/internal/core/ports/mocks"
	"hesab-payment-service/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sessionTestDeps struct {
	svc          *SessionServiceImpl
	sessionRepo  *mocks.MockSessionRepository
	errorLogRepo *mocks.MockErrorLogRepository
	provider     *mocks.MockProviderClient
	ctrl         *gomock.Controller
}

func setupSessionService(t *testing.T) *sessionTestDeps {
	ctrl := gomock.NewController(t)
	d := &sessionTestDeps{
		sessionRepo:  mocks.NewMockSessionRepository(ctrl),
		errorLogRepo: mocks.NewMockErrorLogRepository(ctrl),
		provider:     mocks.NewMockProviderClient(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewSessionService(d.sessionRepo, d.errorLogRepo, d.provider, zerolog.Nop())
	return d
}

func validCreateSessionRequest() ports.CreateSessionRequest {
	email := "buyer@example.com"
	userID := "user-1"
	return ports.CreateSessionRequest{
		Items: []domain.Item{
			{ID: "sku-1", Name: "Course A", Price: 1500},
			{ID: "sku-2", Name: "Course B", Price: 2500},
		},
		Email:      &email,
		UserID:     &userID,
		SuccessURL: "https://shop.example.com/success",
		FailURL:    "https://shop.example.com/fail",
	}
}

// ==================== CreateSession Tests ====================

func TestSessionService_CreateSession_Success(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := validCreateSessionRequest()

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(&ports.ProviderSession{SessionID: "sess_abc", CheckoutURL: "https://pay.hesab.com/c/sess_abc"}, nil)

	d.sessionRepo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.PaymentSession) error {
			assert.Equal(t, "sess_abc", s.SessionID)
			assert.Equal(t, domain.SessionStatusPending, s.Status)
			assert.False(t, s.Guest)
			assert.Equal(t, int64(4000), s.TotalAmount())
			return nil
		})

	result, err := d.svc.CreateSession(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "sess_abc", result.SessionID)
	assert.Equal(t, "https://pay.hesab.com/c/sess_abc", result.CheckoutURL)
}

func TestSessionService_CreateSession_GuestCheckout(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := validCreateSessionRequest()
	req.UserID = nil

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(&ports.ProviderSession{SessionID: "sess_g", CheckoutURL: "https://pay.hesab.com/c/sess_g"}, nil)

	d.sessionRepo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.PaymentSession) error {
			assert.True(t, s.Guest)
			assert.Nil(t, s.UserID)
			return nil
		})

	_, err := d.svc.CreateSession(ctx, req)
	require.NoError(t, err)
}

func TestSessionService_CreateSession_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*ports.CreateSessionRequest)
		wantCode string
	}{
		{"empty items", func(r *ports.CreateSessionRequest) { r.Items = nil }, "VAL_002"},
		{"item missing id", func(r *ports.CreateSessionRequest) { r.Items[0].ID = "" }, "VAL_003"},
		{"item missing name", func(r *ports.CreateSessionRequest) { r.Items[1].Name = "" }, "VAL_003"},
		{"negative price", func(r *ports.CreateSessionRequest) { r.Items[0].Price = -1 }, "VAL_003"},
		{"missing success url", func(r *ports.CreateSessionRequest) { r.SuccessURL = "" }, "VAL_001"},
		{"missing fail url", func(r *ports.CreateSessionRequest) { r.FailURL = "" }, "VAL_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupSessionService(t)
			defer d.ctrl.Finish()

			req := validCreateSessionRequest()
			tt.mutate(&req)

			// No provider or repo calls expected.
			_, err := d.svc.CreateSession(context.Background(), req)
			require.Error(t, err)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, 400, appErr.HTTPStatus)
		})
	}
}

func TestSessionService_CreateSession_ProviderFailure(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(nil, errors.New("connection refused"))

	d.errorLogRepo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.PaymentErrorLog) error {
			assert.Equal(t, domain.ErrorSourceSessionCreate, e.Source)
			return nil
		})

	_, err := d.svc.CreateSession(ctx, validCreateSessionRequest())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.HTTPStatus)
}

func TestSessionService_CreateSession_ProviderMissingFields(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(&ports.ProviderSession{SessionID: "", CheckoutURL: ""}, nil)

	d.errorLogRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.CreateSession(ctx, validCreateSessionRequest())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PROV_002", appErr.Code)
}

func TestSessionService_CreateSession_ErrorLogFailureDoesNotMaskCause(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(nil, errors.New("timeout"))

	d.errorLogRepo.EXPECT().
		Create(ctx, gomock.Any()).
		Return(errors.New("insert failed"))

	_, err := d.svc.CreateSession(ctx, validCreateSessionRequest())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.HTTPStatus)
}

func TestSessionService_CreateSession_PersistFailure(t *testing.T) {
	d := setupSessionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.provider.EXPECT().
		CreateSession(ctx, gomock.Any()).
		Return(&ports.ProviderSession{SessionID: "sess_x", CheckoutURL: "https://pay.hesab.com/c/sess_x"}, nil)

	d.sessionRepo.EXPECT().
		Create(ctx, gomock.Any()).
		Return(errors.New("insert failed"))

	_, err := d.svc.CreateSession(ctx, validCreateSessionRequest())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.HTTPStatus)
}

// ==================== GetSession Tests ====================

func TestSessionService_GetSession(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		d := setupSessionService(t)
		defer d.ctrl.Finish()

		ctx := context.Background()
		d.sessionRepo.EXPECT().
			GetByID(ctx, "sess_abc").
			Return(&domain.PaymentSession{SessionID: "sess_abc", Status: domain.SessionStatusSuccess}, nil)

		session, err := d.svc.GetSession(ctx, "sess_abc")
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStatusSuccess, session.Status)
	})

	t.Run("empty id", func(t *testing.T) {
		d := setupSessionService(t)
		defer d.ctrl.Finish()

		_, err := d.svc.GetSession(context.Background(), "")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	})

	t.Run("not found", func(t *testing.T) {
		d := setupSessionService(t)
		defer d.ctrl.Finish()

		ctx := context.Background()
		d.sessionRepo.EXPECT().GetByID(ctx, "missing").Return(nil, nil)

		_, err := d.svc.GetSession(ctx, "missing")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.HTTPStatus)
		assert.Equal(t, "SES_001", appErr.Code)
	})
}
