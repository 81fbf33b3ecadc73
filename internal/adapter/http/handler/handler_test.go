package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hesab-payment-service/internal/adapter/http/dto"
	"hesab-payment-service/internal/adapter/http/middleware"
	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/internal/core/ports/mocks"
	"hesab-payment-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Session Handler Tests ---

func TestCreateSession_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSessionService(ctrl)
	h := NewSessionHandler(mockSvc)

	mockSvc.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.CreateSessionRequest) (*ports.CreateSessionResult, error) {
			assert.Len(t, req.Items, 1)
			assert.Equal(t, "https://shop.example.com/ok", req.SuccessURL)
			return &ports.CreateSessionResult{
				SessionID:   "sess_1",
				CheckoutURL: "https://pay.hesab.com/c/sess_1",
			}, nil
		})

	body, _ := json.Marshal(dto.CreateSessionRequest{
		Items:      []dto.ItemRequest{{ID: "sku-1", Name: "Course", Price: 1500}},
		SuccessURL: "https://shop.example.com/ok",
		FailURL:    "https://shop.example.com/fail",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "sess_1", data["session_id"])
	assert.Equal(t, "https://pay.hesab.com/c/sess_1", data["checkout_url"])
}

func TestCreateSession_BindingError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewSessionHandler(mocks.NewMockSessionService(ctrl))

	// Missing required fields => binding error, no service call.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSession_ProviderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockSessionService(ctrl)
	h := NewSessionHandler(mockSvc)

	mockSvc.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ProviderError(assert.AnError))

	body, _ := json.Marshal(dto.CreateSessionRequest{
		Items:      []dto.ItemRequest{{ID: "sku-1", Name: "Course", Price: 1500}},
		SuccessURL: "https://shop.example.com/ok",
		FailURL:    "https://shop.example.com/fail",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PROV_001")
}

func TestGetSession(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := mocks.NewMockSessionService(ctrl)
		h := NewSessionHandler(mockSvc)

		receivedAt := time.Now().UTC()
		email := "buyer@example.com"
		mockSvc.EXPECT().GetSession(gomock.Any(), "sess_1").Return(&domain.PaymentSession{
			SessionID:         "sess_1",
			Status:            domain.SessionStatusSuccess,
			Email:             &email,
			Items:             []domain.Item{{ID: "sku-1", Name: "Course", Price: 1500}},
			CheckoutURL:       "https://pay.hesab.com/c/sess_1",
			CreatedAt:         time.Now().UTC().Add(-time.Hour),
			WebhookReceivedAt: &receivedAt,
		}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess_1", nil)
		c.Params = gin.Params{{Key: "id", Value: "sess_1"}}

		h.GetSession(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "success", data["status"])
		assert.Equal(t, float64(1500), data["total_amount"])
		assert.NotEmpty(t, data["webhook_received_at"])
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := mocks.NewMockSessionService(ctrl)
		h := NewSessionHandler(mockSvc)

		mockSvc.EXPECT().GetSession(gomock.Any(), "ghost").Return(nil, apperror.ErrSessionNotFound("ghost"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/ghost", nil)
		c.Params = gin.Params{{Key: "id", Value: "ghost"}}

		h.GetSession(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "SES_001")
	})
}

// --- Webhook Handler Tests ---

func TestWebhookReceive(t *testing.T) {
	rawBody := []byte(`{"session_id":"sess_1","success":true}`)

	t.Run("applied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := mocks.NewMockWebhookService(ctrl)
		h := NewWebhookHandler(mockSvc)

		mockSvc.EXPECT().
			Process(gomock.Any(), rawBody, "sig-hex").
			Return(&ports.WebhookResult{
				SessionID: "sess_1",
				Outcome:   ports.WebhookOutcomeApplied,
				Status:    domain.SessionStatusSuccess,
			}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/hesabpay", bytes.NewReader(rawBody))
		c.Request.Header.Set(middleware.HeaderSignature, "sig-hex")

		h.Receive(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "applied", data["outcome"])
		assert.Equal(t, "success", data["status"])
	})

	t.Run("missing signature", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := mocks.NewMockWebhookService(ctrl)
		h := NewWebhookHandler(mockSvc)

		mockSvc.EXPECT().
			Process(gomock.Any(), rawBody, "").
			Return(nil, apperror.ErrMissingSignature())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/hesabpay", bytes.NewReader(rawBody))

		h.Receive(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "SEC_001")
	})

	t.Run("bad signature", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := mocks.NewMockWebhookService(ctrl)
		h := NewWebhookHandler(mockSvc)

		mockSvc.EXPECT().
			Process(gomock.Any(), rawBody, "wrong").
			Return(nil, apperror.ErrInvalidSignature())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/hesabpay", bytes.NewReader(rawBody))
		c.Request.Header.Set(middleware.HeaderSignature, "wrong")

		h.Receive(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "SEC_002")
	})
}

func TestWebhookRoute_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(RouterDeps{
		SessionSvc:      mocks.NewMockSessionService(ctrl),
		WebhookSvc:      mocks.NewMockWebhookService(ctrl),
		DistributionSvc: mocks.NewMockDistributionService(ctrl),
		TokenSvc:        mocks.NewMockTokenService(ctrl),
		Logger:          zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhooks/hesabpay", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// --- Distribution Handler Tests ---

func distributionContext(t *testing.T, method string, target string, body []byte) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, "user-1")
	return w, c
}

func TestDistribute_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDistributionService(ctrl)
	h := NewDistributionHandler(mockSvc)

	mockSvc.EXPECT().
		Distribute(gomock.Any(), ports.DistributeRequest{
			InitiatorUserID: "user-1",
			Vendors: []domain.VendorPayout{
				{AccountNumber: "ACC-001", Amount: 1000},
			},
		}).
		Return(&ports.DistributeResult{TransactionID: "TXN-1", Summary: "distributed to 1 vendors"}, nil)

	body, _ := json.Marshal(dto.DistributeRequest{
		Vendors: []dto.VendorPayoutRequest{{AccountNumber: "ACC-001", Amount: 1000}},
	})

	w, c := distributionContext(t, http.MethodPost, "/api/v1/distributions", body)
	h.Distribute(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "TXN-1", data["transaction_id"])
}

func TestDistribute_NoIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewDistributionHandler(mocks.NewMockDistributionService(ctrl))

	body, _ := json.Marshal(dto.DistributeRequest{
		Vendors: []dto.VendorPayoutRequest{{AccountNumber: "ACC-001", Amount: 1000}},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/distributions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Distribute(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDistribute_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDistributionService(ctrl)
	h := NewDistributionHandler(mockSvc)

	mockSvc.EXPECT().
		Distribute(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrVendorCount(17))

	vendors := make([]dto.VendorPayoutRequest, 17)
	for i := range vendors {
		vendors[i] = dto.VendorPayoutRequest{AccountNumber: string(rune('A' + i)), Amount: 100}
	}
	body, _ := json.Marshal(dto.DistributeRequest{Vendors: vendors})

	w, c := distributionContext(t, http.MethodPost, "/api/v1/distributions", body)
	h.Distribute(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_004")
}

func TestListDistributions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDistributionService(ctrl)
	h := NewDistributionHandler(mockSvc)

	mockSvc.EXPECT().
		ListDistributions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, p ports.DistributionListParams) ([]domain.DistributionRecord, int64, error) {
			require.NotNil(t, p.InitiatorUserID)
			assert.Equal(t, "user-1", *p.InitiatorUserID)
			require.NotNil(t, p.Status)
			assert.Equal(t, domain.DistributionStatusCompleted, *p.Status)
			assert.Equal(t, 2, p.Page)
			return []domain.DistributionRecord{{
				TxnID:           "TXN-1",
				InitiatorUserID: "user-1",
				Vendors:         []domain.VendorPayout{{AccountNumber: "ACC-001", Amount: 1000}},
				Status:          domain.DistributionStatusCompleted,
				CreatedAt:       time.Now().UTC(),
			}}, 21, nil
		})

	w, c := distributionContext(t, http.MethodGet, "/api/v1/distributions?page=2&status=completed", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(21), data["total"])
	assert.Len(t, data["distributions"], 1)
}

func TestListDistributions_BadStatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewDistributionHandler(mocks.NewMockDistributionService(ctrl))

	w, c := distributionContext(t, http.MethodGet, "/api/v1/distributions?status=bogus", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health Handler Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }

func (f fakeChecker) Name() string { return f.name }

func TestHealthCheck(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	})

	t.Run("degraded", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis", err: assert.AnError}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}
