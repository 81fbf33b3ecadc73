package hesabpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-api-key", 5*time.Second, nil, zerolog.Nop())
}

func TestClient_CreateSession(t *testing.T) {
	email := "buyer@example.com"
	params := ports.CreateProviderSessionParams{
		Items:      []domain.Item{{ID: "sku-1", Name: "Course", Price: 1500}},
		Email:      &email,
		SuccessURL: "https://shop.example.com/ok",
		FailURL:    "https://shop.example.com/fail",
	}

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/payment/create-session", r.URL.Path)
			assert.Equal(t, "API-Key test-api-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "buyer@example.com", body["email"])
			assert.Equal(t, "https://shop.example.com/ok", body["success_url"])
			assert.Len(t, body["items"], 1)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"session_id":"sess_1","checkout_url":"https://pay.hesab.com/c/sess_1"}`))
		})

		session, err := c.CreateSession(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "sess_1", session.SessionID)
		assert.Equal(t, "https://pay.hesab.com/c/sess_1", session.CheckoutURL)
	})

	t.Run("omits email for guests", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, hasEmail := body["email"]
			assert.False(t, hasEmail)
			_, _ = w.Write([]byte(`{"session_id":"s","checkout_url":"u"}`))
		})

		guest := params
		guest.Email = nil
		_, err := c.CreateSession(context.Background(), guest)
		require.NoError(t, err)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
		})

		_, err := c.CreateSession(context.Background(), params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("invalid response body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>gateway error</html>`))
		})

		_, err := c.CreateSession(context.Background(), params)
		require.Error(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := c.CreateSession(ctx, params)
		require.Error(t, err)
	})
}

func TestClient_TransferMultiVendor(t *testing.T) {
	params := ports.MultiVendorTransferParams{
		EncryptedPin: "enc-pin-b64",
		Vendors: []domain.VendorPayout{
			{AccountNumber: "ACC-001", Amount: 1000},
			{AccountNumber: "ACC-002", Amount: 2500},
		},
	}

	t.Run("success returns raw body", func(t *testing.T) {
		respJSON := `{"status":"ok","transfers":[{"account":"ACC-001"},{"account":"ACC-002"}]}`
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/money-transfers/multiple", r.URL.Path)
			assert.Equal(t, "API-Key test-api-key", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "enc-pin-b64", body["pin_code"])
			assert.Len(t, body["vendors"], 2)

			_, _ = w.Write([]byte(respJSON))
		})

		raw, err := c.TransferMultiVendor(context.Background(), params)
		require.NoError(t, err)
		assert.JSONEq(t, respJSON, string(raw))
	})

	t.Run("provider rejection", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"insufficient balance"}`))
		})

		_, err := c.TransferMultiVendor(context.Background(), params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")
	})
}
