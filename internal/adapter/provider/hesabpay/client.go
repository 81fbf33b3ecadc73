// Package hesabpay is the outbound HTTP adapter for the HesabPay API.
package hesabpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hesab-payment-service/internal/core/domain"
	"hesab-payment-service/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	createSessionPath = "/api/v1/payment/create-session"
	multiTransferPath = "/api/v1/money-transfers/multiple"

	// maxErrorBodyBytes caps how much of an error response is captured
	// into logs and error messages.
	maxErrorBodyBytes = 4096
)

// HTTPClient is the subset of http.Client used by this adapter.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.ProviderClient against the HesabPay REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a Client with a default http.Client when none is given.
func NewClient(baseURL string, apiKey string, timeout time.Duration, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log,
	}
}

type createSessionBody struct {
	Items      []itemBody `json:"items"`
	Email      *string    `json:"email,omitempty"`
	SuccessURL string     `json:"success_url"`
	FailURL    string     `json:"fail_url"`
}

type itemBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateSession requests a hosted checkout session from HesabPay.
func (c *Client) CreateSession(ctx context.Context, params ports.CreateProviderSessionParams) (*ports.ProviderSession, error) {
	body := createSessionBody{
		Items:      toItemBodies(params.Items),
		Email:      params.Email,
		SuccessURL: params.SuccessURL,
		FailURL:    params.FailURL,
	}

	respBody, err := c.post(ctx, createSessionPath, body)
	if err != nil {
		return nil, err
	}

	var resp createSessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode create-session response: %w", err)
	}

	return &ports.ProviderSession{
		SessionID:   resp.SessionID,
		CheckoutURL: resp.CheckoutURL,
	}, nil
}

type multiTransferBody struct {
	PinCode string       `json:"pin_code"`
	Vendors []vendorBody `json:"vendors"`
}

type vendorBody struct {
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

// TransferMultiVendor executes the multi-vendor disbursement. The raw
// response body is returned for audit storage.
func (c *Client) TransferMultiVendor(ctx context.Context, params ports.MultiVendorTransferParams) (json.RawMessage, error) {
	vendors := make([]vendorBody, len(params.Vendors))
	for i, v := range params.Vendors {
		vendors[i] = vendorBody{AccountNumber: v.AccountNumber, Amount: v.Amount}
	}

	respBody, err := c.post(ctx, multiTransferPath, multiTransferBody{
		PinCode: params.EncryptedPin,
		Vendors: vendors,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(respBody), nil
}

// post sends an authenticated JSON POST and returns the response body on a
// 2xx status.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "API-Key "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hesabpay %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("hesabpay request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("hesabpay %s: status %d: %s", path, resp.StatusCode, string(snippet))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

func toItemBodies(items []domain.Item) []itemBody {
	out := make([]itemBody, len(items))
	for i, it := range items {
		out[i] = itemBody{ID: it.ID, Name: it.Name, Price: it.Price}
	}
	return out
}
