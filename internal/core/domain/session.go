package domain

import (
	"encoding/json"
	"time"
)

// SessionStatus represents the lifecycle state of a payment session.
type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusSuccess SessionStatus = "success"
	SessionStatusFailed  SessionStatus = "failed"
)

// Item is a single purchasable entry in a checkout session. Prices are in
// whole AFN, the smallest unit HesabPay settles in.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// PaymentSession is one checkout attempt with HesabPay. It is created in
// pending state and moved to a terminal state by the webhook handler; the
// core never deletes sessions.
type PaymentSession struct {
	SessionID         string          `json:"session_id"`
	Status            SessionStatus   `json:"status"`
	Email             *string         `json:"email,omitempty"`
	UserID            *string         `json:"user_id,omitempty"`
	Guest             bool            `json:"guest"`
	Items             []Item          `json:"items"`
	CheckoutURL       string          `json:"checkout_url"`
	CreatedAt         time.Time       `json:"created_at"`
	WebhookReceivedAt *time.Time      `json:"webhook_received_at,omitempty"`
	WebhookPayload    json.RawMessage `json:"webhook_payload,omitempty"` // last raw payload, kept for audit
}

// IsTerminal returns true if the session reached a final state.
func (s *PaymentSession) IsTerminal() bool {
	return s.Status == SessionStatusSuccess || s.Status == SessionStatusFailed
}

// TotalAmount sums the item prices.
func (s *PaymentSession) TotalAmount() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Price
	}
	return total
}
