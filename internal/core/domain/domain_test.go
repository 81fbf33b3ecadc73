package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSession_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status SessionStatus
		want   bool
	}{
		{"pending", SessionStatusPending, false},
		{"success", SessionStatusSuccess, true},
		{"failed", SessionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &PaymentSession{Status: tt.status}
			assert.Equal(t, tt.want, s.IsTerminal())
		})
	}
}

func TestPaymentSession_TotalAmount(t *testing.T) {
	s := &PaymentSession{Items: []Item{
		{ID: "p1", Name: "Premium", Price: 1000},
		{ID: "p2", Name: "Addon", Price: 250},
	}}
	assert.Equal(t, int64(1250), s.TotalAmount())

	empty := &PaymentSession{}
	assert.Equal(t, int64(0), empty.TotalAmount())
}

func TestWebhookEvent_StatusFromOutcome(t *testing.T) {
	ok := &WebhookEvent{SessionID: "s1", Success: true}
	assert.Equal(t, SessionStatusSuccess, ok.StatusFromOutcome())

	failed := &WebhookEvent{SessionID: "s1", Success: false}
	assert.Equal(t, SessionStatusFailed, failed.StatusFromOutcome())
}

func TestDistributionRecord_TotalAmount(t *testing.T) {
	r := &DistributionRecord{Vendors: []VendorPayout{
		{AccountNumber: "A", Amount: 700},
		{AccountNumber: "B", Amount: 300},
	}}
	assert.Equal(t, int64(1000), r.TotalAmount())
}

func TestSessionStatus_Constants(t *testing.T) {
	assert.Equal(t, SessionStatus("pending"), SessionStatusPending)
	assert.Equal(t, SessionStatus("success"), SessionStatusSuccess)
	assert.Equal(t, SessionStatus("failed"), SessionStatusFailed)
}

func TestDistributionStatus_Constants(t *testing.T) {
	assert.Equal(t, DistributionStatus("completed"), DistributionStatusCompleted)
	assert.Equal(t, DistributionStatus("failed"), DistributionStatusFailed)
}

func TestVendorBounds(t *testing.T) {
	assert.Equal(t, 1, MinVendors)
	assert.Equal(t, 16, MaxVendors)
}
