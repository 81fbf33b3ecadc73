package domain

import (
	"encoding/json"
	"time"
)

// Vendor list bounds enforced before any provider call.
const (
	MinVendors = 1
	MaxVendors = 16
)

// DistributionStatus represents the outcome of a payout attempt.
// There is no pending state: a record is created and finalized in a
// single service invocation.
type DistributionStatus string

const (
	DistributionStatusCompleted DistributionStatus = "completed"
	DistributionStatusFailed    DistributionStatus = "failed"
)

// VendorPayout is a single recipient in a multi-vendor distribution.
type VendorPayout struct {
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

// DistributionRecord is the append-only audit record of one payout attempt,
// written exactly once per attempt regardless of outcome.
type DistributionRecord struct {
	TxnID            string             `json:"txn_id"`
	InitiatorUserID  string             `json:"initiator_user_id"`
	Vendors          []VendorPayout     `json:"vendors"`
	Status           DistributionStatus `json:"status"`
	ProviderResponse json.RawMessage    `json:"provider_response,omitempty"`
	ErrorDetail      *string            `json:"error_detail,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// TotalAmount sums the vendor payout amounts.
func (r *DistributionRecord) TotalAmount() int64 {
	var total int64
	for _, v := range r.Vendors {
		total += v.Amount
	}
	return total
}
