package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorSource identifies which operation produced a diagnostic error entry.
type ErrorSource string

const (
	ErrorSourceSessionCreate ErrorSource = "SESSION_CREATE"
	ErrorSourceDistribution  ErrorSource = "DISTRIBUTION"
)

// PaymentErrorLog is a best-effort diagnostic record of provider failures.
// It is never read by business logic; it exists for operator triage.
type PaymentErrorLog struct {
	ID        uuid.UUID   `json:"id"`
	Source    ErrorSource `json:"source"`
	Message   string      `json:"message"`
	Detail    string      `json:"detail,omitempty"` // JSON string, e.g. provider response body
	CreatedAt time.Time   `json:"created_at"`
}
