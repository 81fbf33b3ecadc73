package domain

// WebhookEvent is the validated shape of a HesabPay callback body.
// Raw payloads are parsed into this before any business logic runs;
// unexpected shapes are rejected at the parse step.
type WebhookEvent struct {
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
	Amount    *int64 `json:"amount,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"` // provider event time, Unix seconds
}

// StatusFromOutcome maps the provider success flag to a terminal session status.
func (e *WebhookEvent) StatusFromOutcome() SessionStatus {
	if e.Success {
		return SessionStatusSuccess
	}
	return SessionStatusFailed
}
