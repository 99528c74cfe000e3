// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// TicketActivityEvent is published whenever a ticket is registered or
// completed. It carries enough information for downstream consumers to log
// or notify without re-reading the shared sheet, which would only widen the
// staleness window.
type TicketActivityEvent struct {
	Action       string `json:"action"` // "registered" or "completed"
	StoreName    string `json:"store_name"`
	TicketNumber string `json:"ticket_number"`
	RegisteredAt string `json:"registered_at"`
	Position     int    `json:"position,omitempty"` // full-table offset, completions only
	OccurredAt   string `json:"occurred_at"`        // RFC3339 UTC
}

const (
	ActionRegistered = "registered"
	ActionCompleted  = "completed"
)
