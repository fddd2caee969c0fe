package ledger

import "time"

// Investment is a single committed amount from one investor to one project.
// Written exactly once; never mutated in normal operation.
type Investment struct {
	// Key is a client-generated idempotency key. A create whose outcome is
	// unknown (timeout after retries) is reconciled by looking the key up
	// instead of blindly re-sending the write.
	Key          string    `json:"key"`
	Account      string    `json:"account"`
	ProjectID    int64     `json:"project_id"`
	Amount       int64     `json:"amount"`
	InvestedAt   time.Time `json:"invested_at"`
	InvestorName string    `json:"investor_name,omitempty"`
	ProjectName  string    `json:"project_name,omitempty"`

	RecordID string `json:"-"`
}
