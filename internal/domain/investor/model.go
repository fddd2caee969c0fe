package investor

// Investor holds simulated capital. Seeded before the event and immutable
// afterwards except for the enabled flag.
type Investor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Quota    int64  `json:"quota"`
	Enabled  bool   `json:"-"`

	RecordID string `json:"-"`
}

// Profile is an investor together with ledger-derived totals and history.
type Profile struct {
	Investor
	Committed int64          `json:"committed"`
	Remaining int64          `json:"remaining"`
	History   []HistoryEntry `json:"history"`
}

// HistoryEntry is one past investment, newest first.
type HistoryEntry struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Amount      int64  `json:"amount"`
	InvestedAt  int64  `json:"invested_at"`
}
