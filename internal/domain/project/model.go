package project

// Project is a competing entry. The roster is fixed at event setup; the UV
// counter is mutated only by the traffic pipeline and is non-decreasing
// while the event is active.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
	TeamName    string `json:"team_name,omitempty"`
	TeamCode    string `json:"team_code,omitempty"`
	SiteID      string `json:"site_id,omitempty"`
	UV          int64  `json:"uv"`
	Enabled     bool   `json:"enabled"`

	// RecordID is the backing store record identifier, used for updates.
	RecordID string `json:"-"`
}
