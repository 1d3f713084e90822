package storage

import "time"

// RecordKey is the single key under which the browsing record is stored.
const RecordKey = "webtime_data"

// BrowsingRecord is the persisted snapshot written by the extension.
type BrowsingRecord struct {
	Sites       map[string]SiteTotals           `json:"sites"`
	DailyStats  map[string]map[string]DayTotals `json:"dailyStats"`
	LastUpdated *int64                          `json:"lastUpdated,omitempty"`
}

// SiteTotals holds the lifetime counters for one domain.
type SiteTotals struct {
	TotalTime int64  `json:"totalTime"` // milliseconds
	Visits    int64  `json:"visits"`
	Favicon   string `json:"favicon"`
}

// DayTotals holds one domain's counters for a single local day.
type DayTotals struct {
	Time   int64 `json:"time"` // milliseconds
	Visits int64 `json:"visits"`
}

// EmptyRecord returns a record with both collections initialized.
func EmptyRecord() BrowsingRecord {
	return BrowsingRecord{
		Sites:      map[string]SiteTotals{},
		DailyStats: map[string]map[string]DayTotals{},
	}
}

// Normalize replaces nil collections with empty maps so that absence
// reads the same as an empty value.
func (r *BrowsingRecord) Normalize() {
	if r.Sites == nil {
		r.Sites = map[string]SiteTotals{}
	}
	if r.DailyStats == nil {
		r.DailyStats = map[string]map[string]DayTotals{}
	}
}

// Action is one entry of the audit log.
type Action struct {
	ID        int64
	Action    string // "import", "export", "clear"
	Detail    string
	Timestamp time.Time
}

// Stats holds aggregate statistics about the quipu database.
type Stats struct {
	RecordBytes  int64
	RecordStored bool
	UpdatedAt    time.Time
	TotalActions int64
}
