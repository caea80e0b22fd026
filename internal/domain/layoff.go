package domain

import "time"

// Article is a candidate news item fetched from an upstream provider.
type Article struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Region values produced by the region classifier.
const (
	CountryIndia = "India"
	CountryUSA   = "USA"
)

// DefaultIndustry is used when a company is missing from every industry group.
const DefaultIndustry = "Technology"

// LayoffEvent is the persisted record of a confirmed layoff.
type LayoffEvent struct {
	ID               int64     `json:"id"`
	CompanyName      string    `json:"company_name"`
	LayoffDate       time.Time `json:"layoff_date"`
	EmployeesLaidOff *int      `json:"employees_laid_off"`
	Country          string    `json:"country"`
	Industry         string    `json:"industry"`
	SourceURL        string    `json:"source_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// Employees returns the headcount and whether it is known.
func (e LayoffEvent) Employees() (int, bool) {
	if e.EmployeesLaidOff == nil {
		return 0, false
	}
	return *e.EmployeesLaidOff, true
}

// IntPtr is a small helper for building events with a known headcount.
func IntPtr(v int) *int {
	return &v
}

// SyncState enumerates the phases of one ingestion cycle.
type SyncState string

const (
	StateFetching              SyncState = "fetching"
	StateDeduplicatingArticles SyncState = "deduplicating_articles"
	StateClassifying           SyncState = "classifying"
	StateAdmitting             SyncState = "admitting"
	StateDone                  SyncState = "done"
)

// SyncSummary is reported after every ingestion cycle.
type SyncSummary struct {
	Message      string `json:"message"`
	Saved        int    `json:"saved"`
	Skipped      int    `json:"skipped"`
	TotalFetched int    `json:"total_fetched"`

	// Events lists what was saved in this cycle; not part of the API payload.
	Events []LayoffEvent `json:"-"`
}

// CleanupResult is reported by the maintenance sweeps.
type CleanupResult struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}
