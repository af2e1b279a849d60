// Package chartcheck walks a running Top 2000 API and verifies that its
// answers are consistent with each other: the pages partition the ranking,
// movement arithmetic holds, details agree with the listing and the year
// reports respect their subset rules.
package chartcheck

import (
	"fmt"
	"time"
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL  string        // Base URL of the service
	PageSize int           // Page size used to walk the listing
	Workers  int           // Number of concurrent requests
	Timeout  time.Duration // HTTP request timeout
	Year     int           // Report year; 0 uses the service's current year
	Details  int           // Number of song details to check; negative checks all
	Verbose  bool          // Log every violation as it is found
}

// Violation is one failed consistency check.
type Violation struct {
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

// Stats holds run statistics.
type Stats struct {
	PagesFetched   int
	SongsSeen      int
	DetailsChecked int
	ReportsChecked int
	Requests       int64
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// Report is the outcome of a run.
type Report struct {
	Year       int
	Stats      Stats
	Violations []Violation
}

// OK reports whether every check passed.
func (r *Report) OK() bool { return len(r.Violations) == 0 }

func (r *Report) fail(check, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Check: check, Detail: fmt.Sprintf(format, args...)})
}
