package chartcheck

import "os"

// ShowHelp prints usage information for the chart check tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Top 2000 Chart Check
====================

Walks a running Top 2000 API and checks that its answers agree with each
other: paging, position changes, song details, slugs and year reports.

Usage:
  go run cmd/chartcheck/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -page-size int
        Page size used to walk the listing (default 100)
  -workers int
        Number of concurrent requests (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -year int
        Year of the reports to check (default: the service's current year)
  -details int
        Number of song details to check, -1 for all (default 50)
  -verbose
        Log every violation
  -help
        Show this help message

Examples:
  # Check a local service
  go run cmd/chartcheck/main.go

  # Check every song and the 2023 reports
  go run cmd/chartcheck/main.go -details -1 -year 2023 -url http://localhost:8080
`)
}
