package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/top2000/internal/chartcheck"
	"github.com/okian/top2000/pkg/logger"
)

// Default configuration constants.
const (
	defaultPageSize  = 100
	defaultDetails   = 50
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultRunBudget = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		pageSize = flag.Int("page-size", defaultPageSize, "Page size used to walk the listing")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		year     = flag.Int("year", 0, "Year of the reports to check (default: the service's current year)")
		details  = flag.Int("details", defaultDetails, "Number of song details to check, -1 for all")
		verbose  = flag.Bool("verbose", false, "Log every violation")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		chartcheck.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunBudget)
	defer cancel()

	cfg := &chartcheck.Config{
		BaseURL:  *baseURL,
		PageSize: *pageSize,
		Workers:  *workers,
		Timeout:  *timeout,
		Year:     *year,
		Details:  *details,
		Verbose:  *verbose,
	}

	if _, err := chartcheck.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Check failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
