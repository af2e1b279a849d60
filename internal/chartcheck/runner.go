package chartcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/logger"
)

// Run walks the API at cfg.BaseURL and checks its answers against each
// other. A report is returned whenever the walk completed; the error is
// ErrChecksFailed when the report holds violations.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Named("chartcheck")
	rep := &Report{Stats: Stats{StartTime: time.Now()}}
	c := NewClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout)

	log.Info(ctx, "starting chart check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("pageSize", cfg.PageSize),
		logger.Int("workers", cfg.Workers),
		logger.Int("details", cfg.Details))

	if err := c.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}

	var info struct {
		CurrentYear int `json:"currentYear"`
	}
	if err := c.get(ctx, "/stats", &info); err != nil {
		return nil, err
	}
	rep.Year = cfg.Year
	if rep.Year == 0 {
		rep.Year = info.CurrentYear
	}

	pages, err := fetchListing(ctx, c, cfg)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	listing := verifyListing(rep, pages)
	rep.Stats.PagesFetched = len(pages)
	rep.Stats.SongsSeen = len(listing)

	picked := pickDetails(listing, cfg.Details)
	ids := make([]int, 0, len(picked))
	for _, s := range picked {
		ids = append(ids, s.SongID)
	}
	details, err := fetchDetails(ctx, c, cfg, ids)
	if err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}
	verifyDetails(rep, listing, details, info.CurrentYear)
	rep.Stats.DetailsChecked = len(details)

	for _, s := range picked {
		if err := checkSlug(ctx, c, rep, s.Title); err != nil {
			return nil, fmt.Errorf("slug: %w", err)
		}
	}

	r, err := fetchReports(ctx, c, rep.Year)
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	verifyReports(rep, r, listing, rep.Year == info.CurrentYear)
	rep.Stats.ReportsChecked = 6

	rep.Stats.Requests = c.Requests()
	rep.Stats.EndTime = time.Now()
	rep.Stats.Duration = rep.Stats.EndTime.Sub(rep.Stats.StartTime)
	logStats(ctx, log, rep, cfg.Verbose)

	if !rep.OK() {
		return rep, fmt.Errorf("%w: %d violations", ErrChecksFailed, len(rep.Violations))
	}
	return rep, nil
}

func pickDetails(listing []model.RankedSong, n int) []model.RankedSong {
	if n < 0 || n > len(listing) {
		return listing
	}
	return listing[:n]
}

// checkSlug looks a title up by slug. Titles with a literal hyphen cannot
// round-trip and are skipped; a 404 means a lower id with the same title
// left the chart.
func checkSlug(ctx context.Context, c *Client, rep *Report, title string) error {
	if strings.Contains(title, "-") {
		return nil
	}
	var d model.SongDetail
	err := c.get(ctx, "/api/songs/by-title/"+slugFor(title), &d)
	var se *StatusError
	switch {
	case errors.As(err, &se) && se.Status == http.StatusNotFound:
		return nil
	case err != nil:
		return err
	}
	verifySlug(rep, title, d)
	return nil
}

func slugFor(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "-"))
}

func logStats(ctx context.Context, log logger.Logger, rep *Report, verbose bool) {
	if verbose {
		for _, v := range rep.Violations {
			log.Warn(ctx, "violation", logger.String("check", v.Check), logger.String("detail", v.Detail))
		}
	}

	var perSecond float64
	if rep.Stats.Duration > 0 {
		perSecond = float64(rep.Stats.Requests) / rep.Stats.Duration.Seconds()
	}
	log.Info(ctx, "chart check finished",
		logger.Int("year", rep.Year),
		logger.Int("pagesFetched", rep.Stats.PagesFetched),
		logger.Int("songsSeen", rep.Stats.SongsSeen),
		logger.Int("detailsChecked", rep.Stats.DetailsChecked),
		logger.Int("reportsChecked", rep.Stats.ReportsChecked),
		logger.Int("violations", len(rep.Violations)),
		logger.Duration("duration", rep.Stats.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}
