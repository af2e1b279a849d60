package service

import (
	"time"

	"github.com/okian/top2000/internal/domain/ranking"
	"github.com/okian/top2000/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCurrentYear sets the edition treated as current.
func WithCurrentYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.currentYear = year
		}
	}
}

// WithYearRange sets the inclusive range of years accepted by the reports.
func WithYearRange(minYear, maxYear int) Option {
	return func(s *Service) {
		if minYear > 0 && maxYear >= minYear {
			s.minYear = minYear
			s.maxYear = maxYear
		}
	}
}

// WithHistoryWindow sets how many editions a song history covers, at most
// ranking.MaxHistoryWindow.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= ranking.MaxHistoryWindow {
			s.historyWindow = n
		}
	}
}

// WithMetricsInterval sets how often chart shape gauges are refreshed after
// Start. Zero disables the refresher.
func WithMetricsInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.metricsInterval = d
		}
	}
}
