// Package service is the query facade behind the HTTP API. It validates
// inputs, dispatches to the ranking and statistics engines and turns store
// failures into the three error kinds callers see.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/internal/domain/ranking"
	"github.com/okian/top2000/internal/domain/stats"
	"github.com/okian/top2000/internal/domain/types"
	"github.com/okian/top2000/pkg/errkind"
	"github.com/okian/top2000/pkg/logger"
	"github.com/okian/top2000/pkg/metrics"
)

// Service implements the API dependencies for the chart.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	ranking *ranking.Engine
	stats   *stats.Engine

	validate *validator.Validate
	yearRule string
	flight   singleflight.Group

	// Configuration
	currentYear     int
	minYear         int
	maxYear         int
	historyWindow   int
	metricsInterval time.Duration

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		validate:        validator.New(),
		currentYear:     ranking.DefaultCurrentYear,
		minYear:         2000,
		maxYear:         2025,
		historyWindow:   ranking.DefaultHistoryWindow,
		metricsInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.yearRule = fmt.Sprintf("gte=%d,lte=%d", s.minYear, s.maxYear)
	s.ranking = ranking.New(store,
		ranking.WithCurrentYear(s.currentYear),
		ranking.WithHistoryWindow(s.historyWindow),
	)
	s.stats = stats.New(store)
	return s
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}

// Start begins refreshing the chart shape gauges in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.stopCh = make(chan struct{})

	if s.metricsInterval > 0 {
		s.updateChartMetrics(ctx)
		s.wg.Add(1)
		go s.metricsLoop(ctx, s.stopCh)
	}

	s.started = true
	s.log().Info(ctx, "chart service started",
		logger.Int("currentYear", s.currentYear),
		logger.Int("minYear", s.minYear),
		logger.Int("maxYear", s.maxYear),
		logger.Int("historyWindow", s.historyWindow),
	)
	return nil
}

// Stop halts the background refresher. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log().Info(context.Background(), "chart service stopped")
}

func (s *Service) metricsLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.updateChartMetrics(ctx)
		}
	}
}

func (s *Service) updateChartMetrics(ctx context.Context) {
	years, err := s.store.Years(ctx)
	if err != nil {
		s.log().Warn(ctx, "chart metrics refresh failed", logger.Error(err))
		return
	}
	metrics.UpdateEditionsTotal(len(years))
	for _, y := range years {
		n, err := s.store.Count(ctx, y)
		if err != nil {
			s.log().Warn(ctx, "chart metrics refresh failed", logger.Int("year", y), logger.Error(err))
			return
		}
		metrics.UpdateEditionSize(strconv.Itoa(y), n)
	}
}

// CurrentYear returns the edition treated as current.
func (s *Service) CurrentYear() int { return s.currentYear }

// YearRange returns the inclusive range of years accepted by the reports.
func (s *Service) YearRange() (int, int) { return s.minYear, s.maxYear }

func (s *Service) checkYear(op string, year int) error {
	if err := s.validate.Var(year, s.yearRule); err != nil {
		return errkind.WrapKind(op, ErrInvalidArgument,
			fmt.Errorf("year must be between %d and %d", s.minYear, s.maxYear))
	}
	return nil
}

// classify maps an engine or store failure onto a facade error kind. Only
// not-found causes reach the caller; anything else is logged and replaced
// by a bare ErrInternal.
func (s *Service) classify(ctx context.Context, op, subject string, err error) error {
	switch {
	case errors.Is(err, ranking.ErrNotCharting):
		return errkind.WrapKind(op, ErrNotFound, fmt.Errorf("%s not in current edition", subject))
	case errors.Is(err, repository.ErrNotFound):
		return errkind.WrapKind(op, ErrNotFound, fmt.Errorf("%s not found", subject))
	case errors.Is(err, context.Canceled):
		s.log().Warn(ctx, "query abandoned", logger.String("op", op), logger.Error(err))
		return errkind.NewKind(op, ErrInternal)
	default:
		s.log().Error(ctx, "query failed", logger.String("op", op), logger.Error(err))
		metrics.RecordErrorByComponent("service", "internal")
		return errkind.NewKind(op, ErrInternal)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// observe runs fn, records latency and row count, and classifies failures.
func observe[T any](ctx context.Context, s *Service, query, subject string, rows func(T) int, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	if err != nil {
		var zero T
		err = s.classify(ctx, "service."+query, subject, err)
		metrics.RecordQueryError(query, errorKind(err))
		return zero, err
	}
	metrics.RecordQuery(query, float64(time.Since(start).Microseconds())/1000, rows(out))
	s.log().Debug(ctx, "query served",
		logger.String("query", query),
		logger.Int("rows", rows(out)),
		logger.Duration("took", time.Since(start)),
	)
	return out, nil
}

func one[T any](T) int       { return 1 }
func count[T any](v []T) int { return len(v) }

// rejected records a validation failure that never reached the engines.
func rejected[T any](query string, err error) (T, error) {
	var zero T
	metrics.RecordQueryError(query, errorKind(err))
	return zero, err
}

// Songs returns one page of the current edition.
func (s *Service) Songs(ctx context.Context, page, pageSize int) (model.Page, error) {
	return observe(ctx, s, "songs", "song",
		func(p model.Page) int { return len(p.Songs) },
		func() (model.Page, error) {
			return s.ranking.List(ctx, types.PageRequest{Page: page, PageSize: pageSize})
		})
}

// Song returns the detail of a currently charting song.
func (s *Service) Song(ctx context.Context, id int) (model.SongDetail, error) {
	return observe(ctx, s, "song", "song", one[model.SongDetail],
		func() (model.SongDetail, error) { return s.ranking.Detail(ctx, id) })
}

// SongBySlug returns the detail of the first song whose title matches slug.
func (s *Service) SongBySlug(ctx context.Context, slug string) (model.SongDetail, error) {
	return observe(ctx, s, "song_by_slug", "song", one[model.SongDetail],
		func() (model.SongDetail, error) { return s.ranking.DetailBySlug(ctx, slug) })
}

// SongHistory returns a song's positions over the history window.
func (s *Service) SongHistory(ctx context.Context, id int) ([]model.HistoryPoint, error) {
	return observe(ctx, s, "song_history", "song", count[model.HistoryPoint],
		func() ([]model.HistoryPoint, error) { return s.ranking.History(ctx, id) })
}

// DroppedSongs returns songs that lost ground in year, biggest fall first.
func (s *Service) DroppedSongs(ctx context.Context, year int) ([]model.DroppedSong, error) {
	const query = "dropped_songs"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[[]model.DroppedSong](query, err)
	}
	return observe(ctx, s, query, "year", count[model.DroppedSong],
		func() ([]model.DroppedSong, error) { return s.stats.Dropped(ctx, year) })
}

// NewEntries returns songs new in year relative to year-1.
func (s *Service) NewEntries(ctx context.Context, year int) ([]model.YearEntry, error) {
	const query = "new_entries"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[[]model.YearEntry](query, err)
	}
	return observe(ctx, s, query, "year", count[model.YearEntry],
		func() ([]model.YearEntry, error) { return s.stats.NewEntries(ctx, year) })
}

// LostEntries returns songs that charted in year-1 but not in year.
func (s *Service) LostEntries(ctx context.Context, year int) ([]model.LostEntry, error) {
	const query = "lost_entries"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[[]model.LostEntry](query, err)
	}
	return observe(ctx, s, query, "year", count[model.LostEntry],
		func() ([]model.LostEntry, error) { return s.stats.LostEntries(ctx, year) })
}

// Reentries returns songs back in year after missing at least year-1.
func (s *Service) Reentries(ctx context.Context, year int) ([]model.YearEntry, error) {
	const query = "reentries"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[[]model.YearEntry](query, err)
	}
	return observe(ctx, s, query, "year", count[model.YearEntry],
		func() ([]model.YearEntry, error) { return s.stats.Reentries(ctx, year) })
}

// Unchanged returns songs holding their year-1 position in year.
func (s *Service) Unchanged(ctx context.Context, year int) ([]model.YearEntry, error) {
	const query = "unchanged"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[[]model.YearEntry](query, err)
	}
	return observe(ctx, s, query, "year", count[model.YearEntry],
		func() ([]model.YearEntry, error) { return s.stats.Unchanged(ctx, year) })
}

// YearSummary counts every year report for year.
func (s *Service) YearSummary(ctx context.Context, year int) (model.YearSummary, error) {
	const query = "year_summary"
	if err := s.checkYear("service."+query, year); err != nil {
		return rejected[model.YearSummary](query, err)
	}
	return observe(ctx, s, query, "year", one[model.YearSummary],
		func() (model.YearSummary, error) { return s.stats.Summary(ctx, year) })
}

// EveryEdition returns the songs present in every edition. Concurrent calls
// share one computation; nothing is kept once it finishes. The shared
// computation does not inherit the cancellation of whichever caller started
// it; each caller stops waiting when its own context is done.
func (s *Service) EveryEdition(ctx context.Context) ([]model.EditionSong, error) {
	return observe(ctx, s, "every_edition", "edition", count[model.EditionSong],
		func() ([]model.EditionSong, error) {
			ch := s.flight.DoChan("every_edition", func() (any, error) {
				return s.stats.EveryEdition(context.WithoutCancel(ctx))
			})

			var res singleflight.Result
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case res = <-ch:
			}
			if res.Err != nil {
				return nil, res.Err
			}
			shared, _ := res.Val.([]model.EditionSong)
			out := make([]model.EditionSong, len(shared))
			copy(out, shared)
			return out, nil
		})
}

// Artists returns every artist with the number of chart entries of its
// songs, highest first.
func (s *Service) Artists(ctx context.Context) ([]model.ArtistSongCount, error) {
	return observe(ctx, s, "artists", "artist", count[model.ArtistSongCount],
		func() ([]model.ArtistSongCount, error) { return s.store.ArtistEntryCounts(ctx) })
}

// Artist returns an artist with its songs. A song without a release year is
// listed with 0.
func (s *Service) Artist(ctx context.Context, id int) (model.ArtistDetail, error) {
	return observe(ctx, s, "artist", "artist", one[model.ArtistDetail],
		func() (model.ArtistDetail, error) {
			a, err := s.store.Artist(ctx, id)
			if err != nil {
				return model.ArtistDetail{}, err
			}
			songs, err := s.store.ArtistSongs(ctx, id)
			if err != nil {
				return model.ArtistDetail{}, err
			}

			detail := model.ArtistDetail{Artist: a, Songs: make([]model.ArtistSong, 0, len(songs))}
			for _, song := range songs {
				as := model.ArtistSong{SongID: song.ID, Title: song.Title}
				if song.ReleaseYear != nil {
					as.ReleaseYear = *song.ReleaseYear
				}
				detail.Songs = append(detail.Songs, as)
			}
			return detail, nil
		})
}

// GetStats returns service information for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	out := map[string]any{
		"started":       started,
		"currentYear":   s.currentYear,
		"minYear":       s.minYear,
		"maxYear":       s.maxYear,
		"historyWindow": s.historyWindow,
	}

	years, err := s.store.Years(ctx)
	if err != nil {
		s.log().Warn(ctx, "stats lookup failed", logger.Error(err))
		out["storeAvailable"] = false
		return out
	}
	size, err := s.store.Count(ctx, s.currentYear)
	if err != nil {
		s.log().Warn(ctx, "stats lookup failed", logger.Error(err))
		out["storeAvailable"] = false
		return out
	}
	out["storeAvailable"] = true
	out["editions"] = len(years)
	out["currentEditionSize"] = size
	return out
}
