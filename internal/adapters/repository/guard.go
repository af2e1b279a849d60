package repository

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/errkind"
	"github.com/okian/top2000/pkg/logger"
	"github.com/okian/top2000/pkg/metrics"
)

// Guarded decorates a Store with a circuit breaker and per-call metrics.
// Reads are never retried; once the breaker opens, calls fail fast with
// ErrUnavailable until the open timeout elapses.
type Guarded struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]

	name             string
	maxFailures      uint32
	openTimeout      time.Duration
	halfOpenRequests uint32
}

var _ Store = (*Guarded)(nil)

// NewGuarded wraps next.
func NewGuarded(next Store, opts ...GuardOption) *Guarded {
	g := &Guarded{
		next:             next,
		name:             "store",
		maxFailures:      5,
		openTimeout:      10 * time.Second,
		halfOpenRequests: 1,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        g.name,
		MaxRequests: g.halfOpenRequests,
		Timeout:     g.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= g.maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, float64(to))
			logger.Get().Warn(context.Background(), "store breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A missing record or an abandoned request says nothing about store health.
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
	metrics.UpdateBreakerState(g.name, float64(gobreaker.StateClosed))
	return g
}

// State reports the breaker state.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

func guard[T any](g *Guarded, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := g.cb.Execute(func() (any, error) {
		return fn()
	})
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)

	var zero T
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecordBreakerRejected(g.name)
			return zero, errkind.WrapKind("repository."+op, ErrUnavailable, err)
		case errors.Is(err, ErrNotFound):
			return zero, err
		}
		metrics.RecordStoreError(op)
		metrics.RecordErrorByComponent("repository", op)
		return zero, err
	}
	out, _ := res.(T)
	return out, nil
}

// Song implements Store.
func (g *Guarded) Song(ctx context.Context, id int) (model.Song, error) {
	return guard(g, "song", func() (model.Song, error) { return g.next.Song(ctx, id) })
}

// SongByTitle implements Store.
func (g *Guarded) SongByTitle(ctx context.Context, title string) (model.Song, error) {
	return guard(g, "song_by_title", func() (model.Song, error) { return g.next.SongByTitle(ctx, title) })
}

// Artist implements Store.
func (g *Guarded) Artist(ctx context.Context, id int) (model.Artist, error) {
	return guard(g, "artist", func() (model.Artist, error) { return g.next.Artist(ctx, id) })
}

// ArtistSongs implements Store.
func (g *Guarded) ArtistSongs(ctx context.Context, artistID int) ([]model.Song, error) {
	return guard(g, "artist_songs", func() ([]model.Song, error) { return g.next.ArtistSongs(ctx, artistID) })
}

// ArtistEntryCounts implements Store.
func (g *Guarded) ArtistEntryCounts(ctx context.Context) ([]model.ArtistSongCount, error) {
	return guard(g, "artist_entry_counts", func() ([]model.ArtistSongCount, error) { return g.next.ArtistEntryCounts(ctx) })
}

// Count implements Store.
func (g *Guarded) Count(ctx context.Context, year int) (int, error) {
	return guard(g, "count", func() (int, error) { return g.next.Count(ctx, year) })
}

// Rows implements Store.
func (g *Guarded) Rows(ctx context.Context, year, offset, limit int) ([]model.ChartRow, error) {
	return guard(g, "rows", func() ([]model.ChartRow, error) { return g.next.Rows(ctx, year, offset, limit) })
}

// Positions implements Store.
func (g *Guarded) Positions(ctx context.Context, year int, songIDs []int) (map[int]int, error) {
	return guard(g, "positions", func() (map[int]int, error) { return g.next.Positions(ctx, year, songIDs) })
}

// SongEntries implements Store.
func (g *Guarded) SongEntries(ctx context.Context, songID, fromYear, toYear int) ([]model.Entry, error) {
	return guard(g, "song_entries", func() ([]model.Entry, error) { return g.next.SongEntries(ctx, songID, fromYear, toYear) })
}

// ChartedBefore implements Store.
func (g *Guarded) ChartedBefore(ctx context.Context, year int) (map[int]struct{}, error) {
	return guard(g, "charted_before", func() (map[int]struct{}, error) { return g.next.ChartedBefore(ctx, year) })
}

// Years implements Store.
func (g *Guarded) Years(ctx context.Context) ([]int, error) {
	return guard(g, "years", func() ([]int, error) { return g.next.Years(ctx) })
}

// AllRows implements Store.
func (g *Guarded) AllRows(ctx context.Context) ([]model.ChartRow, error) {
	return guard(g, "all_rows", func() ([]model.ChartRow, error) { return g.next.AllRows(ctx) })
}
