// Package stats computes year-over-year comparison reports over the chart:
// new, lost, re-entered, unchanged and dropped songs, and the songs that
// appear in every edition.
//
// Every report compares a target year Y with Y-1 and is computed in process
// from whole editions read through the store. Reports never fail on empty
// input; zero rows can mean no movement or a missing edition and callers
// cannot tell which.
package stats

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/errkind"
)

// Engine computes the reports. It holds no mutable state.
type Engine struct {
	store repository.Store
}

// New creates an Engine.
func New(store repository.Store) *Engine {
	return &Engine{store: store}
}

// editions holds the target edition and the one before it.
type editions struct {
	current  []model.ChartRow
	previous []model.ChartRow
	prevPos  map[int]int
	curPos   map[int]int
}

func (e *Engine) load(ctx context.Context, op string, year int) (editions, error) {
	var ed editions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.store.Rows(gctx, year, 0, -1)
		ed.current = rows
		return err
	})
	g.Go(func() error {
		rows, err := e.store.Rows(gctx, year-1, 0, -1)
		ed.previous = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return editions{}, errkind.Wrap(op, err)
	}

	ed.curPos = positions(ed.current)
	ed.prevPos = positions(ed.previous)
	return ed, nil
}

func positions(rows []model.ChartRow) map[int]int {
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.SongID] = r.Position
	}
	return out
}

func yearEntry(r model.ChartRow) model.YearEntry {
	return model.YearEntry{
		SongID:      r.SongID,
		Position:    r.Position,
		Title:       r.Title,
		ArtistName:  r.ArtistName,
		ReleaseYear: r.ReleaseYear,
	}
}

// NewEntries returns songs charting in year but not in year-1, best first.
func (e *Engine) NewEntries(ctx context.Context, year int) ([]model.YearEntry, error) {
	ed, err := e.load(ctx, "stats.new_entries", year)
	if err != nil {
		return nil, err
	}
	return newEntries(ed), nil
}

func newEntries(ed editions) []model.YearEntry {
	out := make([]model.YearEntry, 0)
	for _, r := range ed.current {
		if _, ok := ed.prevPos[r.SongID]; !ok {
			out = append(out, yearEntry(r))
		}
	}
	return out
}

// LostEntries returns songs charting in year-1 but not in year, ordered by
// their year-1 position.
func (e *Engine) LostEntries(ctx context.Context, year int) ([]model.LostEntry, error) {
	ed, err := e.load(ctx, "stats.lost_entries", year)
	if err != nil {
		return nil, err
	}

	out := make([]model.LostEntry, 0)
	for _, r := range ed.previous {
		if _, ok := ed.curPos[r.SongID]; ok {
			continue
		}
		out = append(out, model.LostEntry{
			SongID:           r.SongID,
			PreviousPosition: r.Position,
			Title:            r.Title,
			ArtistName:       r.ArtistName,
			ReleaseYear:      r.ReleaseYear,
		})
	}
	return out, nil
}

// Reentries returns new entries of year that charted in some edition before
// year-1, best first. It is always a subset of NewEntries.
func (e *Engine) Reentries(ctx context.Context, year int) ([]model.YearEntry, error) {
	const op = "stats.reentries"
	ed, err := e.load(ctx, op, year)
	if err != nil {
		return nil, err
	}
	earlier, err := e.store.ChartedBefore(ctx, year-1)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}

	out := make([]model.YearEntry, 0)
	for _, n := range newEntries(ed) {
		if _, ok := earlier[n.SongID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Unchanged returns songs holding the same position in year and year-1.
func (e *Engine) Unchanged(ctx context.Context, year int) ([]model.YearEntry, error) {
	ed, err := e.load(ctx, "stats.unchanged", year)
	if err != nil {
		return nil, err
	}

	out := make([]model.YearEntry, 0)
	for _, r := range ed.current {
		if p, ok := ed.prevPos[r.SongID]; ok && p == r.Position {
			out = append(out, yearEntry(r))
		}
	}
	return out, nil
}

// Dropped returns songs charting in both years whose position got worse,
// biggest fall first. Equal falls are ordered by current position.
func (e *Engine) Dropped(ctx context.Context, year int) ([]model.DroppedSong, error) {
	ed, err := e.load(ctx, "stats.dropped", year)
	if err != nil {
		return nil, err
	}

	out := make([]model.DroppedSong, 0)
	for _, r := range ed.current {
		p, ok := ed.prevPos[r.SongID]
		if !ok || r.Position <= p {
			continue
		}
		out = append(out, model.DroppedSong{
			SongID:           r.SongID,
			Title:            r.Title,
			ArtistName:       r.ArtistName,
			ReleaseYear:      r.ReleaseYear,
			CurrentPosition:  r.Position,
			PreviousPosition: p,
			PositionsDropped: r.Position - p,
			ImageURL:         r.ImageURL,
		})
	}
	// current is position ordered, so a stable sort keeps ties by position.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PositionsDropped > out[j].PositionsDropped
	})
	return out, nil
}

type editionGroup struct {
	rep   model.ChartRow
	years map[int]struct{}
}

// EveryEdition returns the songs that chart in every edition present in the
// store. Rows are grouped by lowercased title and artist name so that a song
// re-imported under a new id still counts as one. Each group is represented
// by its lowest song id. Results are ordered by title, then artist.
func (e *Engine) EveryEdition(ctx context.Context) ([]model.EditionSong, error) {
	const op = "stats.every_edition"

	years, err := e.store.Years(ctx)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	out := make([]model.EditionSong, 0)
	if len(years) == 0 {
		return out, nil
	}

	rows, err := e.store.AllRows(ctx)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}

	groups := make(map[string]*editionGroup)
	for _, r := range rows {
		key := strings.ToLower(r.Title) + "\x00" + strings.ToLower(r.ArtistName)
		g, ok := groups[key]
		if !ok {
			g = &editionGroup{rep: r, years: make(map[int]struct{})}
			groups[key] = g
		}
		if r.SongID < g.rep.SongID {
			g.rep = r
		}
		g.years[r.Year] = struct{}{}
	}

	for _, g := range groups {
		if len(g.years) != len(years) {
			continue
		}
		out = append(out, model.EditionSong{
			Title:       g.rep.Title,
			ArtistName:  g.rep.ArtistName,
			ReleaseYear: g.rep.ReleaseYear,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ArtistName < out[j].ArtistName
	})
	return out, nil
}

// Summary counts the rows of every year report for year. The reports run
// concurrently and the first failure cancels the rest.
func (e *Engine) Summary(ctx context.Context, year int) (model.YearSummary, error) {
	sum := model.YearSummary{Year: year}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := e.NewEntries(gctx, year)
		sum.NewEntries = len(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.LostEntries(gctx, year)
		sum.LostEntries = len(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Reentries(gctx, year)
		sum.Reentries = len(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Unchanged(gctx, year)
		sum.Unchanged = len(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Dropped(gctx, year)
		sum.Dropped = len(rows)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.YearSummary{}, errkind.Wrap("stats.summary", err)
	}
	return sum, nil
}
