// Package ranking computes the current-edition listing with year-over-year
// movement and per-song detail and history.
package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/internal/domain/types"
	"github.com/okian/top2000/pkg/errkind"
)

// Engine answers ranking queries against a Store. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	store         repository.Store
	currentYear   int
	historyWindow int
}

// New creates an Engine.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		currentYear:   DefaultCurrentYear,
		historyWindow: DefaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentYear returns the edition treated as current.
func (e *Engine) CurrentYear() int { return e.currentYear }

// List returns one page of the current edition ordered by position. Out of
// range pagination is corrected, never rejected.
func (e *Engine) List(ctx context.Context, req types.PageRequest) (model.Page, error) {
	const op = "ranking.list"
	req = req.Normalize()

	total, err := e.store.Count(ctx, e.currentYear)
	if err != nil {
		return model.Page{}, errkind.Wrap(op, err)
	}

	page := model.Page{
		Songs:       []model.RankedSong{},
		CurrentPage: req.Page,
		TotalPages:  types.TotalPages(total, req.PageSize),
		TotalSongs:  total,
		PageSize:    req.PageSize,
	}
	if req.Page > page.TotalPages {
		return page, nil
	}

	rows, err := e.store.Rows(ctx, e.currentYear, req.Offset(), req.PageSize)
	if err != nil {
		return model.Page{}, errkind.Wrap(op, err)
	}
	if len(rows) == 0 {
		return page, nil
	}

	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.SongID
	}
	previous, err := e.store.Positions(ctx, e.currentYear-1, ids)
	if err != nil {
		return model.Page{}, errkind.Wrap(op, err)
	}

	page.Songs = make([]model.RankedSong, 0, len(rows))
	for _, r := range rows {
		var prev *int
		if p, ok := previous[r.SongID]; ok {
			prev = &p
		}
		page.Songs = append(page.Songs, model.NewRankedSong(r, prev))
	}
	return page, nil
}

// Detail returns a currently charting song with its movement and history.
func (e *Engine) Detail(ctx context.Context, songID int) (model.SongDetail, error) {
	song, err := e.store.Song(ctx, songID)
	if err != nil {
		return model.SongDetail{}, errkind.Wrap("ranking.detail", err)
	}
	return e.detail(ctx, song)
}

// DetailBySlug resolves a slug with TitleFromSlug and returns the first song,
// by id, whose title matches case-insensitively.
func (e *Engine) DetailBySlug(ctx context.Context, slug string) (model.SongDetail, error) {
	song, err := e.store.SongByTitle(ctx, TitleFromSlug(slug))
	if err != nil {
		return model.SongDetail{}, errkind.Wrap("ranking.detail_by_slug", err)
	}
	return e.detail(ctx, song)
}

func (e *Engine) detail(ctx context.Context, song model.Song) (model.SongDetail, error) {
	const op = "ranking.detail"

	from := e.windowStart()
	if prev := e.currentYear - 1; prev < from {
		from = prev
	}
	entries, err := e.store.SongEntries(ctx, song.ID, from, e.currentYear)
	if err != nil {
		return model.SongDetail{}, errkind.Wrap(op, err)
	}

	var current, previous *model.Entry
	for i := range entries {
		switch entries[i].Year {
		case e.currentYear:
			current = &entries[i]
		case e.currentYear - 1:
			previous = &entries[i]
		}
	}
	if current == nil {
		return model.SongDetail{}, errkind.WrapKind(op, ErrNotCharting, fmt.Errorf("song %d", song.ID))
	}

	artist, err := e.store.Artist(ctx, song.ArtistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.SongDetail{}, errkind.WrapKind(op, repository.ErrInvalidData,
				fmt.Errorf("song %d references missing artist %d", song.ID, song.ArtistID))
		}
		return model.SongDetail{}, errkind.Wrap(op, err)
	}

	row := model.ChartRow{
		Entry:       *current,
		Title:       song.Title,
		ArtistID:    song.ArtistID,
		ArtistName:  artist.Name,
		ReleaseYear: song.ReleaseYear,
		ImageURL:    song.ImageURL,
	}
	var prev *int
	if previous != nil {
		prev = &previous.Position
	}

	return model.SongDetail{
		RankedSong: model.NewRankedSong(row, prev),
		Lyrics:     song.Lyrics,
		YoutubeURL: song.YoutubeURL,
		History:    e.history(entries),
	}, nil
}

// History returns the song's positions over the history window, oldest
// first. Unlike Detail it does not require the song to chart in the current
// edition; a song with no recent entries has an empty history.
func (e *Engine) History(ctx context.Context, songID int) ([]model.HistoryPoint, error) {
	const op = "ranking.history"

	if _, err := e.store.Song(ctx, songID); err != nil {
		return nil, errkind.Wrap(op, err)
	}
	entries, err := e.store.SongEntries(ctx, songID, e.windowStart(), e.currentYear)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	return e.history(entries), nil
}

func (e *Engine) windowStart() int {
	return e.currentYear - e.historyWindow + 1
}

// history keeps the entries inside the window. Entries arrive ascending by
// year and a song has at most one entry per year, so the result is strictly
// increasing.
func (e *Engine) history(entries []model.Entry) []model.HistoryPoint {
	from := e.windowStart()
	out := make([]model.HistoryPoint, 0, e.historyWindow)
	for _, en := range entries {
		if en.Year < from || en.Year > e.currentYear {
			continue
		}
		out = append(out, model.HistoryPoint{Year: en.Year, Position: en.Position})
	}
	return out
}
