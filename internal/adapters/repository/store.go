// Package repository provides read-only access to the chart fact store:
// artists, songs and (song, year, position) entries.
package repository

import (
	"context"

	"github.com/okian/top2000/internal/domain/model"
)

// Store provides read access to the chart facts. Implementations never write.
type Store interface {
	// Song returns a song by id. Returns ErrNotFound if it does not exist.
	Song(ctx context.Context, id int) (model.Song, error)

	// SongByTitle returns the song whose title equals title ignoring case.
	// When several songs match, the one with the lowest id wins.
	// Returns ErrNotFound if nothing matches.
	SongByTitle(ctx context.Context, title string) (model.Song, error)

	// Artist returns an artist by id. Returns ErrNotFound if it does not exist.
	Artist(ctx context.Context, id int) (model.Artist, error)

	// ArtistSongs returns the songs of an artist ordered by title, then id.
	ArtistSongs(ctx context.Context, artistID int) ([]model.Song, error)

	// ArtistEntryCounts returns every artist with the number of chart entries
	// of its songs, ordered by count desc, then name, then id.
	ArtistEntryCounts(ctx context.Context) ([]model.ArtistSongCount, error)

	// Count returns the number of entries in year.
	Count(ctx context.Context, year int) (int, error)

	// Rows returns the entries of year joined with song and artist, ordered by
	// position asc. A negative limit returns every row after offset.
	Rows(ctx context.Context, year, offset, limit int) ([]model.ChartRow, error)

	// Positions returns the position in year of each listed song that charted.
	Positions(ctx context.Context, year int, songIDs []int) (map[int]int, error)

	// SongEntries returns the song's entries with fromYear <= year <= toYear,
	// ordered by year asc.
	SongEntries(ctx context.Context, songID, fromYear, toYear int) ([]model.Entry, error)

	// ChartedBefore returns the ids of songs with at least one entry in a year
	// strictly before year.
	ChartedBefore(ctx context.Context, year int) (map[int]struct{}, error)

	// Years returns the distinct years present in the entries, ascending.
	Years(ctx context.Context) ([]int, error)

	// AllRows returns every entry joined with song and artist, ordered by year
	// then position.
	AllRows(ctx context.Context) ([]model.ChartRow, error)
}
