// Package repotest provides a small, fully known chart for tests.
//
// Editions 2020 through 2024 are present; 2024 is the current edition.
//
//	pos  2020  2021  2022  2023  2024
//	 1    1     1     2     1     6
//	 2    2     3     1     2     2
//	 3    3     2     3     4     3
//	 4    7     4     4     5     9
//	 5    -     7     -     9     7
//	 6    -     -     -     -     4
//	 7    -     -     -     -     8
//
// Song 6 is a re-import of song 1 under a new id with a lowercased title.
// Songs 3 and 7 re-enter in 2024 and song 8 is brand new. Song 4 falls from
// 3 to 6, song 9 climbs from 5 to 4 and song 2 holds position 2.
package repotest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/domain/model"
)

// Current is the edition treated as current by tests.
const Current = 2024

// Artist ids.
const (
	Queen    = 1
	Eagles   = 2
	DeGroot  = 3
	Lennon   = 4
	NoSongs  = 5
	NoArtist = 99
)

// Song ids.
const (
	Bohemian        = 1
	HotelCalifornia = 2
	Avond           = 3
	DontStopMeNow   = 4
	LoveOfMyLife    = 5
	BohemianAgain   = 6
	TakeItEasy      = 7
	RollOver        = 8
	Imagine         = 9
	NoSong          = 999
)

func str(s string) *string { return &s }
func num(n int) *int       { return &n }

// Artists returns the fixture artists.
func Artists() []model.Artist {
	return []model.Artist{
		{ID: Queen, Name: "Queen", WikiURL: str("https://en.wikipedia.org/wiki/Queen_(band)")},
		{ID: Eagles, Name: "Eagles"},
		{ID: DeGroot, Name: "Boudewijn de Groot", Biography: str("Dutch singer-songwriter.")},
		{ID: Lennon, Name: "John Lennon"},
		{ID: NoSongs, Name: "Nobody"},
	}
}

// Songs returns the fixture songs.
func Songs() []model.Song {
	return []model.Song{
		{ID: Bohemian, ArtistID: Queen, Title: "Bohemian Rhapsody", ReleaseYear: num(1975), ImageURL: str("https://img.example/bohemian.jpg")},
		{ID: HotelCalifornia, ArtistID: Eagles, Title: "Hotel California", ReleaseYear: num(1977), Lyrics: str("On a dark desert highway"), YoutubeURL: str("https://youtu.be/hotel")},
		{ID: Avond, ArtistID: DeGroot, Title: "Avond", ReleaseYear: num(1997)},
		{ID: DontStopMeNow, ArtistID: Queen, Title: "Don't Stop Me Now", ReleaseYear: num(1979)},
		{ID: LoveOfMyLife, ArtistID: Queen, Title: "Love Of My Life", ReleaseYear: num(1975)},
		{ID: BohemianAgain, ArtistID: Queen, Title: "bohemian rhapsody"},
		{ID: TakeItEasy, ArtistID: Eagles, Title: "Take It Easy", ReleaseYear: num(1972)},
		{ID: RollOver, ArtistID: Eagles, Title: "Roll-Over", ReleaseYear: num(2023)},
		{ID: Imagine, ArtistID: Lennon, Title: "Imagine", ReleaseYear: num(1971)},
	}
}

// Entries returns the fixture chart facts.
func Entries() []model.Entry {
	chart := map[int][]int{
		2020: {Bohemian, HotelCalifornia, Avond, TakeItEasy},
		2021: {Bohemian, Avond, HotelCalifornia, DontStopMeNow, TakeItEasy},
		2022: {HotelCalifornia, Bohemian, Avond, DontStopMeNow},
		2023: {Bohemian, HotelCalifornia, DontStopMeNow, LoveOfMyLife, Imagine},
		2024: {BohemianAgain, HotelCalifornia, Avond, Imagine, TakeItEasy, DontStopMeNow, RollOver},
	}
	out := make([]model.Entry, 0)
	for year := 2020; year <= 2024; year++ {
		for i, id := range chart[year] {
			out = append(out, model.Entry{SongID: id, Year: year, Position: i + 1})
		}
	}
	return out
}

// MustStore builds a MemoryStore over the fixture and panics on failure.
func MustStore() *repository.MemoryStore {
	s, err := repository.NewMemoryStore(Artists(), Songs(), Entries())
	if err != nil {
		panic(err)
	}
	return s
}

// Seed inserts the fixture into a database that already has the chart schema.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, a := range Artists() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO artists (artist_id, name, biography, photo_url, wiki_url, website_url) VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.Name, a.Biography, a.PhotoURL, a.WikiURL, a.WebsiteURL); err != nil {
			return fmt.Errorf("seed artist %d: %w", a.ID, err)
		}
	}
	for _, s := range Songs() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO songs (song_id, artist_id, title, release_year, image_url, lyrics, youtube_url) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.ArtistID, s.Title, s.ReleaseYear, s.ImageURL, s.Lyrics, s.YoutubeURL); err != nil {
			return fmt.Errorf("seed song %d: %w", s.ID, err)
		}
	}
	for _, e := range Entries() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO entries (song_id, year, position) VALUES ($1, $2, $3)`,
			e.SongID, e.Year, e.Position); err != nil {
			return fmt.Errorf("seed entry %d/%d: %w", e.SongID, e.Year, err)
		}
	}
	return nil
}
