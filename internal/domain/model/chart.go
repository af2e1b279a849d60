// Package model contains domain models passed between layers.
package model

// Artist is a performer owning zero or more songs.
type Artist struct {
	ID         int     `json:"artistId"`
	Name       string  `json:"name"`
	Biography  *string `json:"biography"`
	PhotoURL   *string `json:"photoUrl"`
	WikiURL    *string `json:"wikiUrl"`
	WebsiteURL *string `json:"websiteUrl"`
}

// Song belongs to exactly one artist. Relations are resolved by the store,
// never embedded.
type Song struct {
	ID          int     `json:"songId"`
	ArtistID    int     `json:"artistId"`
	Title       string  `json:"title"`
	ReleaseYear *int    `json:"releaseYear"`
	ImageURL    *string `json:"imgUrl"`
	Lyrics      *string `json:"lyrics,omitempty"`
	YoutubeURL  *string `json:"youtube,omitempty"`
}

// Entry is one (song, year, position) chart fact. Position 1 is best.
type Entry struct {
	SongID   int `json:"songId"`
	Year     int `json:"year"`
	Position int `json:"position"`
}

// ChartRow is an entry joined with its song and the artist's name.
type ChartRow struct {
	Entry
	Title       string
	ArtistID    int
	ArtistName  string
	ReleaseYear *int
	ImageURL    *string
}
