package model

// RankedSong is a current-edition row with its year-over-year movement.
// PreviousPosition and Change are nil when the song did not chart the year
// before; that is different from a change of zero.
type RankedSong struct {
	SongID           int     `json:"songId"`
	Title            string  `json:"title"`
	ArtistName       string  `json:"artistName"`
	ReleaseYear      *int    `json:"releaseYear"`
	CurrentPosition  int     `json:"currentPosition"`
	PreviousPosition *int    `json:"previousPosition"`
	PositionChange   *int    `json:"positionChange"`
	ImageURL         *string `json:"imgUrl"`
}

// NewRankedSong builds a RankedSong from a current-year row and the optional
// previous-year position.
func NewRankedSong(row ChartRow, previous *int) RankedSong {
	rs := RankedSong{
		SongID:          row.SongID,
		Title:           row.Title,
		ArtistName:      row.ArtistName,
		ReleaseYear:     row.ReleaseYear,
		CurrentPosition: row.Position,
		ImageURL:        row.ImageURL,
	}
	if previous != nil {
		prev := *previous
		change := PositionChange(prev, row.Position)
		rs.PreviousPosition = &prev
		rs.PositionChange = &change
	}
	return rs
}

// PositionChange returns previous - current; positive means the song moved
// toward position 1.
func PositionChange(previous, current int) int {
	return previous - current
}

// HistoryPoint is one year of a song's chart history.
type HistoryPoint struct {
	Year     int `json:"year"`
	Position int `json:"position"`
}

// SongDetail is the detail view of a currently charting song.
type SongDetail struct {
	RankedSong
	Lyrics     *string        `json:"lyrics"`
	YoutubeURL *string        `json:"youtube"`
	History    []HistoryPoint `json:"history"`
}

// Page is one slice of the current-edition ranking.
type Page struct {
	Songs       []RankedSong `json:"songs"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	TotalSongs  int          `json:"totalSongs"`
	PageSize    int          `json:"pageSize"`
}

// YearEntry is a report row for a song charting in the target year
// (new entries, re-entries, unchanged positions).
type YearEntry struct {
	SongID      int    `json:"songId"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	ArtistName  string `json:"artistName"`
	ReleaseYear *int   `json:"releaseYear"`
}

// LostEntry is a song that charted the year before but not in the target year.
type LostEntry struct {
	SongID           int    `json:"songId"`
	PreviousPosition int    `json:"previousPosition"`
	Title            string `json:"title"`
	ArtistName       string `json:"artistName"`
	ReleaseYear      *int   `json:"releaseYear"`
}

// DroppedSong is a song that charted in both years and lost ground.
type DroppedSong struct {
	SongID           int     `json:"songId"`
	Title            string  `json:"title"`
	ArtistName       string  `json:"artistName"`
	ReleaseYear      *int    `json:"releaseYear"`
	CurrentPosition  int     `json:"currentPosition"`
	PreviousPosition int     `json:"previousPosition"`
	PositionsDropped int     `json:"positionsDropped"`
	ImageURL         *string `json:"imgUrl"`
}

// EditionSong is a song that appears in every edition present in the store.
type EditionSong struct {
	Title       string `json:"title"`
	ArtistName  string `json:"artistName"`
	ReleaseYear *int   `json:"releaseYear"`
}

// YearSummary counts the rows of every year-comparison report for one year.
type YearSummary struct {
	Year        int `json:"year"`
	NewEntries  int `json:"newEntries"`
	LostEntries int `json:"lostEntries"`
	Reentries   int `json:"reentries"`
	Unchanged   int `json:"unchanged"`
	Dropped     int `json:"dropped"`
}

// ArtistSongCount is an artist with the number of chart entries of its songs
// across all editions.
type ArtistSongCount struct {
	ArtistID  int    `json:"artistId"`
	Name      string `json:"name"`
	SongCount int    `json:"songCount"`
}

// ArtistSong is a song listed on an artist's detail page.
type ArtistSong struct {
	SongID      int    `json:"songId"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseYear"`
}

// ArtistDetail is an artist with its songs.
type ArtistDetail struct {
	Artist
	Songs []ArtistSong `json:"songs"`
}
