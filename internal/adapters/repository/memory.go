package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/errkind"
)

// MemoryStore is an immutable in-memory snapshot of the chart facts.
//
// It is built once from slices and never changes afterwards, so it needs no
// locking. Rows are kept pre-sorted: per year by position, per song by year.
type MemoryStore struct {
	artists map[int]model.Artist
	songs   map[int]model.Song
	songIDs []int // ascending
	byYear  map[int][]model.Entry
	bySong  map[int][]model.Entry
	years   []int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore validates the facts and builds a snapshot. It rejects
// duplicate ids, dangling references, positions below 1, more than one entry
// per (song, year) and more than one song per (year, position).
func NewMemoryStore(artists []model.Artist, songs []model.Song, entries []model.Entry) (*MemoryStore, error) {
	const op = "repository.new_memory_store"

	s := &MemoryStore{
		artists: make(map[int]model.Artist, len(artists)),
		songs:   make(map[int]model.Song, len(songs)),
		byYear:  make(map[int][]model.Entry),
		bySong:  make(map[int][]model.Entry),
	}

	for _, a := range artists {
		if _, dup := s.artists[a.ID]; dup {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("duplicate artist id %d", a.ID))
		}
		if strings.TrimSpace(a.Name) == "" {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("artist %d has no name", a.ID))
		}
		s.artists[a.ID] = a
	}

	for _, song := range songs {
		if _, dup := s.songs[song.ID]; dup {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("duplicate song id %d", song.ID))
		}
		if _, ok := s.artists[song.ArtistID]; !ok {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("song %d references unknown artist %d", song.ID, song.ArtistID))
		}
		s.songs[song.ID] = song
		s.songIDs = append(s.songIDs, song.ID)
	}
	sort.Ints(s.songIDs)

	type slot struct{ a, b int }
	seenSongYear := make(map[slot]struct{}, len(entries))
	seenYearPos := make(map[slot]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := s.songs[e.SongID]; !ok {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("entry references unknown song %d", e.SongID))
		}
		if e.Position < 1 {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("song %d has position %d in %d", e.SongID, e.Position, e.Year))
		}
		if _, dup := seenSongYear[slot{e.SongID, e.Year}]; dup {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("song %d charted twice in %d", e.SongID, e.Year))
		}
		if _, dup := seenYearPos[slot{e.Year, e.Position}]; dup {
			return nil, errkind.WrapKind(op, ErrInvalidData, fmt.Errorf("position %d taken twice in %d", e.Position, e.Year))
		}
		seenSongYear[slot{e.SongID, e.Year}] = struct{}{}
		seenYearPos[slot{e.Year, e.Position}] = struct{}{}
		s.byYear[e.Year] = append(s.byYear[e.Year], e)
		s.bySong[e.SongID] = append(s.bySong[e.SongID], e)
	}

	for year, list := range s.byYear {
		sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
		s.years = append(s.years, year)
	}
	sort.Ints(s.years)
	for _, list := range s.bySong {
		sort.Slice(list, func(i, j int) bool { return list[i].Year < list[j].Year })
	}

	return s, nil
}

func (s *MemoryStore) row(e model.Entry) model.ChartRow {
	song := s.songs[e.SongID]
	return model.ChartRow{
		Entry:       e,
		Title:       song.Title,
		ArtistID:    song.ArtistID,
		ArtistName:  s.artists[song.ArtistID].Name,
		ReleaseYear: song.ReleaseYear,
		ImageURL:    song.ImageURL,
	}
}

// Song implements Store.
func (s *MemoryStore) Song(_ context.Context, id int) (model.Song, error) {
	song, ok := s.songs[id]
	if !ok {
		return model.Song{}, errkind.NewKind("repository.song", ErrNotFound)
	}
	return song, nil
}

// SongByTitle implements Store.
func (s *MemoryStore) SongByTitle(_ context.Context, title string) (model.Song, error) {
	want := strings.ToLower(title)
	for _, id := range s.songIDs {
		if strings.ToLower(s.songs[id].Title) == want {
			return s.songs[id], nil
		}
	}
	return model.Song{}, errkind.NewKind("repository.song_by_title", ErrNotFound)
}

// Artist implements Store.
func (s *MemoryStore) Artist(_ context.Context, id int) (model.Artist, error) {
	a, ok := s.artists[id]
	if !ok {
		return model.Artist{}, errkind.NewKind("repository.artist", ErrNotFound)
	}
	return a, nil
}

// ArtistSongs implements Store.
func (s *MemoryStore) ArtistSongs(_ context.Context, artistID int) ([]model.Song, error) {
	out := make([]model.Song, 0)
	for _, id := range s.songIDs {
		if s.songs[id].ArtistID == artistID {
			out = append(out, s.songs[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ArtistEntryCounts implements Store.
func (s *MemoryStore) ArtistEntryCounts(_ context.Context) ([]model.ArtistSongCount, error) {
	counts := make(map[int]int, len(s.artists))
	for songID, entries := range s.bySong {
		counts[s.songs[songID].ArtistID] += len(entries)
	}
	out := make([]model.ArtistSongCount, 0, len(s.artists))
	for id, a := range s.artists {
		out = append(out, model.ArtistSongCount{ArtistID: id, Name: a.Name, SongCount: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SongCount != out[j].SongCount {
			return out[i].SongCount > out[j].SongCount
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ArtistID < out[j].ArtistID
	})
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, year int) (int, error) {
	return len(s.byYear[year]), nil
}

// Rows implements Store.
func (s *MemoryStore) Rows(_ context.Context, year, offset, limit int) ([]model.ChartRow, error) {
	list := s.byYear[year]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []model.ChartRow{}, nil
	}
	end := len(list)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]model.ChartRow, 0, end-offset)
	for _, e := range list[offset:end] {
		out = append(out, s.row(e))
	}
	return out, nil
}

// Positions implements Store.
func (s *MemoryStore) Positions(_ context.Context, year int, songIDs []int) (map[int]int, error) {
	out := make(map[int]int, len(songIDs))
	for _, id := range songIDs {
		for _, e := range s.bySong[id] {
			if e.Year == year {
				out[id] = e.Position
				break
			}
		}
	}
	return out, nil
}

// SongEntries implements Store.
func (s *MemoryStore) SongEntries(_ context.Context, songID, fromYear, toYear int) ([]model.Entry, error) {
	out := make([]model.Entry, 0)
	for _, e := range s.bySong[songID] {
		if e.Year >= fromYear && e.Year <= toYear {
			out = append(out, e)
		}
	}
	return out, nil
}

// ChartedBefore implements Store.
func (s *MemoryStore) ChartedBefore(_ context.Context, year int) (map[int]struct{}, error) {
	out := make(map[int]struct{})
	for _, y := range s.years {
		if y >= year {
			break
		}
		for _, e := range s.byYear[y] {
			out[e.SongID] = struct{}{}
		}
	}
	return out, nil
}

// Years implements Store.
func (s *MemoryStore) Years(_ context.Context) ([]int, error) {
	out := make([]int, len(s.years))
	copy(out, s.years)
	return out, nil
}

// AllRows implements Store.
func (s *MemoryStore) AllRows(_ context.Context) ([]model.ChartRow, error) {
	out := make([]model.ChartRow, 0)
	for _, y := range s.years {
		for _, e := range s.byYear[y] {
			out = append(out, s.row(e))
		}
	}
	return out, nil
}
