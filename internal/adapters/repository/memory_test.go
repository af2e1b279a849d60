package repository_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/adapters/repository/repotest"
	"github.com/okian/top2000/internal/domain/model"
)

func TestNewMemoryStoreValidation(t *testing.T) {
	artists := []model.Artist{{ID: 1, Name: "A"}}
	songs := []model.Song{{ID: 10, ArtistID: 1, Title: "x"}, {ID: 11, ArtistID: 1, Title: "y"}}

	Convey("Given chart facts that break an invariant", t, func() {
		cases := []struct {
			name    string
			artists []model.Artist
			songs   []model.Song
			entries []model.Entry
		}{
			{"duplicate artist", append(artists, model.Artist{ID: 1, Name: "B"}), songs, nil},
			{"unnamed artist", []model.Artist{{ID: 1, Name: " "}}, nil, nil},
			{"duplicate song", artists, append(songs, model.Song{ID: 10, ArtistID: 1, Title: "z"}), nil},
			{"song without artist", artists, []model.Song{{ID: 10, ArtistID: 2, Title: "x"}}, nil},
			{"entry without song", artists, songs, []model.Entry{{SongID: 12, Year: 2024, Position: 1}}},
			{"position zero", artists, songs, []model.Entry{{SongID: 10, Year: 2024, Position: 0}}},
			{"song twice in a year", artists, songs, []model.Entry{
				{SongID: 10, Year: 2024, Position: 1},
				{SongID: 10, Year: 2024, Position: 2},
			}},
			{"shared position", artists, songs, []model.Entry{
				{SongID: 10, Year: 2024, Position: 1},
				{SongID: 11, Year: 2024, Position: 1},
			}},
		}

		for _, tc := range cases {
			Convey("When building with "+tc.name, func() {
				_, err := repository.NewMemoryStore(tc.artists, tc.songs, tc.entries)

				Convey("Then ErrInvalidData is returned", func() {
					So(errors.Is(err, repository.ErrInvalidData), ShouldBeTrue)
				})
			})
		}
	})

	Convey("Given an empty chart", t, func() {
		s, err := repository.NewMemoryStore(nil, nil, nil)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Then every read returns empty results", func() {
			years, err := s.Years(ctx)
			So(err, ShouldBeNil)
			So(years, ShouldBeEmpty)

			rows, err := s.AllRows(ctx)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)

			n, err := s.Count(ctx, 2024)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}

func TestMemoryStoreReads(t *testing.T) {
	Convey("Given the fixture chart", t, func() {
		ctx := context.Background()
		s := repotest.MustStore()

		Convey("When reading a page of the current edition", func() {
			rows, err := s.Rows(ctx, repotest.Current, 2, 3)

			Convey("Then rows follow position order and carry joined fields", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].Position, ShouldEqual, 3)
				So(rows[0].Title, ShouldEqual, "Avond")
				So(rows[0].ArtistName, ShouldEqual, "Boudewijn de Groot")
				So(rows[1].SongID, ShouldEqual, repotest.Imagine)
				So(rows[2].SongID, ShouldEqual, repotest.TakeItEasy)
			})
		})

		Convey("When the offset runs past the edition", func() {
			rows, err := s.Rows(ctx, repotest.Current, 50, 10)

			Convey("Then the slice is empty", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When the limit is negative", func() {
			rows, err := s.Rows(ctx, repotest.Current, 5, -1)

			Convey("Then every remaining row is returned", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[1].SongID, ShouldEqual, repotest.RollOver)
			})
		})

		Convey("When looking up previous positions", func() {
			pos, err := s.Positions(ctx, 2023, []int{repotest.HotelCalifornia, repotest.Imagine, repotest.RollOver})

			Convey("Then only charting songs are present", func() {
				So(err, ShouldBeNil)
				So(pos, ShouldResemble, map[int]int{repotest.HotelCalifornia: 2, repotest.Imagine: 5})
			})
		})

		Convey("When reading a song's entries in a window", func() {
			entries, err := s.SongEntries(ctx, repotest.Avond, 2021, 2024)

			Convey("Then they are ascending by year and bounded", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].Year, ShouldEqual, 2021)
				So(entries[2].Year, ShouldEqual, 2024)
			})
		})

		Convey("When asking which songs charted before 2023", func() {
			seen, err := s.ChartedBefore(ctx, 2023)

			Convey("Then songs first seen in 2023 or later are excluded", func() {
				So(err, ShouldBeNil)
				So(seen, ShouldContainKey, repotest.TakeItEasy)
				So(seen, ShouldNotContainKey, repotest.Imagine)
				So(seen, ShouldNotContainKey, repotest.RollOver)
			})
		})

		Convey("When looking up a title", func() {
			song, err := s.SongByTitle(ctx, "BOHEMIAN rhapsody")

			Convey("Then matching ignores case and the lowest id wins", func() {
				So(err, ShouldBeNil)
				So(song.ID, ShouldEqual, repotest.Bohemian)
			})
		})

		Convey("When looking up unknown records", func() {
			_, songErr := s.Song(ctx, repotest.NoSong)
			_, titleErr := s.SongByTitle(ctx, "roll over")
			_, artistErr := s.Artist(ctx, repotest.NoArtist)

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(songErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(titleErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(artistErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When counting entries per artist", func() {
			counts, err := s.ArtistEntryCounts(ctx)

			Convey("Then artists are ordered by count descending", func() {
				So(err, ShouldBeNil)
				So(len(counts), ShouldEqual, 5)
				So(counts[0], ShouldResemble, model.ArtistSongCount{ArtistID: repotest.Queen, Name: "Queen", SongCount: 10})
				So(counts[1].SongCount, ShouldEqual, 9)
				So(counts[4], ShouldResemble, model.ArtistSongCount{ArtistID: repotest.NoSongs, Name: "Nobody", SongCount: 0})
			})
		})

		Convey("When listing an artist's songs", func() {
			songs, err := s.ArtistSongs(ctx, repotest.Queen)

			Convey("Then they are ordered by title in byte order", func() {
				So(err, ShouldBeNil)
				So(len(songs), ShouldEqual, 4)
				So(songs[0].ID, ShouldEqual, repotest.Bohemian)
				So(songs[3].ID, ShouldEqual, repotest.BohemianAgain)
			})
		})

		Convey("When listing editions", func() {
			years, err := s.Years(ctx)

			Convey("Then every year appears once in order", func() {
				So(err, ShouldBeNil)
				So(years, ShouldResemble, []int{2020, 2021, 2022, 2023, 2024})
			})
		})
	})
}
