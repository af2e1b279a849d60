package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/adapters/repository/repotest"
	"github.com/okian/top2000/internal/domain/model"
)

// newSQLiteStore opens a private in-memory database holding the fixture.
func newSQLiteStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open(repository.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	s := repository.NewSQLStore(db, repository.WithMaxOpenConns(1))
	t.Cleanup(func() { _ = s.Close() })

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := repotest.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestSQLStoreMatchesMemoryStore(t *testing.T) {
	sqlStore := newSQLiteStore(t)
	mem := repotest.MustStore()
	ctx := context.Background()

	Convey("Given the fixture loaded into sqlite and memory", t, func() {
		Convey("Then song and artist lookups agree", func() {
			for _, id := range []int{repotest.Bohemian, repotest.HotelCalifornia, repotest.BohemianAgain} {
				want, err := mem.Song(ctx, id)
				So(err, ShouldBeNil)
				got, err := sqlStore.Song(ctx, id)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}

			want, _ := mem.Artist(ctx, repotest.DeGroot)
			got, err := sqlStore.Artist(ctx, repotest.DeGroot)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
		})

		Convey("Then title lookup ignores case and prefers the lowest id", func() {
			got, err := sqlStore.SongByTitle(ctx, "bohemian RHAPSODY")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, repotest.Bohemian)
		})

		Convey("Then title lookup folds non-ASCII letters like the memory store", func() {
			db := newSQLiteStore(t)
			_, err := db.DB().ExecContext(ctx,
				`INSERT INTO songs (song_id, artist_id, title) VALUES ($1, $2, $3)`, 50, repotest.DeGroot, "Én Van Ons")
			So(err, ShouldBeNil)
			songs := append(repotest.Songs(), model.Song{ID: 50, ArtistID: repotest.DeGroot, Title: "Én Van Ons"})
			memory, err := repository.NewMemoryStore(repotest.Artists(), songs, repotest.Entries())
			So(err, ShouldBeNil)

			for _, title := range []string{"én van ons", "ÉN VAN ONS", "Én Van Ons"} {
				want, err := memory.SongByTitle(ctx, title)
				So(err, ShouldBeNil)
				got, err := db.SongByTitle(ctx, title)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}

			_, err = db.SongByTitle(ctx, "en van ons")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then artist songs are ordered by title bytes", func() {
			got, err := sqlStore.ArtistSongs(ctx, repotest.Queen)
			So(err, ShouldBeNil)
			titles := make([]string, 0, len(got))
			for _, s := range got {
				titles = append(titles, s.Title)
			}
			So(titles, ShouldResemble, []string{
				"Bohemian Rhapsody", "Don't Stop Me Now", "Love Of My Life", "bohemian rhapsody",
			})
		})

		Convey("Then chart reads agree", func() {
			for _, year := range []int{2019, 2020, 2023, 2024} {
				wantN, _ := mem.Count(ctx, year)
				gotN, err := sqlStore.Count(ctx, year)
				So(err, ShouldBeNil)
				So(gotN, ShouldEqual, wantN)

				wantRows, _ := mem.Rows(ctx, year, 1, 3)
				gotRows, err := sqlStore.Rows(ctx, year, 1, 3)
				So(err, ShouldBeNil)
				So(gotRows, ShouldResemble, wantRows)

				wantAll, _ := mem.Rows(ctx, year, 2, -1)
				gotAll, err := sqlStore.Rows(ctx, year, 2, -1)
				So(err, ShouldBeNil)
				So(gotAll, ShouldResemble, wantAll)

				wantBefore, _ := mem.ChartedBefore(ctx, year)
				gotBefore, err := sqlStore.ChartedBefore(ctx, year)
				So(err, ShouldBeNil)
				So(gotBefore, ShouldResemble, wantBefore)
			}

			ids := []int{repotest.Bohemian, repotest.HotelCalifornia, repotest.Imagine, repotest.NoSong}
			wantPos, _ := mem.Positions(ctx, 2023, ids)
			gotPos, err := sqlStore.Positions(ctx, 2023, ids)
			So(err, ShouldBeNil)
			So(gotPos, ShouldResemble, wantPos)

			empty, err := sqlStore.Positions(ctx, 2023, nil)
			So(err, ShouldBeNil)
			So(empty, ShouldBeEmpty)

			wantEntries, _ := mem.SongEntries(ctx, repotest.Avond, 2020, 2024)
			gotEntries, err := sqlStore.SongEntries(ctx, repotest.Avond, 2020, 2024)
			So(err, ShouldBeNil)
			So(gotEntries, ShouldResemble, wantEntries)

			wantYears, _ := mem.Years(ctx)
			gotYears, err := sqlStore.Years(ctx)
			So(err, ShouldBeNil)
			So(gotYears, ShouldResemble, wantYears)

			wantRows, _ := mem.AllRows(ctx)
			gotRows, err := sqlStore.AllRows(ctx)
			So(err, ShouldBeNil)
			So(gotRows, ShouldResemble, wantRows)
		})

		Convey("Then artist aggregates agree", func() {
			wantCounts, _ := mem.ArtistEntryCounts(ctx)
			gotCounts, err := sqlStore.ArtistEntryCounts(ctx)
			So(err, ShouldBeNil)
			So(gotCounts, ShouldResemble, wantCounts)

			wantSongs, _ := mem.ArtistSongs(ctx, repotest.Queen)
			gotSongs, err := sqlStore.ArtistSongs(ctx, repotest.Queen)
			So(err, ShouldBeNil)
			So(gotSongs, ShouldResemble, wantSongs)
		})

		Convey("Then missing records map to ErrNotFound", func() {
			_, err := sqlStore.Song(ctx, repotest.NoSong)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = sqlStore.SongByTitle(ctx, "roll over")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = sqlStore.Artist(ctx, repotest.NoArtist)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestSQLStoreErrors(t *testing.T) {
	Convey("Given SQL store failure modes", t, func() {
		ctx := context.Background()

		Convey("When opening an unknown driver", func() {
			_, err := repository.Open(ctx, "oracle", "dsn")

			Convey("Then ErrUnknownDriver is returned", func() {
				So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
			})
		})

		Convey("When the tables do not exist", func() {
			s, err := repository.Open(ctx, repository.DriverSQLite, ":memory:", repository.WithMaxOpenConns(1))
			So(err, ShouldBeNil)
			defer s.Close()

			_, err = s.Rows(ctx, 2024, 0, 10)

			Convey("Then the failure is tagged ErrQuery and is not a not-found", func() {
				So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeFalse)
			})
		})

		Convey("When the handle is closed", func() {
			s, err := repository.Open(ctx, repository.DriverSQLite, ":memory:")
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			Convey("Then ping fails with ErrQuery", func() {
				So(errors.Is(s.Ping(ctx), repository.ErrQuery), ShouldBeTrue)
			})
		})
	})
}
