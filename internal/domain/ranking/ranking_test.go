package ranking_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/adapters/repository/repotest"
	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/internal/domain/ranking"
	"github.com/okian/top2000/internal/domain/types"
)

func newEngine(opts ...ranking.Option) *ranking.Engine {
	opts = append([]ranking.Option{ranking.WithCurrentYear(repotest.Current)}, opts...)
	return ranking.New(repotest.MustStore(), opts...)
}

func TestList(t *testing.T) {
	Convey("Given the fixture ranking", t, func() {
		ctx := context.Background()
		e := newEngine()

		Convey("When pagination is out of range", func() {
			want, err := e.List(ctx, types.PageRequest{Page: 1, PageSize: 50})
			So(err, ShouldBeNil)

			Convey("Then page 0, size 0 and size 500 behave like page 1 of 50", func() {
				for _, req := range []types.PageRequest{{}, {Page: 0, PageSize: 0}, {Page: -3, PageSize: 500}} {
					got, err := e.List(ctx, req)
					So(err, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
				So(want.CurrentPage, ShouldEqual, 1)
				So(want.PageSize, ShouldEqual, 50)
				So(want.TotalSongs, ShouldEqual, 7)
				So(want.TotalPages, ShouldEqual, 1)
			})
		})

		Convey("When every page is concatenated", func() {
			full, err := e.List(ctx, types.PageRequest{Page: 1, PageSize: 100})
			So(err, ShouldBeNil)

			Convey("Then the full ranking is reproduced once per song for any page size", func() {
				for size := 1; size <= 8; size++ {
					first, err := e.List(ctx, types.PageRequest{Page: 1, PageSize: size})
					So(err, ShouldBeNil)

					var all []model.RankedSong
					for p := 1; p <= first.TotalPages; p++ {
						page, err := e.List(ctx, types.PageRequest{Page: p, PageSize: size})
						So(err, ShouldBeNil)
						So(len(page.Songs), ShouldBeLessThanOrEqualTo, size)
						all = append(all, page.Songs...)
					}
					So(all, ShouldResemble, full.Songs)
				}

				seen := map[int]bool{}
				for i, s := range full.Songs {
					So(seen[s.SongID], ShouldBeFalse)
					seen[s.SongID] = true
					So(s.CurrentPosition, ShouldEqual, i+1)
				}
			})
		})

		Convey("When a page lies past the end", func() {
			page, err := e.List(ctx, types.PageRequest{Page: 9, PageSize: 3})

			Convey("Then it is empty but keeps the totals", func() {
				So(err, ShouldBeNil)
				So(page.Songs, ShouldBeEmpty)
				So(page.TotalPages, ShouldEqual, 3)
				So(page.TotalSongs, ShouldEqual, 7)
				So(page.CurrentPage, ShouldEqual, 9)
			})
		})

		Convey("When reading movement against the previous edition", func() {
			page, err := e.List(ctx, types.PageRequest{Page: 1, PageSize: 10})
			So(err, ShouldBeNil)
			bySong := map[int]model.RankedSong{}
			for _, s := range page.Songs {
				bySong[s.SongID] = s
				if s.PreviousPosition != nil {
					So(*s.PositionChange, ShouldEqual, *s.PreviousPosition-s.CurrentPosition)
				} else {
					So(s.PositionChange, ShouldBeNil)
				}
			}

			Convey("Then climbers are positive, fallers negative and newcomers nil", func() {
				So(*bySong[repotest.Imagine].PositionChange, ShouldEqual, 1)
				So(*bySong[repotest.DontStopMeNow].PositionChange, ShouldEqual, -3)
				So(*bySong[repotest.HotelCalifornia].PositionChange, ShouldEqual, 0)
				So(bySong[repotest.BohemianAgain].PreviousPosition, ShouldBeNil)
				So(bySong[repotest.RollOver].PositionChange, ShouldBeNil)
			})
		})

		Convey("When the store is empty", func() {
			empty, err := repository.NewMemoryStore(nil, nil, nil)
			So(err, ShouldBeNil)
			page, err := ranking.New(empty).List(ctx, types.PageRequest{})

			Convey("Then there are no pages", func() {
				So(err, ShouldBeNil)
				So(page.Songs, ShouldBeEmpty)
				So(page.TotalPages, ShouldEqual, 0)
				So(page.TotalSongs, ShouldEqual, 0)
			})
		})
	})
}

func TestDetail(t *testing.T) {
	Convey("Given the fixture ranking", t, func() {
		ctx := context.Background()
		e := newEngine()

		Convey("When fetching a charting song", func() {
			d, err := e.Detail(ctx, repotest.HotelCalifornia)

			Convey("Then the detail carries movement, media and five years of history", func() {
				So(err, ShouldBeNil)
				So(d.Title, ShouldEqual, "Hotel California")
				So(d.ArtistName, ShouldEqual, "Eagles")
				So(d.CurrentPosition, ShouldEqual, 2)
				So(*d.PreviousPosition, ShouldEqual, 2)
				So(*d.PositionChange, ShouldEqual, 0)
				So(*d.Lyrics, ShouldEqual, "On a dark desert highway")
				So(*d.YoutubeURL, ShouldEqual, "https://youtu.be/hotel")
				So(len(d.History), ShouldEqual, 5)
				for i := 1; i < len(d.History); i++ {
					So(d.History[i].Year, ShouldBeGreaterThan, d.History[i-1].Year)
				}
				So(d.History[0], ShouldResemble, model.HistoryPoint{Year: 2020, Position: 2})
			})
		})

		Convey("When the song exists but left the chart", func() {
			_, err := e.Detail(ctx, repotest.Bohemian)

			Convey("Then ErrNotCharting is returned", func() {
				So(errors.Is(err, ranking.ErrNotCharting), ShouldBeTrue)
			})
		})

		Convey("When the song does not exist", func() {
			_, err := e.Detail(ctx, repotest.NoSong)

			Convey("Then the store's not-found passes through", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When looking up by slug", func() {
			d, err := e.DetailBySlug(ctx, "hotel-california")
			So(err, ShouldBeNil)
			So(d.SongID, ShouldEqual, repotest.HotelCalifornia)

			escaped, err := e.DetailBySlug(ctx, "Don%27t-Stop-Me-Now")
			So(err, ShouldBeNil)
			So(escaped.SongID, ShouldEqual, repotest.DontStopMeNow)

			Convey("Then colliding titles resolve to the lowest id", func() {
				// Song 1 and its re-import share a title; song 1 no longer charts.
				_, err := e.DetailBySlug(ctx, "bohemian-rhapsody")
				So(errors.Is(err, ranking.ErrNotCharting), ShouldBeTrue)
			})

			Convey("Then titles with a literal hyphen cannot be found", func() {
				_, err := e.DetailBySlug(ctx, ranking.Slug("Roll-Over"))
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given the fixture ranking", t, func() {
		ctx := context.Background()

		Convey("When the song left the chart", func() {
			h, err := newEngine().History(ctx, repotest.Bohemian)

			Convey("Then its history is still returned", func() {
				So(err, ShouldBeNil)
				So(h, ShouldResemble, []model.HistoryPoint{
					{Year: 2020, Position: 1},
					{Year: 2021, Position: 1},
					{Year: 2022, Position: 2},
					{Year: 2023, Position: 1},
				})
			})
		})

		Convey("When the window is narrowed and the current year moved back", func() {
			e := newEngine(ranking.WithCurrentYear(2022), ranking.WithHistoryWindow(2))
			h, err := e.History(ctx, repotest.Avond)

			Convey("Then only the window is returned", func() {
				So(err, ShouldBeNil)
				So(h, ShouldResemble, []model.HistoryPoint{{Year: 2021, Position: 2}, {Year: 2022, Position: 3}})
			})
		})

		Convey("When a window longer than five editions is requested", func() {
			entries := make([]model.Entry, 0, 8)
			for year := 2017; year <= 2024; year++ {
				entries = append(entries, model.Entry{SongID: 1, Year: year, Position: 1})
			}
			store, err := repository.NewMemoryStore(
				[]model.Artist{{ID: 1, Name: "A"}},
				[]model.Song{{ID: 1, ArtistID: 1, Title: "Always"}},
				entries,
			)
			So(err, ShouldBeNil)
			e := ranking.New(store, ranking.WithCurrentYear(2024), ranking.WithHistoryWindow(8))
			h, err := e.History(ctx, 1)

			Convey("Then history is still capped at five points", func() {
				So(err, ShouldBeNil)
				So(len(h), ShouldEqual, ranking.MaxHistoryWindow)
				So(h[0].Year, ShouldEqual, 2020)
			})
		})

		Convey("When a song never charted in the window", func() {
			e := newEngine(ranking.WithCurrentYear(2030))
			h, err := e.History(ctx, repotest.Avond)

			Convey("Then the history is empty", func() {
				So(err, ShouldBeNil)
				So(h, ShouldBeEmpty)
			})
		})

		Convey("When the song does not exist", func() {
			_, err := newEngine().History(ctx, repotest.NoSong)

			Convey("Then not-found is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestSlug(t *testing.T) {
	Convey("Given titles and slugs", t, func() {
		Convey("Then slugs collapse punctuation and spaces", func() {
			So(ranking.Slug("Don't Stop Me Now"), ShouldEqual, "don-t-stop-me-now")
			So(ranking.Slug("Hotel California"), ShouldEqual, "hotel-california")
		})

		Convey("Then titles are recovered by unescaping and replacing hyphens", func() {
			So(ranking.TitleFromSlug("hotel-california"), ShouldEqual, "hotel california")
			So(ranking.TitleFromSlug("Don%27t-Stop"), ShouldEqual, "Don't Stop")
			So(ranking.TitleFromSlug("bad%zzescape"), ShouldEqual, "bad%zzescape")
		})
	})
}
