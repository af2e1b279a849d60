package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/top2000/internal/adapters/repository"
	"github.com/okian/top2000/internal/adapters/repository/repotest"
	service "github.com/okian/top2000/internal/app"
)

// sqliteService wires the service the way the binary does: SQL store behind
// the circuit breaker.
func sqliteService(t *testing.T) (*service.Service, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open(repository.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := repository.NewSQLStore(db, repository.WithMaxOpenConns(1))
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := repotest.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	guarded := repository.NewGuarded(store,
		repository.WithBreakerName("integration"),
		repository.WithMaxFailures(3),
		repository.WithOpenTimeout(time.Minute),
	)
	return service.New(guarded, service.WithCurrentYear(repotest.Current)), db
}

func TestServiceIntegration(t *testing.T) {
	svc, db := sqliteService(t)
	mem := service.New(repotest.MustStore(), service.WithCurrentYear(repotest.Current))

	Convey("Given the service over sqlite and over memory", t, func() {
		ctx := context.Background()

		Convey("Then listing and detail agree", func() {
			for _, size := range []int{1, 3, 50} {
				got, err := svc.Songs(ctx, 1, size)
				So(err, ShouldBeNil)
				want, err := mem.Songs(ctx, 1, size)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}

			got, err := svc.Song(ctx, repotest.HotelCalifornia)
			So(err, ShouldBeNil)
			want, err := mem.Song(ctx, repotest.HotelCalifornia)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
		})

		Convey("Then every year report agrees", func() {
			for year := 2020; year <= 2025; year++ {
				got, err := svc.YearSummary(ctx, year)
				So(err, ShouldBeNil)
				want, err := mem.YearSummary(ctx, year)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}

			got, err := svc.EveryEdition(ctx)
			So(err, ShouldBeNil)
			want, err := mem.EveryEdition(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
		})

		Convey("Then artist queries agree", func() {
			got, err := svc.Artists(ctx)
			So(err, ShouldBeNil)
			want, err := mem.Artists(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
		})
	})

	Convey("Given many concurrent readers", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		numGoroutines := 10
		errs := make(chan error, numGoroutines*3)
		done := make(chan bool, numGoroutines)

		for i := 0; i < numGoroutines; i++ {
			go func(id int) {
				defer func() { done <- true }()
				page, err := svc.Songs(ctx, id%3+1, 3)
				if err != nil {
					errs <- err
					return
				}
				if page.TotalSongs != 7 {
					errs <- fmt.Errorf("goroutine %d saw %d songs", id, page.TotalSongs)
				}
				if _, err := svc.DroppedSongs(ctx, 2024); err != nil {
					errs <- err
				}
				if _, err := svc.EveryEdition(ctx); err != nil {
					errs <- err
				}
			}(i)
		}
		for i := 0; i < numGoroutines; i++ {
			<-done
		}
		close(errs)

		Convey("Then all queries succeed", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
		})
	})

	Convey("Given the database goes away", t, func() {
		ctx := context.Background()
		So(db.Close(), ShouldBeNil)

		var last error
		for i := 0; i < 5; i++ {
			_, last = svc.NewEntries(ctx, 2024)
		}

		Convey("Then callers see Internal errors once the breaker opens", func() {
			So(errors.Is(last, service.ErrInternal), ShouldBeTrue)
			So(errors.Is(last, repository.ErrUnavailable), ShouldBeFalse)
		})
	})
}
