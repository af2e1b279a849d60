package errkind_test

import (
	"errors"
	"testing"

	"github.com/okian/top2000/pkg/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	errKind  = errors.New("not found")
	errCause = errors.New("sql: no rows in result set")
)

func TestErrorKinds(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		Convey("When creating a bare kind", func() {
			err := errkind.NewKind("repository.song", errKind)

			Convey("Then it matches the kind and prints the op", func() {
				So(errors.Is(err, errKind), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "repository.song: not found")
			})
		})

		Convey("When wrapping a cause with a kind", func() {
			err := errkind.WrapKind("repository.song", errKind, errCause)

			Convey("Then it matches both the kind and the cause", func() {
				So(errors.Is(err, errKind), ShouldBeTrue)
				So(errors.Is(err, errCause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "repository.song: not found: sql: no rows in result set")
			})
		})

		Convey("When wrapping without a kind", func() {
			err := errkind.Wrap("stats.new_entries", errCause)

			Convey("Then only the cause matches", func() {
				So(errors.Is(err, errCause), ShouldBeTrue)
				So(errors.Is(err, errKind), ShouldBeFalse)
				So(err.Error(), ShouldEqual, "stats.new_entries: sql: no rows in result set")
			})
		})

		Convey("When wrapping nil", func() {
			Convey("Then nil is returned", func() {
				So(errkind.Wrap("op", nil), ShouldBeNil)
				So(errkind.WrapKind("op", errKind, nil), ShouldBeNil)
			})
		})

		Convey("When nesting wrapped errors", func() {
			inner := errkind.WrapKind("repository.rows", errKind, errCause)
			outer := errkind.Wrap("ranking.list", inner)

			Convey("Then errors.As finds the inner error", func() {
				var target *errkind.Error
				So(errors.As(outer, &target), ShouldBeTrue)
				So(target.Op, ShouldEqual, "ranking.list")
				So(errors.Is(outer, errKind), ShouldBeTrue)
			})
		})
	})
}
