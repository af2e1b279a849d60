package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/top2000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func TestNewRankedSong(t *testing.T) {
	Convey("Given a current-year chart row", t, func() {
		row := model.ChartRow{
			Entry:      model.Entry{SongID: 7, Year: 2024, Position: 8},
			Title:      "Bohemian Rhapsody",
			ArtistName: "Queen",
		}

		Convey("When the song charted the year before", func() {
			rs := model.NewRankedSong(row, intPtr(10))

			Convey("Then change is previous minus current", func() {
				So(*rs.PreviousPosition, ShouldEqual, 10)
				So(*rs.PositionChange, ShouldEqual, 2)
				So(rs.CurrentPosition, ShouldEqual, 8)
			})
		})

		Convey("When the song fell back", func() {
			rs := model.NewRankedSong(row, intPtr(3))

			Convey("Then the change is negative", func() {
				So(*rs.PositionChange, ShouldEqual, -5)
			})
		})

		Convey("When the song did not chart the year before", func() {
			rs := model.NewRankedSong(row, nil)

			Convey("Then previous position and change are absent, not zero", func() {
				So(rs.PreviousPosition, ShouldBeNil)
				So(rs.PositionChange, ShouldBeNil)

				raw, err := json.Marshal(rs)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"previousPosition":null`)
				So(string(raw), ShouldContainSubstring, `"positionChange":null`)
			})
		})

		Convey("When the previous pointer is later mutated", func() {
			prev := 12
			rs := model.NewRankedSong(row, &prev)
			prev = 1

			Convey("Then the ranked song keeps its own copy", func() {
				So(*rs.PreviousPosition, ShouldEqual, 12)
			})
		})
	})
}
