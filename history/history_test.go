package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/ytplan-cli/ytplan/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		saved, err := Get()
		So(err, ShouldBeNil)
		for _, item := range saved {
			So(Remove(item), ShouldBeNil)
		}

		item := &SavedItem{
			URL:               "https://example.com/watch?v=abc",
			Title:             "Some Video",
			PositionSecs:      120,
			DurationSecs:      600,
			WatchedPercentage: 20,
		}

		Convey("When an item is saved", func() {
			err := Save(item)
			So(err, ShouldBeNil)

			Convey("Then it can be looked up by url", func() {
				resumed, ok, err := Resume(item.URL)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(resumed.PositionSecs, ShouldEqual, 120)
				So(resumed.WatchedPercentage, ShouldEqual, 20)
			})

			Convey("When a lower percentage is saved afterwards", func() {
				regressed := &SavedItem{
					URL:               item.URL,
					Title:             item.Title,
					PositionSecs:      30,
					DurationSecs:      600,
					WatchedPercentage: 5,
				}
				So(Save(regressed), ShouldBeNil)

				Convey("Then the maximum progress is kept", func() {
					resumed, ok, err := Resume(item.URL)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(resumed.WatchedPercentage, ShouldEqual, 20)
					So(resumed.PositionSecs, ShouldEqual, 120)
				})
			})

			Convey("When the item is removed", func() {
				So(Remove(item), ShouldBeNil)

				_, ok, err := Resume(item.URL)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
