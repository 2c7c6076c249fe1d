package resolve

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/ytplan-cli/ytplan/extraction"
)

func TestEDLFromFragments(t *testing.T) {
	Convey("Given fragments with relative paths and durations", t, func() {
		fragments := []extraction.Fragment{
			{Path: "seg1.m4s", Duration: mo.Some(4.5)},
			{Path: "seg2.m4s", Duration: mo.Some(4.0)},
		}

		Convey("When joined against a base url", func() {
			edl, err := EDLFromFragments(fragments, extraction.ProtocolHTTP, false, "https://cdn.example.com/v/")

			Convey("Then each entry is escaped and tagged with its length", func() {
				So(err, ShouldBeNil)
				So(edl, ShouldEqual,
					"edl://%34%https://cdn.example.com/v/seg1.m4s,length=4.5;%34%https://cdn.example.com/v/seg2.m4s,length=4;")
			})
		})
	})

	Convey("Given a segmented-adaptive stream with an init segment", t, func() {
		fragments := []extraction.Fragment{
			{Path: "init.mp4"},
			{Path: "s1.m4s", Duration: mo.Some(4.0)},
			{Path: "s2.m4s", Duration: mo.Some(4.0)},
		}

		Convey("When joined as a non-live stream", func() {
			edl, err := EDLFromFragments(fragments, extraction.ProtocolDASH, false, "https://cdn.example.com/v/")
			So(err, ShouldBeNil)

			Convey("Then the first fragment becomes a header entry", func() {
				So(edl, ShouldStartWith, "edl://!mp4_dash,init=%34%https://cdn.example.com/v/init.mp4;")

				segments, err := ParseEDL(edl)
				So(err, ShouldBeNil)
				So(segments, ShouldHaveLength, 3)
				So(segments[0].Init, ShouldBeTrue)
				So(segments[0].URL, ShouldEqual, "https://cdn.example.com/v/init.mp4")
				So(segments[1].Init, ShouldBeFalse)
				So(segments[1].Length, ShouldResemble, mo.Some(4.0))
			})
		})

		Convey("When a later fragment lacks a duration", func() {
			broken := []extraction.Fragment{
				{Path: "init.mp4"},
				{Path: "s1.m4s"},
			}
			_, err := EDLFromFragments(broken, extraction.ProtocolDASH, false, "https://cdn.example.com/v/")

			Convey("Then the whole synthesis fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "without duration")
			})
		})

		Convey("When the stream is live", func() {
			edl, err := EDLFromFragments(fragments, extraction.ProtocolDASH, true, "https://cdn.example.com/v/")
			So(err, ShouldBeNil)

			Convey("Then no header entry is synthesized", func() {
				So(edl, ShouldNotContainSubstring, "!mp4_dash")
			})
		})
	})

	Convey("Given no fragments", t, func() {
		_, err := EDLFromFragments(nil, extraction.ProtocolHTTP, false, "")
		So(err, ShouldEqual, ErrNoFragments)
	})

	Convey("Given a fragment resolving to an unsafe url", t, func() {
		fragments := []extraction.Fragment{
			{URL: "javascript://alert(1)", Duration: mo.Some(1.0)},
		}
		_, err := EDLFromFragments(fragments, extraction.ProtocolHTTP, false, "")
		So(err, ShouldNotBeNil)
	})
}

func TestParseEDLRoundTrip(t *testing.T) {
	Convey("Given urls containing the format's own delimiters", t, func() {
		urls := []string{
			"https://a.example/p;1,2%3",
			"https://a.example/len=,length=9;x",
			"https://a.example/%%%",
		}

		fragments := make([]extraction.Fragment, 0, len(urls))
		for i, u := range urls {
			fragments = append(fragments, extraction.Fragment{
				URL:      u,
				Duration: mo.Some(float64(i + 1)),
			})
		}

		Convey("When synthesized and decoded again", func() {
			edl, err := EDLFromFragments(fragments, extraction.ProtocolHTTP, false, "")
			So(err, ShouldBeNil)

			segments, err := ParseEDL(edl)
			So(err, ShouldBeNil)

			Convey("Then every url round-trips exactly", func() {
				So(segments, ShouldHaveLength, len(urls))
				for i, segment := range segments {
					So(segment.URL, ShouldEqual, urls[i])
					So(segment.Length, ShouldResemble, mo.Some(float64(i+1)))
				}
			})
		})
	})

	Convey("Given malformed pseudo-playlists", t, func() {
		Convey("A missing scheme is rejected", func() {
			_, err := ParseEDL("https://not.an.edl/")
			So(err, ShouldNotBeNil)
		})

		Convey("A truncated envelope is rejected", func() {
			_, err := ParseEDL("edl://%100%https://short;")
			So(err, ShouldNotBeNil)
		})

		Convey("A bad envelope length is rejected", func() {
			_, err := ParseEDL("edl://%x%https://a.b;")
			So(err, ShouldNotBeNil)
		})

		Convey("An unterminated segment is rejected", func() {
			_, err := ParseEDL("edl://%11%https://a.b")
			So(err, ShouldNotBeNil)
		})
	})
}
