package resolve

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/ytplan-cli/ytplan/extraction"
)

func TestFlattenDeferred(t *testing.T) {
	Convey("Given a genuine multi-title playlist", t, func() {
		res := &extraction.Result{
			Type:       "playlist",
			WebpageURL: "https://site.example/playlist",
			Entries: []*extraction.Result{
				{Title: "One\n  two", URL: "opaque-id-1"},
				{Title: "Three", URL: "https://media.example/v.mp4", WebpageURL: "https://site.example/watch/3"},
				{Title: "Evil", URL: "javascript://boom"},
			},
		}

		Convey("When flattened", func() {
			flattened, err := defaultResolver().Flatten(res)
			So(err, ShouldBeNil)

			Convey("Then a deferred list is produced instead of a plan", func() {
				So(flattened.Plan, ShouldBeNil)
				So(flattened.Deferred, ShouldHaveLength, 2)
			})

			Convey("Then schemeless identifiers are deferred to the extraction tool", func() {
				So(flattened.Deferred[0].URL, ShouldEqual, "ytdl://opaque-id-1")
			})

			Convey("Then titles collapse internal whitespace", func() {
				So(flattened.Deferred[0].Title, ShouldEqual, "One two")
			})

			Convey("Then the entry's own page url is preferred over the media url", func() {
				So(flattened.Deferred[1].URL, ShouldEqual, "https://site.example/watch/3")
			})
		})
	})

	Convey("Given a playlist where every entry is unsafe", t, func() {
		res := &extraction.Result{
			Type: "playlist",
			Entries: []*extraction.Result{
				{URL: "javascript://a"},
				{URL: "file:///etc/passwd"},
			},
		}

		_, err := defaultResolver().Flatten(res)
		So(err, ShouldNotBeNil)
	})

	Convey("Given an empty playlist", t, func() {
		_, err := defaultResolver().Flatten(&extraction.Result{Type: "playlist"})
		So(err, ShouldNotBeNil)
	})
}

func TestFlattenSingleEntry(t *testing.T) {
	Convey("Given a single-entry playlist pointing back at its own page", t, func() {
		res := &extraction.Result{
			WebpageURL: "https://site.example/watch",
			Entries: []*extraction.Result{
				{
					Title:      "The Video",
					URL:        "https://media.example/v.mp4",
					WebpageURL: "https://site.example/watch",
				},
			},
		}

		Convey("When flattened", func() {
			flattened, err := defaultResolver().Flatten(res)
			So(err, ShouldBeNil)

			Convey("Then the entry resolves directly to a plan", func() {
				So(flattened.Deferred, ShouldBeEmpty)
				So(flattened.Plan, ShouldNotBeNil)
				So(flattened.Plan.StreamURL, ShouldEqual, "https://media.example/v.mp4")
			})
		})
	})

	Convey("Given a transparent redirect entry", t, func() {
		res := &extraction.Result{
			WebpageURL: "https://site.example/watch",
			Entries: []*extraction.Result{
				{
					Type:       "url_transparent",
					Title:      "Elsewhere",
					URL:        "https://other.example/v",
					WebpageURL: "https://site.example/watch",
				},
			},
		}

		Convey("Then it is deferred, not resolved in place", func() {
			flattened, err := defaultResolver().Flatten(res)
			So(err, ShouldBeNil)
			So(flattened.Plan, ShouldBeNil)
			So(flattened.Deferred, ShouldHaveLength, 1)
		})
	})
}

func TestFlattenMultiArc(t *testing.T) {
	Convey("Given one logical video served as multiple arcs", t, func() {
		res := &extraction.Result{
			Title:      "Feature Film",
			WebpageURL: "https://site.example/watch",
			Entries: []*extraction.Result{
				{
					URL:         "https://cdn.example/arc1.m3u8",
					WebpageURL:  "https://site.example/watch",
					Protocol:    "m3u8_native",
					Duration:    mo.Some(100.0),
					HTTPHeaders: map[string]string{"User-Agent": "arc-agent"},
					RequestedSubtitles: map[string]extraction.Subtitle{
						"en": {URL: "https://cdn.example/arc1.en.vtt", Ext: "vtt"},
					},
				},
				{
					URL:      "https://cdn.example/arc2.m3u8",
					Protocol: "m3u8_native",
					Duration: mo.Some(50.0),
				},
			},
		}

		Convey("When flattened", func() {
			flattened, err := defaultResolver().Flatten(res)
			So(err, ShouldBeNil)
			So(flattened.Plan, ShouldNotBeNil)
			plan := flattened.Plan

			Convey("Then the arcs join into one stitched timeline", func() {
				segments, err := ParseEDL(plan.StreamURL)
				So(err, ShouldBeNil)
				So(segments, ShouldHaveLength, 2)
				So(segments[0].URL, ShouldEqual, "https://cdn.example/arc1.m3u8")
				So(segments[0].Length, ShouldResemble, mo.Some(100.0))
				So(segments[1].Length, ShouldResemble, mo.Some(50.0))
			})

			Convey("Then the parent's title and the first arc's headers apply", func() {
				So(plan.Title, ShouldEqual, "Feature Film")
				So(plan.UserAgent, ShouldEqual, "arc-agent")
			})

			Convey("Then subtitles become a combined timeline with filler arcs", func() {
				So(plan.Subtitles, ShouldHaveLength, 1)
				sub := plan.Subtitles[0]
				So(sub.Lang, ShouldEqual, "en")

				segments, err := ParseEDL(sub.URL)
				So(err, ShouldBeNil)
				So(segments, ShouldHaveLength, 2)
				So(segments[0].URL, ShouldEqual, "https://cdn.example/arc1.en.vtt")
				So(segments[1].URL, ShouldEqual, "memory://WEBVTT")
				So(segments[1].Length, ShouldResemble, mo.Some(50.0))
			})
		})

		Convey("When one arc lacks a duration", func() {
			res.Entries[1].Duration = mo.None[float64]()

			flattened, err := defaultResolver().Flatten(res)
			So(err, ShouldBeNil)

			Convey("Then the video join survives without a length tag", func() {
				segments, err := ParseEDL(flattened.Plan.StreamURL)
				So(err, ShouldBeNil)
				So(segments, ShouldHaveLength, 2)
				So(segments[1].Length.IsAbsent(), ShouldBeTrue)
			})

			Convey("Then combined subtitles for every language are dropped", func() {
				So(flattened.Plan.Subtitles, ShouldBeEmpty)
			})
		})
	})
}
