package resolve

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/ytplan-cli/ytplan/extraction"
)

func defaultResolver() *Resolver {
	return New(extraction.Capabilities{}, extraction.Overrides{})
}

func TestOneSingleTrack(t *testing.T) {
	Convey("Given a plain single-file result", t, func() {
		res := &extraction.Result{
			Title: "A Video",
			URL:   "https://example.com/v.mp4",
			HTTPHeaders: map[string]string{
				"User-Agent":    "agent/1.0",
				"Cookie":        "sid=1",
				"Authorization": "Bearer t", // not allow-listed
			},
		}

		Convey("When resolved", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)

			Convey("Then the direct url becomes the stream", func() {
				So(plan.StreamURL, ShouldEqual, "https://example.com/v.mp4")
				So(plan.Title, ShouldEqual, "A Video")
			})

			Convey("Then only allow-listed headers propagate", func() {
				So(plan.UserAgent, ShouldEqual, "agent/1.0")
				So(plan.Headers, ShouldResemble, []string{"Cookie: sid=1"})
			})
		})
	})

	Convey("Given a fragmented single track", t, func() {
		res := &extraction.Result{
			Title:           "Segmented",
			URL:             "https://example.com/master.mpd",
			Protocol:        "http_dash_segments",
			FragmentBaseURL: "https://cdn.example.com/v/",
			Fragments: []extraction.Fragment{
				{Path: "s1.m4s", Duration: mo.Some(4.0)},
				{Path: "s2.m4s", Duration: mo.Some(4.0)},
			},
		}

		Convey("When resolved", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)

			Convey("Then a stitched pseudo-playlist replaces the direct url", func() {
				So(plan.StreamURL, ShouldStartWith, "edl://")

				segments, err := ParseEDL(plan.StreamURL)
				So(err, ShouldBeNil)
				So(segments, ShouldHaveLength, 2)
				So(segments[0].URL, ShouldEqual, "https://cdn.example.com/v/s1.m4s")
			})
		})
	})

	Convey("Given a result with an unsafe url and no fragments", t, func() {
		res := &extraction.Result{URL: "javascript://alert(1)"}
		_, err := defaultResolver().One(res)
		So(err, ShouldNotBeNil)
	})

	Convey("Given a result with nothing playable", t, func() {
		_, err := defaultResolver().One(&extraction.Result{Title: "empty"})
		So(err, ShouldEqual, ErrNoPlayableURL)
	})
}

func TestOneSplitTracks(t *testing.T) {
	Convey("Given separately requested video and audio formats", t, func() {
		res := &extraction.Result{
			Title: "Split",
			RequestedFormats: []extraction.Format{
				{URL: "https://example.com/video", VCodec: "avc1", ACodec: "none"},
				{URL: "https://example.com/audio", ACodec: "mp4a", VCodec: "none", FormatNote: "medium"},
			},
		}

		Convey("When resolved", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)

			Convey("Then the video track is the stream and audio attaches separately", func() {
				So(plan.StreamURL, ShouldEqual, "https://example.com/video")
				So(plan.Audio, ShouldHaveLength, 1)
				So(plan.Audio[0].URL, ShouldEqual, "https://example.com/audio")
				So(plan.Audio[0].Label, ShouldEqual, "medium")
			})
		})
	})

	Convey("Given a fragmented video format", t, func() {
		res := &extraction.Result{
			RequestedFormats: []extraction.Format{
				{
					VCodec:          "avc1",
					ACodec:          "none",
					Protocol:        "http_dash_segments",
					FragmentBaseURL: "https://cdn.example.com/v/",
					Fragments: []extraction.Fragment{
						{Path: "s1.m4s", Duration: mo.Some(4.0)},
					},
				},
			},
		}

		plan, err := defaultResolver().One(res)
		So(err, ShouldBeNil)
		So(plan.StreamURL, ShouldStartWith, "edl://")
	})
}

func TestOneManifest(t *testing.T) {
	Convey("Given a host that demuxes adaptive manifests natively", t, func() {
		resolver := New(extraction.Capabilities{NativeManifests: true}, extraction.Overrides{})

		res := &extraction.Result{
			Title:       "Manifest",
			Protocol:    "http_dash_segments",
			ManifestURL: "https://example.com/master.mpd",
			RequestedFormats: []extraction.Format{
				{URL: "https://example.com/video", VCodec: "avc1", ACodec: "none", Bitrate: mo.Some(1800.0)},
				{URL: "https://example.com/audio", ACodec: "mp4a", VCodec: "none", Bitrate: mo.Some(128.0)},
			},
		}

		Convey("When resolved", func() {
			plan, err := resolver.One(res)
			So(err, ShouldBeNil)

			Convey("Then the manifest itself is the stream", func() {
				So(plan.StreamURL, ShouldEqual, "https://example.com/master.mpd")
			})

			Convey("Then the highest track bitrate becomes the hint", func() {
				So(plan.BitrateKbps, ShouldResemble, mo.Some(1800.0))
			})

			Convey("Then no split tracks are attached", func() {
				So(plan.Audio, ShouldBeEmpty)
			})
		})

		Convey("When the manifest url is unsafe", func() {
			res := &extraction.Result{
				Protocol:    "m3u8_native",
				ManifestURL: "javascript://x",
			}
			_, err := resolver.One(res)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a host without native manifest support", t, func() {
		res := &extraction.Result{
			Protocol:    "http_dash_segments",
			ManifestURL: "https://example.com/master.mpd",
			RequestedFormats: []extraction.Format{
				{URL: "https://example.com/video", VCodec: "avc1", ACodec: "none"},
			},
		}

		plan, err := defaultResolver().One(res)
		So(err, ShouldBeNil)

		Convey("Then split tracks win over the manifest", func() {
			So(plan.StreamURL, ShouldEqual, "https://example.com/video")
		})
	})
}

func TestOneSubtitlesAndChapters(t *testing.T) {
	Convey("Given subtitles in several languages", t, func() {
		res := &extraction.Result{
			URL: "https://example.com/v.mp4",
			RequestedSubtitles: map[string]extraction.Subtitle{
				"en": {Data: "WEBVTT\n...", Ext: "vtt"},
				"de": {URL: "https://example.com/de.vtt", Ext: "vtt"},
				"xx": {URL: "javascript://nope"},
			},
		}

		Convey("When resolved", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)

			Convey("Then tracks are attached in language order, inline data preferred", func() {
				So(plan.Subtitles, ShouldHaveLength, 2)
				So(plan.Subtitles[0].Lang, ShouldEqual, "de")
				So(plan.Subtitles[0].URL, ShouldEqual, "https://example.com/de.vtt")
				So(plan.Subtitles[1].Lang, ShouldEqual, "en")
				So(plan.Subtitles[1].URL, ShouldStartWith, "memory://WEBVTT")
			})
		})
	})

	Convey("Given both chapter records and a timestamped description", t, func() {
		res := &extraction.Result{
			URL:         "https://example.com/v.mp4",
			Description: "0:10 from description",
			Duration:    mo.Some(600.0),
			Chapters: []extraction.RawChapter{
				{StartTime: 30, Title: "From records"},
			},
		}

		plan, err := defaultResolver().One(res)
		So(err, ShouldBeNil)

		Convey("Then the pre-parsed records win", func() {
			So(plan.Chapters, ShouldHaveLength, 1)
			So(plan.Chapters[0].Title, ShouldEqual, "From records")
		})
	})
}

func TestOneOverrides(t *testing.T) {
	Convey("Given result-derived playback hints", t, func() {
		res := &extraction.Result{
			URL:            "https://example.com/v.mp4",
			StartTime:      mo.Some(5.0),
			StretchedRatio: mo.Some(1.78),
			HTTPHeaders:    map[string]string{"User-Agent": "from-result"},
		}

		Convey("Without overrides the hints propagate", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)
			So(plan.Start, ShouldResemble, mo.Some(5.0))
			So(plan.AspectRatio, ShouldResemble, mo.Some(1.78))
			So(plan.UserAgent, ShouldEqual, "from-result")
		})

		Convey("With overrides the caller's values win", func() {
			resolver := New(extraction.Capabilities{}, extraction.Overrides{
				Start:     mo.Some(42.0),
				UserAgent: mo.Some("from-caller"),
			})

			plan, err := resolver.One(res)
			So(err, ShouldBeNil)
			So(plan.Start, ShouldResemble, mo.Some(42.0))
			So(plan.UserAgent, ShouldEqual, "from-caller")
			So(plan.AspectRatio, ShouldResemble, mo.Some(1.78))
		})
	})
}

func TestOneRTMP(t *testing.T) {
	Convey("Given a push-stream result", t, func() {
		res := &extraction.Result{
			URL:      "rtmp://example.com/live",
			Protocol: "rtmp",
			PageURL:  "https://example.com/watch",
			PlayPath: "stream-1",
			App:      "live",
		}

		Convey("When resolved", func() {
			plan, err := defaultResolver().One(res)
			So(err, ShouldBeNil)

			Convey("Then protocol parameters keep their order and skip empty pairs", func() {
				So(plan.RTMPParams, ShouldResemble, []extraction.RTMPParam{
					{Key: "rtmp_tcurl", Value: "rtmp://example.com/live"},
					{Key: "rtmp_pageurl", Value: "https://example.com/watch"},
					{Key: "rtmp_playpath", Value: "stream-1"},
					{Key: "rtmp_app", Value: "live"},
				})
			})
		})
	})
}
