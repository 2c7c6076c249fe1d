package extraction

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given extraction results of every shape", t, func() {
		cases := []struct {
			name string
			res  Result
			kind Kind
		}{
			{"plain single file", Result{URL: "https://e/v.mp4"}, KindDirect},
			{"fragmented track", Result{URL: "https://e/m.mpd", Fragments: []Fragment{{Path: "s1"}}}, KindSingle},
			{"split tracks", Result{RequestedFormats: []Format{{URL: "https://e/v"}}}, KindSplitTracks},
			{"playlist", Result{Type: "playlist", Entries: []*Result{{}}}, KindPlaylist},
			{"typed empty playlist", Result{Type: "playlist"}, KindPlaylist},
			{"multi video", Result{Type: "multi_video", Entries: []*Result{{}}}, KindMultiVideo},
			{"nothing", Result{}, KindUnknown},
		}

		for _, c := range cases {
			Convey("Then a "+c.name+" is classified as "+c.kind.String(), func() {
				So(c.res.Classify(), ShouldEqual, c.kind)
			})
		}
	})

	Convey("Only playlists and multi-videos require flattening", t, func() {
		So((&Result{Type: "playlist"}).IsPlaylist(), ShouldBeTrue)
		So((&Result{Type: "multi_video", Entries: []*Result{{}}}).IsPlaylist(), ShouldBeTrue)
		So((&Result{URL: "https://e/v.mp4"}).IsPlaylist(), ShouldBeFalse)
	})
}

func TestParseProtocol(t *testing.T) {
	Convey("Given the extraction tool's free-form protocol tags", t, func() {
		So(ParseProtocol("http"), ShouldEqual, ProtocolHTTP)
		So(ParseProtocol("https"), ShouldEqual, ProtocolHTTP)
		So(ParseProtocol("http_dash_segments"), ShouldEqual, ProtocolDASH)
		So(ParseProtocol("m3u8"), ShouldEqual, ProtocolHLS)
		So(ParseProtocol("m3u8_native"), ShouldEqual, ProtocolHLS)
		So(ParseProtocol("rtmp"), ShouldEqual, ProtocolRTMP)
		So(ParseProtocol("rtmpe"), ShouldEqual, ProtocolRTMP)
		So(ParseProtocol("websocket_frag"), ShouldEqual, ProtocolUnknown)
		So(ParseProtocol(""), ShouldEqual, ProtocolUnknown)
	})
}

func TestResultDecoding(t *testing.T) {
	Convey("Given a typical extraction JSON document", t, func() {
		raw := `{
			"title": "Some Video",
			"webpage_url": "https://site.example/watch",
			"protocol": "http_dash_segments",
			"duration": 634.5,
			"is_live": false,
			"fragments": [
				{"path": "init.mp4"},
				{"path": "s1.m4s", "duration": 4.0}
			],
			"requested_subtitles": {
				"en": {"url": "https://site.example/en.vtt", "ext": "vtt"}
			},
			"chapters": [{"start_time": 12.5, "title": "Intro"}],
			"http_headers": {"User-Agent": "agent/1.0"}
		}`

		Convey("When decoded", func() {
			var res Result
			So(json.Unmarshal([]byte(raw), &res), ShouldBeNil)

			Convey("Then optional scalars distinguish absent from zero", func() {
				So(res.Duration.MustGet(), ShouldEqual, 634.5)
				So(res.StartTime.IsAbsent(), ShouldBeTrue)
				So(res.Fragments[0].Duration.IsAbsent(), ShouldBeTrue)
				So(res.Fragments[1].Duration.MustGet(), ShouldEqual, 4.0)
			})

			Convey("Then nested structures come through", func() {
				So(res.RequestedSubtitles["en"].URL, ShouldEqual, "https://site.example/en.vtt")
				So(res.Chapters[0].StartTime, ShouldEqual, 12.5)
				So(res.HTTPHeaders["User-Agent"], ShouldEqual, "agent/1.0")
			})
		})
	})

	Convey("Given a fragment with both url and path", t, func() {
		So(Fragment{URL: "https://a/u", Path: "p"}.Ref(), ShouldEqual, "https://a/u")
		So(Fragment{Path: "p"}.Ref(), ShouldEqual, "p")
	})
}
