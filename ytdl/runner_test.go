package ytdl

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildArgs(t *testing.T) {
	Convey("Given a configured runner", t, func() {
		runner := &Runner{
			path:      "yt-dlp",
			format:    "bestvideo+bestaudio/best",
			subFormat: "ass/srt/best",
			rawArgs:   []string{"--cookies-from-browser", "firefox"},
			timeout:   time.Minute,
		}

		Convey("When building the invocation for a url", func() {
			args := runner.buildArgs("https://site.example/watch?v=abc")

			Convey("Then the fixed template comes first", func() {
				So(args[0], ShouldEqual, "--no-warnings")
				So(args, ShouldContain, "-J")
				So(args, ShouldContain, "--flat-playlist")
			})

			Convey("Then configured passthrough args are appended", func() {
				So(args, ShouldContain, "--cookies-from-browser")
				So(args, ShouldContain, "firefox")
			})

			Convey("Then the url is terminal and guarded against flag parsing", func() {
				So(args[len(args)-1], ShouldEqual, "https://site.example/watch?v=abc")
				So(args[len(args)-2], ShouldEqual, "--")
			})
		})
	})
}

func TestExclusions(t *testing.T) {
	Convey("Given compiled exclusion patterns", t, func() {
		exclusions, err := CompileExclusions([]string{
			`^cdn\.example\.com/`,
			`\.mp4$`,
		})
		So(err, ShouldBeNil)

		Convey("Then matching strips the scheme first", func() {
			So(exclusions.Match("https://cdn.example.com/v/123"), ShouldBeTrue)
			So(exclusions.Match("http://cdn.example.com/v/123"), ShouldBeTrue)
			So(exclusions.Match("https://other.example.com/v.mp4"), ShouldBeTrue)
			So(exclusions.Match("https://site.example/watch"), ShouldBeFalse)
		})
	})

	Convey("Given an empty pattern list", t, func() {
		exclusions, err := CompileExclusions(nil)
		So(err, ShouldBeNil)
		So(exclusions.Match("https://anything.example/"), ShouldBeFalse)
	})

	Convey("Given an invalid pattern", t, func() {
		_, err := CompileExclusions([]string{"("})
		So(err, ShouldNotBeNil)
	})
}
