package resolve

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJoinURL(t *testing.T) {
	Convey("Given an absolute reference", t, func() {
		So(JoinURL("https://a.b/c/", "https://other.example/x"), ShouldEqual, "https://other.example/x")
	})

	Convey("Given relative references", t, func() {
		Convey("Plain segments append to the base path", func() {
			So(JoinURL("https://a.b/c/", "seg.m4s"), ShouldEqual, "https://a.b/c/seg.m4s")
			So(JoinURL("https://a.b", "seg.m4s"), ShouldEqual, "https://a.b/seg.m4s")
		})

		Convey("Parent references pop a segment", func() {
			So(JoinURL("https://a.b/c/d/", "../e"), ShouldEqual, "https://a.b/c/e")
			So(JoinURL("https://a.b/c/", "../../../e"), ShouldEqual, "https://a.b/e")
		})

		Convey("Dot and empty segments are dropped", func() {
			So(JoinURL("https://a.b/c/", "./x//y"), ShouldEqual, "https://a.b/c/x/y")
		})
	})
}
