// Package extraction defines the domain models for media extraction results and playback plans.
//
// A Result mirrors the JSON document emitted by yt-dlp for one logical
// item. Almost every field is optional on the wire; optional scalars are
// represented as mo.Option values so absence never has to be encoded as
// a magic zero.
package extraction

import "github.com/samber/mo"

// Result is the extraction tool's output for one logical item.
// It is immutable input for a single resolution call.
type Result struct {
	Type       string `json:"_type"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`

	Protocol    string `json:"protocol"`
	ManifestURL string `json:"manifest_url"`

	Fragments       []Fragment `json:"fragments"`
	FragmentBaseURL string     `json:"fragment_base_url"`

	RequestedFormats   []Format            `json:"requested_formats"`
	RequestedSubtitles map[string]Subtitle `json:"requested_subtitles"`

	Chapters    []RawChapter `json:"chapters"`
	Description string       `json:"description"`

	Duration       mo.Option[float64] `json:"duration"`
	StartTime      mo.Option[float64] `json:"start_time"`
	StretchedRatio mo.Option[float64] `json:"stretched_ratio"`
	Bitrate        mo.Option[float64] `json:"tbr"`

	HTTPHeaders map[string]string `json:"http_headers"`
	IsLive      bool              `json:"is_live"`

	Entries []*Result `json:"entries"`

	// rtmp-specific fields
	PageURL   string `json:"page_url"`
	PlayPath  string `json:"play_path"`
	PlayerURL string `json:"player_url"`
	App       string `json:"app"`
}

// Fragment is one addressable piece of a segmented stream, identified by
// a relative path or an absolute url, with an optional duration.
type Fragment struct {
	URL      string             `json:"url"`
	Path     string             `json:"path"`
	Duration mo.Option[float64] `json:"duration"`
}

// Ref returns the fragment's addressable reference: the absolute url if
// present, otherwise the relative path.
func (f Fragment) Ref() string {
	if f.URL != "" {
		return f.URL
	}
	return f.Path
}

// Format is one requested track of a split-tracks result.
type Format struct {
	URL             string             `json:"url"`
	ManifestURL     string             `json:"manifest_url"`
	Protocol        string             `json:"protocol"`
	Fragments       []Fragment         `json:"fragments"`
	FragmentBaseURL string             `json:"fragment_base_url"`
	ACodec          string             `json:"acodec"`
	VCodec          string             `json:"vcodec"`
	Bitrate         mo.Option[float64] `json:"tbr"`
	FormatID        string             `json:"format_id"`
	FormatNote      string             `json:"format_note"`
}

// HasVideo reports whether the track carries a usable video codec.
// yt-dlp encodes "no codec" as the literal string "none".
func (f Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// HasAudio reports whether the track carries a usable audio codec.
func (f Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// Subtitle is one language's subtitle source: inline data or a remote url.
type Subtitle struct {
	Data string `json:"data"`
	URL  string `json:"url"`
	Ext  string `json:"ext"`
}

// RawChapter is a pre-parsed chapter record from the extraction tool.
type RawChapter struct {
	StartTime float64 `json:"start_time"`
	Title     string  `json:"title"`
}
