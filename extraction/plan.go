package extraction

import "github.com/samber/mo"

// Plan is the fully-resolved, safety-checked playback answer for one
// item. It is built incrementally within a single resolution call and
// never mutated after handoff to the host player.
type Plan struct {
	// StreamURL is the primary stream address. It may be a synthesized
	// edl:// pseudo-playlist stitching multiple fragments.
	StreamURL string `json:"stream_url"`
	Title     string `json:"title"`

	Start       mo.Option[float64] `json:"start,omitempty"`
	AspectRatio mo.Option[float64] `json:"aspect_ratio,omitempty"`

	// UserAgent and Headers are propagated from the extraction result
	// unless the caller configured its own.
	UserAgent string   `json:"user_agent,omitempty"`
	Headers   []string `json:"headers,omitempty"`

	Audio     []AudioTrack    `json:"audio,omitempty"`
	Subtitles []SubtitleTrack `json:"subtitles,omitempty"`
	Chapters  []Chapter       `json:"chapters,omitempty"`

	// BitrateKbps is the adaptive-stream bitrate hint in kbit/s.
	BitrateKbps mo.Option[float64] `json:"bitrate_kbps,omitempty"`

	// RTMPParams are ordered key=value pairs for push-stream playback.
	RTMPParams []RTMPParam `json:"rtmp_params,omitempty"`
}

// AudioTrack is one additional audio track to attach to playback.
type AudioTrack struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// SubtitleTrack is one subtitle track to attach to playback. URL may be
// an addressable in-memory resource (memory://) for inline data, or a
// synthesized edl:// timeline for stitched multi-part subtitles.
type SubtitleTrack struct {
	URL  string `json:"url"`
	Lang string `json:"lang"`
	Ext  string `json:"ext,omitempty"`
}

// Chapter is one ordered chapter marker.
type Chapter struct {
	Time  float64 `json:"time"`
	Title string  `json:"title"`
}

// RTMPParam is one ordered key=value protocol parameter.
type RTMPParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DeferredEntry is a playlist entry that could not be resolved directly
// and must be handed back to the extraction tool.
type DeferredEntry struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}
