package extraction

// Kind classifies the overall shape of a Result. The classification is
// derived once so resolution logic can branch on a closed tag instead of
// probing field presence everywhere.
type Kind int

const (
	KindUnknown Kind = iota
	// KindDirect is a plain single-file url with no formats or fragments.
	KindDirect
	// KindSingle is a single track, possibly fragmented.
	KindSingle
	// KindSplitTracks carries separately requested audio/video formats.
	KindSplitTracks
	// KindPlaylist is a multi-title playlist of distinct entries.
	KindPlaylist
	// KindMultiVideo is one logical video served as multiple entries.
	KindMultiVideo
)

// String returns the lowercase tag used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindSingle:
		return "single"
	case KindSplitTracks:
		return "split-tracks"
	case KindPlaylist:
		return "playlist"
	case KindMultiVideo:
		return "multi-video"
	default:
		return "unknown"
	}
}

// Classify derives the Kind of a Result.
func (r *Result) Classify() Kind {
	switch {
	case len(r.Entries) > 0 && r.Type == "multi_video":
		return KindMultiVideo
	case len(r.Entries) > 0 || r.Type == "playlist":
		return KindPlaylist
	case len(r.RequestedFormats) > 0:
		return KindSplitTracks
	case len(r.Fragments) > 0:
		return KindSingle
	case r.URL != "":
		return KindDirect
	default:
		return KindUnknown
	}
}

// IsPlaylist reports whether the result must go through playlist
// flattening before it can be resolved.
func (r *Result) IsPlaylist() bool {
	k := r.Classify()
	return k == KindPlaylist || k == KindMultiVideo
}
