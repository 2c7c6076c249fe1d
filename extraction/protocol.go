package extraction

import "strings"

// Protocol is the closed enumeration of delivery protocols the resolver
// distinguishes. The extraction tool reports protocols as free-form
// strings; ParseProtocol maps them onto this set once.
type Protocol int

const (
	// ProtocolUnknown covers anything the resolver has no special handling for.
	ProtocolUnknown Protocol = iota
	// ProtocolHTTP is a plain progressive download.
	ProtocolHTTP
	// ProtocolDASH is segmented-adaptive streaming with discrete timed
	// fragments and an optional initialization segment.
	ProtocolDASH
	// ProtocolHLS is manifest-driven HTTP streaming the player can demux natively.
	ProtocolHLS
	// ProtocolRTMP is the push-style streaming protocol family.
	ProtocolRTMP
)

// ParseProtocol maps the extraction tool's raw protocol tag onto the
// closed enumeration.
func ParseProtocol(raw string) Protocol {
	switch {
	case raw == "http" || raw == "https":
		return ProtocolHTTP
	case raw == "http_dash_segments":
		return ProtocolDASH
	case strings.HasPrefix(raw, "m3u8"):
		return ProtocolHLS
	case strings.HasPrefix(raw, "rtmp"):
		return ProtocolRTMP
	default:
		return ProtocolUnknown
	}
}

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP:
		return "http"
	case ProtocolDASH:
		return "dash"
	case ProtocolHLS:
		return "hls"
	case ProtocolRTMP:
		return "rtmp"
	default:
		return "unknown"
	}
}

// StreamProtocol returns the parsed protocol of the result itself.
func (r *Result) StreamProtocol() Protocol {
	return ParseProtocol(r.Protocol)
}

// TrackProtocol returns the parsed protocol of a requested format.
func (f Format) TrackProtocol() Protocol {
	return ParseProtocol(f.Protocol)
}
