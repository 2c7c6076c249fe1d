package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/mo"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/log"
)

const edlScheme = "edl://"

// ErrNoFragments is returned when there is nothing to synthesize. It is
// not a failure: callers fall back to the direct url.
var ErrNoFragments = errors.New("no fragments to join")

// edlEscape wraps a url in a length-prefixed envelope so its raw bytes,
// including ';', ',' and '%', cannot be confused with format delimiters.
func edlEscape(url string) string {
	return fmt.Sprintf("%%%d%%%s", len(url), url)
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// EDLFromFragments joins an ordered fragment list into one edl://
// pseudo-playlist string.
//
// For non-live segmented-adaptive streams whose first fragment carries
// no duration, fragment 1 is treated as an MP4 DASH initialization
// segment and emitted as a distinguished header entry; every remaining
// fragment must then carry a duration or the synthesis fails. Any
// fragment resolving to an unsafe url fails the whole synthesis with no
// partial output.
func EDLFromFragments(fragments []extraction.Fragment, protocol extraction.Protocol, isLive bool, baseURL string) (string, error) {
	if len(fragments) == 0 {
		return "", ErrNoFragments
	}

	var parts []string
	offset := 0

	if protocol == extraction.ProtocolDASH && !isLive &&
		fragments[0].Duration.IsAbsent() && len(fragments) > 1 {
		log.Debugf("using init segment")

		initURL := JoinURL(baseURL, fragments[0].Ref())
		if !SafeURL(initURL) {
			return "", fmt.Errorf("unsafe init segment url: %q", initURL)
		}
		parts = append(parts, "!mp4_dash,init="+edlEscape(initURL))
		offset = 1

		for _, fragment := range fragments[1:] {
			if fragment.Duration.IsAbsent() {
				return "", errors.New("segments without duration unsupported for this protocol")
			}
		}
	}

	for _, fragment := range fragments[offset:] {
		url := JoinURL(baseURL, fragment.Ref())
		if !SafeURL(url) {
			return "", fmt.Errorf("unsafe fragment url: %q", url)
		}

		entry := edlEscape(url)
		if duration, ok := fragment.Duration.Get(); ok {
			entry += ",length=" + formatSeconds(duration)
		}
		parts = append(parts, entry)
	}

	return edlScheme + strings.Join(parts, ";") + ";", nil
}

// EDLSegment is one decoded entry of a synthesized pseudo-playlist.
type EDLSegment struct {
	URL    string
	Length mo.Option[float64]
	// Init marks the url recovered from an initialization-segment header.
	Init bool
}

// ParseEDL decodes a synthesized pseudo-playlist back into its segments.
// Decoding consumes the declared byte length of each envelope before
// looking for the next delimiter, so urls containing ';', ',' or '%'
// round-trip exactly.
func ParseEDL(s string) ([]EDLSegment, error) {
	rest, found := strings.CutPrefix(s, edlScheme)
	if !found {
		return nil, fmt.Errorf("not an edl string: %q", s)
	}

	var segments []EDLSegment
	for len(rest) > 0 {
		if strings.HasPrefix(rest, "!") {
			header, tail, err := cutHeader(rest)
			if err != nil {
				return nil, err
			}
			rest = tail
			if header != nil {
				segments = append(segments, *header)
			}
			continue
		}

		url, tail, err := cutEscaped(rest)
		if err != nil {
			return nil, err
		}
		rest = tail

		segment := EDLSegment{URL: url}
		if after, ok := strings.CutPrefix(rest, ",length="); ok {
			raw, tail, found := strings.Cut(after, ";")
			if !found {
				return nil, errors.New("unterminated segment")
			}
			length, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("bad length %q: %w", raw, err)
			}
			segment.Length = mo.Some(length)
			rest = tail
		} else {
			rest, found = strings.CutPrefix(rest, ";")
			if !found {
				return nil, errors.New("unterminated segment")
			}
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

// cutHeader consumes a "!name[,init=<escaped-url>];" header entry.
// It returns a synthetic segment for an init header, nil otherwise.
func cutHeader(s string) (*EDLSegment, string, error) {
	name := s[1:]
	if i := strings.IndexAny(name, ",;"); i >= 0 {
		name = name[:i]
	}
	rest := s[1+len(name):]

	if after, ok := strings.CutPrefix(rest, ",init="); ok {
		url, tail, err := cutEscaped(after)
		if err != nil {
			return nil, "", err
		}
		tail, found := strings.CutPrefix(tail, ";")
		if !found {
			return nil, "", errors.New("unterminated header entry")
		}
		return &EDLSegment{URL: url, Init: true}, tail, nil
	}

	rest, found := strings.CutPrefix(rest, ";")
	if !found {
		return nil, "", errors.New("unterminated header entry")
	}
	return nil, rest, nil
}

// cutEscaped consumes one "%<byte-length>%<raw-url>" envelope.
func cutEscaped(s string) (string, string, error) {
	if !strings.HasPrefix(s, "%") {
		return "", "", fmt.Errorf("expected escape envelope at %q", s)
	}
	raw, rest, found := strings.Cut(s[1:], "%")
	if !found {
		return "", "", errors.New("unterminated escape envelope")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return "", "", fmt.Errorf("bad envelope length %q", raw)
	}
	if n > len(rest) {
		return "", "", fmt.Errorf("envelope length %d exceeds remaining input", n)
	}
	return rest[:n], rest[n:], nil
}
