package resolve

import (
	"regexp"
	"strings"

	"github.com/ytplan-cli/ytplan/log"
)

// safeSchemes is the fixed whitelist of URL schemes that may appear in a
// finalized plan. Anything else is rejected before it reaches output.
var safeSchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"ftp":    {},
	"ftps":   {},
	"rtmp":   {},
	"rtmps":  {},
	"rtmpe":  {},
	"rtmpt":  {},
	"rtmpts": {},
	"data":   {},
}

var schemeRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://`)

// HasScheme reports whether the string starts with a recognizable
// scheme:// prefix.
func HasScheme(url string) bool {
	return schemeRe.MatchString(url)
}

// SafeURL reports whether a url's scheme is whitelisted. A url with no
// recognizable scheme is unsafe. Rejection is advisory: the caller
// decides whether it aborts the whole resolution or just one track.
func SafeURL(url string) bool {
	m := schemeRe.FindStringSubmatch(url)
	if m == nil {
		log.Warnf("ignoring url without a scheme: %q", url)
		return false
	}
	if _, ok := safeSchemes[strings.ToLower(m[1])]; !ok {
		log.Warnf("ignoring unsafe url: %q", url)
		return false
	}
	return true
}
