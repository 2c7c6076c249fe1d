package ytdl

import (
	"fmt"
	"regexp"
	"strings"
)

// Exclusions is an immutable set of url patterns that bypass the
// extraction tool entirely. It is built once from configuration and
// never mutated during resolution calls, so it is safe to share.
type Exclusions struct {
	patterns []*regexp.Regexp
}

// CompileExclusions compiles configured patterns. Each pattern is a
// regular expression matched against the url with its scheme stripped.
func CompileExclusions(patterns []string) (*Exclusions, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return &Exclusions{patterns: compiled}, nil
}

// Match reports whether the url matches any exclusion pattern.
func (e *Exclusions) Match(url string) bool {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	for _, re := range e.patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
