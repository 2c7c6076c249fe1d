package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/util"
)

// Timestamp patterns tried in order: H:MM:SS first, then M:SS.
var (
	timestampLongRe  = regexp.MustCompile(`(?P<h>\d+):(?P<m>\d\d):(?P<s>\d\d)`)
	timestampShortRe = regexp.MustCompile(`(?P<m>\d\d?):(?P<s>\d\d)`)
)

// ChaptersFromText scans free text for timestamp-prefixed lines and
// derives ordered chapter markers. The chapter title is the full
// original line. Lines whose time is not strictly less than the total
// duration are discarded. Ties between equal timestamps may reorder
// relative to input order since the sort is not stable.
func ChaptersFromText(text string, totalDuration float64) []extraction.Chapter {
	var chapters []extraction.Chapter

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		var seconds float64
		if groups := util.ReGroups(timestampLongRe, line); len(groups) > 0 {
			h, _ := strconv.Atoi(groups["h"])
			m, _ := strconv.Atoi(groups["m"])
			s, _ := strconv.Atoi(groups["s"])
			seconds = float64(h*3600 + m*60 + s)
		} else if groups := util.ReGroups(timestampShortRe, line); len(groups) > 0 {
			m, _ := strconv.Atoi(groups["m"])
			s, _ := strconv.Atoi(groups["s"])
			seconds = float64(m*60 + s)
		} else {
			continue
		}

		if seconds >= totalDuration {
			continue
		}

		chapters = append(chapters, extraction.Chapter{Time: seconds, Title: line})
	}

	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].Time < chapters[j].Time
	})

	return chapters
}

// ChaptersFromRecords converts pre-parsed chapter records, keeping their
// original order and synthesizing a "Chapter NN" title for records
// without one.
func ChaptersFromRecords(records []extraction.RawChapter) []extraction.Chapter {
	chapters := make([]extraction.Chapter, 0, len(records))
	for i, record := range records {
		title := record.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %02d", i+1)
		}
		chapters = append(chapters, extraction.Chapter{Time: record.StartTime, Title: title})
	}
	return chapters
}
