package history

import "fmt"

// SavedItem represents a single playback entry preserved in the user's history.
type SavedItem struct {
	URL               string  `json:"url"`
	Title             string  `json:"title"`
	PositionSecs      int     `json:"position_secs"`
	DurationSecs      int     `json:"duration_secs"`
	WatchedPercentage float64 `json:"watched_percentage"`
}

func (s *SavedItem) encode() string {
	return s.URL
}

func (s *SavedItem) String() string {
	if s.Title == "" {
		return s.URL
	}
	return fmt.Sprintf("%s (%.0f%%)", s.Title, s.WatchedPercentage)
}
