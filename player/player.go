// Package player applies resolved Playback Plans to a media playback
// engine. The primary implementation targets mpv via its JSON-IPC
// protocol.
//
// Handoff happens in two phases: Load starts playback and attaches
// audio/subtitle tracks, while chapters are delivered through a
// separate ApplyChapters call once the stream is open, since the
// chapter list is only writable post-open.
package player

import "github.com/ytplan-cli/ytplan/extraction"

// Player encapsulates the required capabilities for a playback backend.
type Player interface {
	// Load starts playback of a resolved plan. Extra arguments are
	// passed through to the engine verbatim.
	Load(plan *extraction.Plan, extraArgs ...string) error

	// ApplyChapters delivers chapter markers after the stream is open.
	ApplyChapters(chapters []extraction.Chapter) error

	// GetTimePos retrieves the current absolute playback position in seconds.
	GetTimePos() (float64, error)

	// GetDuration retrieves the total length of the active media in seconds.
	GetDuration() (float64, error)

	// GetPercentWatched calculates the relative playback completion percentage (0-100).
	GetPercentWatched() (float64, error)

	// Seek transitions playback to an absolute timestamp in seconds.
	Seek(seconds float64) error

	// IsRunning validates the liveness of the underlying playback process.
	IsRunning() bool

	// StartIPCTicker initializes a background task polling playback metrics,
	// invoking the callback at regular intervals with current state data.
	StartIPCTicker(callback func(timePos int, duration int))

	// StopIPCTicker terminates the background polling task.
	StopIPCTicker()

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}

	// Socket retrieves the identifier for the IPC channel.
	Socket() string

	// Close terminates the playback engine and releases all resources.
	Close() error
}
