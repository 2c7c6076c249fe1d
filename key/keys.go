// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Extraction Tool - these keys configure the yt-dlp subprocess invocation.
const (
	YtdlPath         = "ytdl.path"
	YtdlFormat       = "ytdl.format"
	YtdlRawArgs      = "ytdl.raw_args"
	YtdlExclude      = "ytdl.exclude"
	YtdlTimeoutSecs  = "ytdl.timeout"
	YtdlUseManifests = "ytdl.use_manifests"
	YtdlSubFormat    = "ytdl.sub_format"
)

// Player - these keys configure the mpv host collaborator.
const (
	PlayerPath = "player.path"
)

// History Tracking - these keys configure the persistence of playback progress.
const (
	HistorySaveOnPlay = "history.save_on_play"
)

// Caching - these keys control the reuse of extraction results.
const (
	CacheExtractions = "cache.extractions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging - these keys control the structured log backend.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Behavior - these keys define generic command-line interaction settings.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
