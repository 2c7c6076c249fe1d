package extraction

import "github.com/samber/mo"

// Capabilities describes what the host player can do natively.
type Capabilities struct {
	// NativeManifests reports whether the player can demux DASH/HLS
	// manifests itself, making fragment stitching unnecessary.
	NativeManifests bool
}

// Overrides carries settings the caller configured explicitly. An
// inferred value from the extraction result never clobbers a present
// override; the host applies the override itself.
type Overrides struct {
	Start       mo.Option[float64]
	AspectRatio mo.Option[float64]
	BitrateKbps mo.Option[float64]
	UserAgent   mo.Option[string]
	Headers     mo.Option[[]string]
}
