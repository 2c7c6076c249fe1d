// Package resolve turns an extraction result into a Playback Plan.
//
// It is a small state-free compiler: one call consumes an immutable
// extraction.Result and produces a fully-resolved, safety-checked
// extraction.Plan (or a list of deferred playlist entries). No state is
// shared across calls, so a single Resolver may serve concurrent
// resolutions as long as each operates on its own result.
package resolve

import (
	"github.com/samber/mo"
	"github.com/ytplan-cli/ytplan/extraction"
)

// Resolver resolves extraction results against a fixed set of host
// capabilities and caller overrides.
type Resolver struct {
	caps      extraction.Capabilities
	overrides extraction.Overrides
}

// New creates a Resolver. Both arguments are copied and never mutated.
func New(caps extraction.Capabilities, overrides extraction.Overrides) *Resolver {
	return &Resolver{caps: caps, overrides: overrides}
}

// applyOverrides writes caller-configured values into the plan. They
// take precedence over anything derived from the extraction result.
func (r *Resolver) applyOverrides(plan *extraction.Plan) {
	if start, ok := r.overrides.Start.Get(); ok {
		plan.Start = mo.Some(start)
	}

	if ratio, ok := r.overrides.AspectRatio.Get(); ok {
		plan.AspectRatio = mo.Some(ratio)
	}

	if bitrate, ok := r.overrides.BitrateKbps.Get(); ok {
		plan.BitrateKbps = mo.Some(bitrate)
	}

	if agent, ok := r.overrides.UserAgent.Get(); ok {
		plan.UserAgent = agent
	}

	if headers, ok := r.overrides.Headers.Get(); ok {
		plan.Headers = headers
	}
}
