package resolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/mo"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/log"
)

// ErrNoPlayableURL is returned when a result offers no usable source.
var ErrNoPlayableURL = errors.New("no playable URL found")

// headerAllowList names the request headers propagated into a plan
// besides the user agent.
var headerAllowList = []string{"Cookie", "Referer", "X-Forwarded-For"}

// One resolves a single (non-playlist) extraction result into a
// Playback Plan, choosing exactly one of three mutually exclusive
// strategies: native adaptive manifest, split tracks, or single track.
func (r *Resolver) One(res *extraction.Result) (*extraction.Plan, error) {
	plan := &extraction.Plan{}
	var streamURL string
	var maxBitrate float64

	formats := res.RequestedFormats

	switch {
	case r.caps.NativeManifests && manifestCandidate(res):
		manifestURL := res.ManifestURL
		if len(formats) > 0 && formats[0].ManifestURL != "" {
			manifestURL = formats[0].ManifestURL
		}
		if manifestURL == "" {
			return nil, errors.New("no manifest URL found in extraction result")
		}
		if !SafeURL(manifestURL) {
			return nil, fmt.Errorf("unsafe manifest url: %q", manifestURL)
		}
		streamURL = manifestURL

		if len(formats) > 0 {
			for _, track := range formats {
				if bitrate, ok := track.Bitrate.Get(); ok && bitrate > maxBitrate {
					maxBitrate = bitrate
				}
			}
		} else if bitrate, ok := res.Bitrate.Get(); ok {
			maxBitrate = bitrate
		}

	case len(formats) > 0:
		for _, track := range formats {
			trackURL, err := EDLFromFragments(track.Fragments, track.TrackProtocol(), res.IsLive, track.FragmentBaseURL)
			if err != nil {
				log.Debugf("track %s: no EDL synthesized (%v), using direct url", track.FormatID, err)
				if !SafeURL(track.URL) {
					return nil, fmt.Errorf("unsafe track url: %q", track.URL)
				}
				trackURL = track.URL
			}

			switch {
			case track.HasVideo():
				// Later video tracks overwrite the primary stream slot.
				streamURL = trackURL
			case track.HasAudio():
				plan.Audio = append(plan.Audio, extraction.AudioTrack{
					URL:   trackURL,
					Label: track.FormatNote,
				})
			}
		}

	case res.URL != "":
		edl, err := EDLFromFragments(res.Fragments, res.StreamProtocol(), res.IsLive, res.FragmentBaseURL)
		if err == nil {
			streamURL = edl
		} else {
			if !SafeURL(res.URL) {
				return nil, fmt.Errorf("unsafe stream url: %q", res.URL)
			}
			streamURL = res.URL
		}
		r.setHTTPHeaders(plan, res.HTTPHeaders)

	default:
		return nil, ErrNoPlayableURL
	}

	if streamURL == "" {
		return nil, ErrNoPlayableURL
	}
	plan.StreamURL = streamURL

	// The title is an explicit overwrite, even when empty.
	plan.Title = res.Title

	if maxBitrate > 0 && r.overrides.BitrateKbps.IsAbsent() {
		plan.BitrateKbps = mo.Some(maxBitrate)
	}

	r.addSubtitles(plan, res.RequestedSubtitles)

	switch {
	case len(res.Chapters) > 0:
		plan.Chapters = ChaptersFromRecords(res.Chapters)
	case res.Description != "" && res.Duration.IsPresent():
		plan.Chapters = ChaptersFromText(res.Description, res.Duration.MustGet())
	}

	if start, ok := res.StartTime.Get(); ok && r.overrides.Start.IsAbsent() {
		log.Debugf("setting start to %v secs", start)
		plan.Start = mo.Some(start)
	}

	// Aspect ratio override for anamorphic video.
	if ratio, ok := res.StretchedRatio.Get(); ok && r.overrides.AspectRatio.IsAbsent() {
		plan.AspectRatio = mo.Some(ratio)
	}

	if res.StreamProtocol() == extraction.ProtocolRTMP {
		plan.RTMPParams = rtmpParams(streamURL, res)
	}

	r.applyOverrides(plan)

	return plan, nil
}

// manifestCandidate reports whether the result (or its first requested
// format) points at an adaptive manifest the player could demux itself.
func manifestCandidate(res *extraction.Result) bool {
	var first extraction.Format
	if len(res.RequestedFormats) > 0 {
		first = res.RequestedFormats[0]
	}
	if first.ManifestURL == "" && res.ManifestURL == "" {
		return false
	}

	protocol := first.TrackProtocol()
	if first.Protocol == "" {
		protocol = res.StreamProtocol()
	}
	return protocol == extraction.ProtocolDASH || protocol == extraction.ProtocolHLS
}

// setHTTPHeaders propagates the user agent and allow-listed headers into
// the plan, skipping fields the caller configured explicitly.
func (r *Resolver) setHTTPHeaders(plan *extraction.Plan, headers map[string]string) {
	if headers == nil {
		return
	}

	if userAgent := headers["User-Agent"]; userAgent != "" && r.overrides.UserAgent.IsAbsent() {
		plan.UserAgent = userAgent
	}

	var propagated []string
	for _, name := range headerAllowList {
		if value := headers[name]; value != "" {
			propagated = append(propagated, name+": "+value)
		}
	}
	if len(propagated) > 0 && r.overrides.Headers.IsAbsent() {
		plan.Headers = propagated
	}
}

// addSubtitles attaches one track per language, preferring inline data
// (wrapped as an addressable in-memory resource) over a remote url.
func (r *Resolver) addSubtitles(plan *extraction.Plan, subtitles map[string]extraction.Subtitle) {
	languages := make([]string, 0, len(subtitles))
	for lang := range subtitles {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	for _, lang := range languages {
		sub := subtitles[lang]

		var source string
		switch {
		case sub.Data != "":
			source = "memory://" + sub.Data
		case sub.URL != "" && SafeURL(sub.URL):
			source = sub.URL
		default:
			log.Debugf("no subtitle data/url for [%s]", lang)
			continue
		}

		log.Debugf("adding subtitle [%s]", lang)
		plan.Subtitles = append(plan.Subtitles, extraction.SubtitleTrack{
			URL:  source,
			Lang: lang,
			Ext:  sub.Ext,
		})
	}
}

// rtmpParams builds the ordered push-stream parameter list, including
// only pairs where both key and value are non-empty.
func rtmpParams(streamURL string, res *extraction.Result) []extraction.RTMPParam {
	var params []extraction.RTMPParam
	add := func(key, value string) {
		if key == "" || value == "" {
			return
		}
		params = append(params, extraction.RTMPParam{Key: key, Value: value})
	}

	add("rtmp_tcurl", streamURL)
	add("rtmp_pageurl", res.PageURL)
	add("rtmp_playpath", res.PlayPath)
	add("rtmp_swfverify", res.PlayerURL)
	add("rtmp_swfurl", res.PlayerURL)
	add("rtmp_app", res.App)
	return params
}
