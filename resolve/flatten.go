package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/log"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Flattened is the outcome of resolving a multi-entry result: either a
// single combined plan or a list of entries deferred for re-extraction.
// Exactly one of the two fields is set.
type Flattened struct {
	Plan     *extraction.Plan
	Deferred []extraction.DeferredEntry
}

// Flatten classifies a multi-entry extraction result as a
// self-redirecting multi-arc video, a single-entry redirect, or a
// genuine multi-title playlist, and produces the corresponding outcome.
func (r *Resolver) Flatten(res *extraction.Result) (*Flattened, error) {
	entries := res.Entries
	if len(entries) == 0 {
		return nil, errors.New("empty playlist")
	}

	// Heuristic: the first entry pointing back at its parent's page means
	// the "playlist" is really one logical video served in pieces.
	first := entries[0]
	selfRedirecting := first.Type != "url_transparent" &&
		first.WebpageURL != "" && first.WebpageURL == res.WebpageURL

	switch {
	case selfRedirecting && len(entries) > 1 &&
		first.StreamProtocol() == extraction.ProtocolHLS && first.URL != "":
		log.Infof("multi-arc video detected, joining %d entries", len(entries))
		return r.flattenMultiArc(res)

	case selfRedirecting && len(entries) == 1:
		log.Debugf("playlist with single entry detected")
		plan, err := r.One(first)
		if err != nil {
			return nil, err
		}
		return &Flattened{Plan: plan}, nil

	default:
		var deferred []extraction.DeferredEntry
		for _, entry := range entries {
			site := entry.URL

			// Some extractors return full info for every clip with urls
			// pointing directly at media files. Prefer the entry's page
			// url so each deferred item re-resolves cleanly.
			if entry.WebpageURL != "" && !selfRedirecting {
				site = entry.WebpageURL
			}

			if !HasScheme(site) {
				// Opaque identifier from flat extraction; defer it to the
				// extraction tool instead of playing it directly.
				site = "ytdl://" + site
			} else if !SafeURL(site) {
				log.Warnf("skipping unsafe playlist entry: %q", site)
				continue
			}

			deferred = append(deferred, extraction.DeferredEntry{
				URL:   site,
				Title: whitespaceRe.ReplaceAllString(entry.Title, " "),
			})
		}

		if len(deferred) == 0 {
			return nil, errors.New("nothing playable in playlist")
		}
		return &Flattened{Deferred: deferred}, nil
	}
}

// flattenMultiArc joins the entry list into one stitched plan: each
// entry's own stream becomes one fragment of a synthesized playlist.
func (r *Resolver) flattenMultiArc(res *extraction.Result) (*Flattened, error) {
	fragments := make([]extraction.Fragment, 0, len(res.Entries))
	for _, entry := range res.Entries {
		fragments = append(fragments, extraction.Fragment{
			URL:      entry.URL,
			Duration: entry.Duration,
		})
	}

	edl, err := EDLFromFragments(fragments, extraction.ProtocolUnknown, false, "")
	if err != nil {
		return nil, fmt.Errorf("joining multi-arc entries: %w", err)
	}
	log.Debugf("multi-arc EDL: %s", edl)

	plan := &extraction.Plan{StreamURL: edl, Title: res.Title}

	// Headers cannot vary per fragment, so the first entry's apply to all.
	r.setHTTPHeaders(plan, res.Entries[0].HTTPHeaders)

	plan.Subtitles = r.multiArcSubtitles(res.Entries)

	r.applyOverrides(plan)

	return &Flattened{Plan: plan}, nil
}

// multiArcSubtitles synthesizes one combined subtitle timeline per
// language appearing in any entry. Entries without that language
// contribute a blank filler segment; every segment is tagged with its
// entry's duration for timeline alignment. A language is skipped when
// any entry lacks a duration.
func (r *Resolver) multiArcSubtitles(entries []*extraction.Result) []extraction.SubtitleTrack {
	exts := make(map[string]string)
	var languages []string
	for _, entry := range entries {
		for lang, sub := range entry.RequestedSubtitles {
			if _, seen := exts[lang]; !seen {
				exts[lang] = sub.Ext
				languages = append(languages, lang)
			}
		}
	}
	sort.Strings(languages)

	var tracks []extraction.SubtitleTrack
	for _, lang := range languages {
		var parts []string
		aligned := true

		for _, entry := range entries {
			duration, ok := entry.Duration.Get()
			if !ok {
				log.Warnf("entry without duration, skipping combined [%s] subtitles", lang)
				aligned = false
				break
			}

			segment := "memory://WEBVTT"
			if sub, found := entry.RequestedSubtitles[lang]; found &&
				sub.URL != "" && SafeURL(sub.URL) {
				segment = sub.URL
			}
			parts = append(parts, edlEscape(segment)+",length="+formatSeconds(duration))
		}

		if !aligned {
			continue
		}

		subfile := edlScheme + strings.Join(parts, ";") + ";"
		log.Debugf("[%s] subtitle EDL: %s", lang, subfile)
		tracks = append(tracks, extraction.SubtitleTrack{
			URL:  subfile,
			Lang: lang,
			Ext:  exts[lang],
		})
	}

	return tracks
}
