// Package history provides the implementation for tracking and persisting playback progress.
package history

import (
	"github.com/metafates/gache"
	"github.com/ytplan-cli/ytplan/filesystem"
	"github.com/ytplan-cli/ytplan/where"
)

// cacher provides an abstracted, disk-backed registry for playback progress records.
var cacher = gache.New[map[string]*SavedItem](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical playback records from the persistent store.
func Get() (map[string]*SavedItem, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedItem), nil
	}
	return cached, nil
}

// Save persists the playback progress of a specific item to the history registry.
func Save(item *SavedItem) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	// Idempotency: Maintain the maximum observed playback percentage to prevent regressions on re-watch.
	if existing, exists := saved[item.encode()]; exists {
		if item.WatchedPercentage < existing.WatchedPercentage {
			item.WatchedPercentage = existing.WatchedPercentage
			item.PositionSecs = existing.PositionSecs
		}
	}

	saved[item.encode()] = item

	return cacher.Set(saved)
}

// Resume returns the saved playback record for a url, if any.
func Resume(url string) (*SavedItem, bool, error) {
	saved, err := Get()
	if err != nil {
		return nil, false, err
	}

	item, ok := saved[url]
	return item, ok, nil
}

// Remove permanently deletes a specific playback record from the history registry.
func Remove(item *SavedItem) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, item.encode())
	return cacher.Set(saved)
}
