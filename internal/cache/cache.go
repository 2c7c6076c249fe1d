// Package cache provides localized filesystem-based caching for transient extraction results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytplan-cli/ytplan/filesystem"
	"github.com/ytplan-cli/ytplan/where"
)

// TTL is deliberately short: extracted stream urls are commonly signed
// and expire within minutes.
const TTL = 15 * time.Minute

func getDir() string {
	dir := filepath.Join(where.Cache(), "extractions")
	_ = filesystem.API().MkdirAll(dir, 0755)
	return dir
}

// GenerateKey generates a deterministic SHA-256 hash from a url and format pair for use as a cache identifier.
func GenerateKey(url, format string) string {
	sanitized := strings.TrimSpace(url) + "\x00" + format
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read attempts to retrieve and deserialize a cached object if it exists and has not exceeded its TTL.
func Read(key string, target interface{}) bool {
	path := filepath.Join(getDir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// Decode directly into the target interface.
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(target); err != nil {
		return false
	}
	return true
}

// Write persists a serializable object to the cache using an atomic file swap to ensure data integrity.
func Write(key string, data interface{}) error {
	path := filepath.Join(getDir(), key)
	tmpPath := path + ".tmp"

	f, err := filesystem.API().Create(tmpPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(data); err != nil {
		f.Close()
		return err
	}
	f.Close()

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage initializes an asynchronous background task to prune expired cache entries from the filesystem.
func CollectGarbage() {
	go func() {
		dir := getDir()
		infos, err := filesystem.API().ReadDir(dir)
		if err != nil {
			return
		}

		for _, info := range infos {
			if info.IsDir() {
				continue
			}

			if time.Since(info.ModTime()) > TTL {
				_ = filesystem.API().Remove(filepath.Join(dir, info.Name()))
			}
		}
	}()
}
