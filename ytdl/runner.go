// Package ytdl invokes the external media-extraction tool and parses its
// JSON output into an extraction.Result.
//
// Argument construction, subprocess failure classification and JSON
// parsing all live here; the resolution core only ever sees a
// result-or-error value.
package ytdl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/internal/cache"
	"github.com/ytplan-cli/ytplan/key"
	"github.com/ytplan-cli/ytplan/log"
)

// DeferredScheme prefixes opaque playlist entry identifiers that must be
// re-resolved by the extraction tool rather than played directly.
const DeferredScheme = "ytdl://"

// Runner invokes the extraction tool with a fixed argument template.
// It is immutable after construction.
type Runner struct {
	path       string
	format     string
	subFormat  string
	rawArgs    []string
	timeout    time.Duration
	useCache   bool
	exclusions *Exclusions
}

// NewRunner builds a Runner from the global configuration. The
// exclusion list is compiled once here and never mutated afterwards.
func NewRunner() (*Runner, error) {
	exclusions, err := CompileExclusions(viper.GetStringSlice(key.YtdlExclude))
	if err != nil {
		return nil, fmt.Errorf("compile exclusion list: %w", err)
	}

	return &Runner{
		path:       viper.GetString(key.YtdlPath),
		format:     viper.GetString(key.YtdlFormat),
		subFormat:  viper.GetString(key.YtdlSubFormat),
		rawArgs:    viper.GetStringSlice(key.YtdlRawArgs),
		timeout:    time.Duration(viper.GetInt(key.YtdlTimeoutSecs)) * time.Second,
		useCache:   viper.GetBool(key.CacheExtractions),
		exclusions: exclusions,
	}, nil
}

// Path returns the configured tool binary.
func (r *Runner) Path() string {
	return r.path
}

// Available reports whether the extraction tool binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.path)
	return err == nil
}

// Excluded reports whether a url is configured to bypass extraction.
func (r *Runner) Excluded(url string) bool {
	return r.exclusions.Match(url)
}

// Extract runs the extraction tool for one url and parses its JSON
// output. A ytdl:// prefix from a deferred playlist entry is stripped
// first. All failure modes are classified into a single error value.
func (r *Runner) Extract(ctx context.Context, mediaURL string) (*extraction.Result, error) {
	mediaURL = strings.TrimPrefix(mediaURL, DeferredScheme)

	cacheKey := cache.GenerateKey(mediaURL, r.format)
	if r.useCache {
		var cached extraction.Result
		if cache.Read(cacheKey, &cached) {
			log.Debugf("extraction cache hit for %s", mediaURL)
			return &cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := r.buildArgs(mediaURL)
	log.Debugf("running %s %s", r.path, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debugf("extraction took %v", time.Since(start))

	if err != nil {
		return nil, classify(r.path, err, ctx, &stderr)
	}

	var result extraction.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse %s output: %w", r.path, err)
	}

	// Live results carry session urls; caching those buys nothing.
	if r.useCache && !result.IsLive {
		if err := cache.Write(cacheKey, &result); err != nil {
			log.Warnf("caching extraction result: %v", err)
		}
	}

	return &result, nil
}

// buildArgs assembles the fixed argument template plus configured
// passthrough arguments for one invocation.
func (r *Runner) buildArgs(mediaURL string) []string {
	args := []string{
		"--no-warnings",
		"-J",
		"--flat-playlist",
		"--sub-format", r.subFormat,
		"--format", r.format,
	}
	args = append(args, r.rawArgs...)
	return append(args, "--", mediaURL)
}

// classify maps the ways the subprocess can fail onto one message each:
// tool not found, killed (timeout or signal), or non-zero exit.
func classify(path string, err error, ctx context.Context, stderr *bytes.Buffer) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("extraction tool not found: %s", path)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out and was killed", path)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == -1 {
			return fmt.Errorf("%s was killed", path)
		}
		return fmt.Errorf("%s exited with status %d: %s",
			path, exitErr.ExitCode(), stderrTail(stderr))
	}

	return fmt.Errorf("running %s: %w", path, err)
}

// stderrTail extracts the last non-empty stderr line for error messages.
func stderrTail(stderr *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "(no output)"
}
