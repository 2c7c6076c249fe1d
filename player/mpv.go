package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/ytplan-cli/ytplan/extraction"
	"github.com/ytplan-cli/ytplan/key"
	"github.com/ytplan-cli/ytplan/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements the Player interface using mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	tickerStop chan struct{} // signals ticker to stop
	mu         sync.Mutex    // Protects socket writes
}

// NewMPV creates a new MPV player instance (does not start playback).
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
	}
}

// Load starts playback of the given plan: it launches mpv with the
// plan's stream url and per-item options, waits for the IPC socket,
// then attaches the plan's audio and subtitle tracks over IPC.
func (m *MPV) Load(plan *extraction.Plan, extraArgs ...string) error {
	if err := validMediaTarget(plan.StreamURL); err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	// Generate a random socket path using os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/)
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("ytplan-%x.sock", randomBytes))
	}

	args := m.buildArgs(plan)
	args = append(args, extraArgs...)
	args = append(args, plan.StreamURL)

	m.cmd = exec.Command(viper.GetString(key.PlayerPath), args...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()

	// Disable standard pipes to prevent resource leaks.
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	// Background goroutine to reap the process and prevent zombies
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	// Wait for the IPC socket to become available
	if err := m.waitForSocket(); err != nil {
		// If socket never became ready, kill the orphaned process
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
				// Already exited
			default:
				log.Warnf("killing player: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("player socket not ready: %w", err)
	}

	return m.attachTracks(plan)
}

// buildArgs maps the plan's per-item settings onto mpv command-line
// options. Only options derived from the plan are passed, so the
// user's mpv.conf stays in charge of rendering and decoding.
func (m *MPV) buildArgs(plan *extraction.Plan) []string {
	title := sanitizeTitle(plan.Title)

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title), // Some mpv builds only respect --title
		"--force-window=yes",
		"--idle=yes",
	}

	if start, ok := plan.Start.Get(); ok {
		args = append(args, fmt.Sprintf("--start=%s", strconv.FormatFloat(start, 'f', -1, 64)))
	}

	if ratio, ok := plan.AspectRatio.Get(); ok {
		args = append(args, fmt.Sprintf("--video-aspect-override=%s", strconv.FormatFloat(ratio, 'f', -1, 64)))
	}

	if plan.UserAgent != "" {
		args = append(args, fmt.Sprintf("--user-agent=%s", plan.UserAgent))
	}

	if len(plan.Headers) > 0 {
		escaped := make([]string, 0, len(plan.Headers))
		for _, header := range plan.Headers {
			// Commas delimit header fields; escape them inside values.
			escaped = append(escaped, strings.ReplaceAll(header, ",", "%2C"))
		}
		args = append(args, fmt.Sprintf("--http-header-fields=%s", strings.Join(escaped, ",")))
	}

	if bitrate, ok := plan.BitrateKbps.Get(); ok {
		args = append(args, fmt.Sprintf("--hls-bitrate=%d", int(bitrate*1000)))
	}

	if len(plan.RTMPParams) > 0 {
		pairs := make([]string, 0, len(plan.RTMPParams))
		for _, param := range plan.RTMPParams {
			pairs = append(pairs, fmt.Sprintf("%s=%q", param.Key, param.Value))
		}
		args = append(args, fmt.Sprintf("--stream-lavf-o=%s", strings.Join(pairs, ",")))
	}

	return args
}

// attachTracks adds the plan's audio and subtitle tracks via repeatable
// IPC commands.
func (m *MPV) attachTracks(plan *extraction.Plan) error {
	for _, audio := range plan.Audio {
		log.Debugf("adding audio track %q", audio.Label)
		if _, err := m.sendCommand([]interface{}{"audio-add", audio.URL, "auto", audio.Label}); err != nil {
			return fmt.Errorf("add audio track: %w", err)
		}
	}

	for _, sub := range plan.Subtitles {
		log.Debugf("adding subtitle track [%s]", sub.Lang)
		if _, err := m.sendCommand([]interface{}{"sub-add", sub.URL, "auto", sub.Lang, sub.Lang}); err != nil {
			return fmt.Errorf("add subtitle track [%s]: %w", sub.Lang, err)
		}
	}

	return nil
}

// ApplyChapters delivers chapter markers to the player. This is the
// second phase of the handoff: the chapter-list property only becomes
// writable once the stream is open.
func (m *MPV) ApplyChapters(chapters []extraction.Chapter) error {
	if len(chapters) == 0 {
		return nil
	}

	list := make([]map[string]interface{}, 0, len(chapters))
	for _, chapter := range chapters {
		list = append(list, map[string]interface{}{
			"title": chapter.Title,
			"time":  chapter.Time,
		})
	}

	_, err := m.sendCommand([]interface{}{"set_property", "chapter-list", list})
	return err
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		// Check if process already exited
		select {
		case <-m.exited:
			return fmt.Errorf("player exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// GetTimePos returns the current playback position in seconds.
func (m *MPV) GetTimePos() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// GetDuration returns the total duration of the current media in seconds.
func (m *MPV) GetDuration() (float64, error) {
	return m.getFloatProperty("duration")
}

// GetPercentWatched returns the percentage of the media that has been watched.
func (m *MPV) GetPercentWatched() (float64, error) {
	pos, err := m.GetTimePos()
	if err != nil {
		return 0, err
	}

	dur, err := m.GetDuration()
	if err != nil || dur <= 0 {
		return 0, err
	}

	return (pos / dur) * 100, nil
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	// Fast check: process already exited?
	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// StartIPCTicker starts a background ticker that polls the player for time-pos
// and calls the given callback every second.
func (m *MPV) StartIPCTicker(callback func(timePos int, duration int)) {
	if m.tickerStop != nil {
		// Ticker already running
		return
	}

	m.tickerStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-m.tickerStop:
				return
			case <-m.exited:
				// Player exited, stop ticker
				m.tickerStop = nil
				return
			case <-ticker.C:
				if !m.IsRunning() {
					continue
				}

				pos, err := m.GetTimePos()
				if err != nil {
					continue
				}

				dur, err := m.GetDuration()
				if err != nil {
					// Duration might be unknown for streams, just send 0 or keep polling
					dur = 0
				}

				callback(int(pos), int(dur))
			}
		}
	}()
}

// StopIPCTicker stops the background ticker if it's running.
func (m *MPV) StopIPCTicker() {
	if m.tickerStop != nil {
		close(m.tickerStop)
		m.tickerStop = nil
	}
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.StopIPCTicker()

	if m.socketPath == "" {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]interface{}{"quit"})

	// Wait for process to exit (with timeout)
	select {
	case <-m.exited:
		// Clean exit
	case <-time.After(3 * time.Second):
		// Force kill if graceful quit didn't work
		_ = killProcess(m.cmd)
	}

	// Clean up the socket file
	_ = os.Remove(m.socketPath)

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// validMediaTarget checks that a stream address is safe to pass on the
// player command line. The resolver has already scheme-checked every
// url embedded in the plan; this guards against flag injection only.
func validMediaTarget(target string) error {
	t := strings.TrimSpace(target)
	if t == "" {
		return fmt.Errorf("empty stream URL")
	}

	if strings.ContainsAny(t, "\x00\n\r") {
		return fmt.Errorf("invalid control characters in stream URL")
	}

	// URLs must not start with - (looks like a flag)
	if strings.HasPrefix(t, "-") {
		return fmt.Errorf("stream URL must not start with '-'")
	}

	return nil
}

// sanitizeTitle cleans up the title for the player command line.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	// Remove null bytes
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
