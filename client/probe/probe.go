// Package probe reads local activity and now-playing state. Probes are
// best-effort: any failure degrades to "unknown" and the reporter sends its
// payload with those fields absent.
package probe

import "strings"

// MusicState is one observation of the local media session. Empty strings
// mean the field is unknown.
type MusicState struct {
	Playing bool
	Title   string
	Artist  string
	Source  string
}

// Prober samples the local machine.
type Prober interface {
	// IdleSeconds returns the seconds since the last user input, or ok=false
	// when idle time cannot be determined on this platform.
	IdleSeconds() (int64, bool)
	// NowPlaying returns the current media session, or ok=false when there is
	// none or the platform query failed.
	NowPlaying() (MusicState, bool)
}

// System is the platform prober used by the real reporter.
type System struct{}

func cleanText(s string) string {
	return strings.TrimSpace(s)
}
