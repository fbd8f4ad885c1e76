//go:build linux

package probe

import (
	"os/exec"
	"strconv"
	"strings"
)

// IdleSeconds shells out to xprintidle, which reports X11 idle time in
// milliseconds.
func (System) IdleSeconds() (int64, bool) {
	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, false
	}
	return ms / 1000, true
}

// NowPlaying asks playerctl for every player's status and picks the first one
// that is actually playing, falling back to the first non-empty session.
func (System) NowPlaying() (MusicState, bool) {
	out, err := exec.Command(
		"playerctl", "-a", "metadata",
		"--format", "{{status}}\t{{title}}\t{{artist}}\t{{playerName}}",
	).Output()
	if err != nil {
		return MusicState{}, false
	}

	var first *MusicState
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		state := MusicState{Playing: strings.EqualFold(part(parts, 0), "Playing")}
		state.Title = cleanText(part(parts, 1))
		state.Artist = cleanText(part(parts, 2))
		state.Source = cleanText(part(parts, 3))
		if state.Playing {
			return state, true
		}
		if first == nil {
			s := state
			first = &s
		}
	}
	if first != nil {
		return *first, true
	}
	return MusicState{}, false
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
