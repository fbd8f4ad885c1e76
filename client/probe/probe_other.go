//go:build !linux

package probe

// Platforms without a probe implementation report unknown; the reporter still
// sends heartbeats with those fields empty.

func (System) IdleSeconds() (int64, bool) {
	return 0, false
}

func (System) NowPlaying() (MusicState, bool) {
	return MusicState{}, false
}
