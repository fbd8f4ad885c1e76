package model

// Heartbeat is the report a device pushes to POST /heartbeat.
// Music fields are optional; a heartbeat without them still refreshes the
// device's presence snapshot.
type Heartbeat struct {
	DeviceID     string  `json:"device_id"`
	DeviceName   string  `json:"device_name"`
	Online       bool    `json:"online"`
	IdleSeconds  *int64  `json:"idle_seconds,omitempty"`
	MusicPlaying *bool   `json:"music_playing,omitempty"`
	MusicTitle   *string `json:"music_title,omitempty"`
	MusicArtist  *string `json:"music_artist,omitempty"`
	MusicSource  *string `json:"music_source,omitempty"`
}

// DeviceRecord is the stored per-device row.
// ManualOffline is sticky: heartbeats never touch it, only the status-update
// endpoint may flip it.
type DeviceRecord struct {
	DeviceID       string
	DeviceName     string
	ReportedOnline bool
	LastSeen       int64 // unix seconds, server receive time
	IdleSeconds    *int64
	ManualOffline  bool
	MusicPlaying   bool
	MusicTitle     *string
	MusicArtist    *string
	MusicSource    *string
	MusicUpdatedAt *int64
}

// DeviceStatus is the derived view returned by GET /status. It is recomputed
// on every read and never persisted.
type DeviceStatus struct {
	DeviceID            string  `json:"device_id"`
	DeviceName          string  `json:"device_name"`
	Online              bool    `json:"online"`
	LastSeen            int64   `json:"last_seen"`
	IdleSeconds         *int64  `json:"idle_seconds"`
	ManualOffline       bool    `json:"manual_offline"`
	GlobalManualOffline bool    `json:"global_manual_offline"`
	MusicPlaying        bool    `json:"music_playing"`
	MusicTitle          *string `json:"music_title"`
	MusicArtist         *string `json:"music_artist"`
	MusicSource         *string `json:"music_source"`
	MusicUpdatedAt      *int64  `json:"music_updated_at"`
}

// DeviceStatusUpdate is the partial-update body for POST /device/status.
// Nil fields keep the stored value.
type DeviceStatusUpdate struct {
	DeviceID      string  `json:"device_id"`
	DeviceName    *string `json:"device_name,omitempty"`
	Online        *bool   `json:"online,omitempty"`
	ManualOffline *bool   `json:"manual_offline,omitempty"`
	MusicPlaying  *bool   `json:"music_playing,omitempty"`
	MusicTitle    *string `json:"music_title,omitempty"`
	MusicArtist   *string `json:"music_artist,omitempty"`
	MusicSource   *string `json:"music_source,omitempty"`
}

// HasMusicUpdate reports whether any music field was explicitly present.
// music_updated_at only advances in that case.
func (u *DeviceStatusUpdate) HasMusicUpdate() bool {
	return u.MusicPlaying != nil || u.MusicTitle != nil || u.MusicArtist != nil || u.MusicSource != nil
}
