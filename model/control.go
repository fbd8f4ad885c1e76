package model

// GlobalControl is the singleton override row (id fixed to 1). When enabled,
// every device is forced offline and heartbeat ingestion is muted.
type GlobalControl struct {
	ManualOffline bool
	UpdatedAt     int64
}

// ManualStatusPayload is the POST /status/manual body.
type ManualStatusPayload struct {
	Enabled bool `json:"enabled"`
}

// ManualStatusResponse is returned by GET/POST /status/manual.
type ManualStatusResponse struct {
	Enabled   bool  `json:"enabled"`
	UpdatedAt int64 `json:"updated_at"`
}

// VersionInfo is returned by GET /version.
type VersionInfo struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	MusicFields bool   `json:"music_fields"`
}
