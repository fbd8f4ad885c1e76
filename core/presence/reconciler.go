// Package presence turns raw device rows into the authoritative online view.
package presence

import (
	"sort"

	"HomeStatus/model"
)

// StaleAfterSeconds is how long a device stays online after its last accepted
// heartbeat. Fixed, not configurable.
const StaleAfterSeconds int64 = 300

// EffectiveOnline computes one device's effective state. A device is online
// only when no override is set, it reported online, and the report is fresh.
// Precedence: global override, then device override, then staleness, then the
// reported value — the first forcing condition wins.
func EffectiveOnline(now int64, globalManualOffline bool, d *model.DeviceRecord) bool {
	if globalManualOffline || d.ManualOffline {
		return false
	}
	if !d.ReportedOnline {
		return false
	}
	return now-d.LastSeen <= StaleAfterSeconds
}

// ComputeStatus derives the merged status view for all devices at the given
// instant, ordered by device_id ascending. Pure: no clock, no store access,
// safe to call concurrently with ingestion.
//
// The raw override flags are surfaced verbatim so a viewer can tell "offline
// because overridden" apart from "offline because stale or disconnected".
func ComputeStatus(now int64, global model.GlobalControl, devices []model.DeviceRecord) []model.DeviceStatus {
	out := make([]model.DeviceStatus, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		out = append(out, model.DeviceStatus{
			DeviceID:            d.DeviceID,
			DeviceName:          d.DeviceName,
			Online:              EffectiveOnline(now, global.ManualOffline, d),
			LastSeen:            d.LastSeen,
			IdleSeconds:         d.IdleSeconds,
			ManualOffline:       d.ManualOffline,
			GlobalManualOffline: global.ManualOffline,
			MusicPlaying:        d.MusicPlaying,
			MusicTitle:          d.MusicTitle,
			MusicArtist:         d.MusicArtist,
			MusicSource:         d.MusicSource,
			MusicUpdatedAt:      d.MusicUpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}
