package repository

import (
	"database/sql"
	"fmt"

	"HomeStatus/db"
	"HomeStatus/logger"
	"HomeStatus/model"
)

// DeviceRepository defines the interface for device presence data operations.
type DeviceRepository interface {
	UpsertHeartbeat(hb *model.Heartbeat, now int64) error
	ApplyStatusUpdate(upd *model.DeviceStatusUpdate, now int64) error
	ListDevices() ([]model.DeviceRecord, error)
	DeleteDevice(deviceID string) error
}

// sqliteDeviceRepository implements DeviceRepository for SQLite.
type sqliteDeviceRepository struct {
	DB *sql.DB
}

// NewSQLiteDeviceRepository creates a repository bound to the shared connection.
func NewSQLiteDeviceRepository() DeviceRepository {
	return &sqliteDeviceRepository{DB: db.DB}
}

// NewSQLiteDeviceRepositoryWithDB creates a repository bound to the given
// connection. Used by tests.
func NewSQLiteDeviceRepositoryWithDB(conn *sql.DB) DeviceRepository {
	return &sqliteDeviceRepository{DB: conn}
}

// UpsertHeartbeat overwrites the device's presence snapshot from a fresh
// report. manual_offline is deliberately carried over from the existing row
// (default 0 for first-seen devices): a heartbeat may never reset an override.
func (r *sqliteDeviceRepository) UpsertHeartbeat(hb *model.Heartbeat, now int64) error {
	musicPlaying := false
	if hb.MusicPlaying != nil {
		musicPlaying = *hb.MusicPlaying
	}

	query := `INSERT INTO device_status (
		device_id, device_name, online, last_seen, idle_seconds, manual_offline,
		music_playing, music_title, music_artist, music_source, music_updated_at
	)
	VALUES (
		?, ?, ?, ?, ?, COALESCE((SELECT manual_offline FROM device_status WHERE device_id = ?), 0),
		?, ?, ?, ?, ?
	)
	ON CONFLICT(device_id) DO UPDATE SET
		device_name = excluded.device_name,
		online = excluded.online,
		last_seen = excluded.last_seen,
		idle_seconds = excluded.idle_seconds,
		music_playing = excluded.music_playing,
		music_title = excluded.music_title,
		music_artist = excluded.music_artist,
		music_source = excluded.music_source,
		music_updated_at = excluded.music_updated_at`

	_, err := r.DB.Exec(query,
		hb.DeviceID, hb.DeviceName, boolToInt(hb.Online), now, hb.IdleSeconds, hb.DeviceID,
		boolToInt(musicPlaying), hb.MusicTitle, hb.MusicArtist, hb.MusicSource, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert heartbeat for device %s: %w", hb.DeviceID, err)
	}
	return nil
}

// ApplyStatusUpdate performs a field-by-field merge: fields absent from the
// update keep the stored value. An explicit online assertion resets last_seen
// to now and clears idle_seconds, since the caller is asserting a state rather
// than reporting a fresh idle sample. music_updated_at only advances when at
// least one music field was present.
func (r *sqliteDeviceRepository) ApplyStatusUpdate(upd *model.DeviceStatusUpdate, now int64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for status update: %w", err)
	}
	defer tx.Rollback()

	existing, err := readDevice(tx, upd.DeviceID)
	if err != nil {
		return err
	}

	merged := model.DeviceRecord{DeviceID: upd.DeviceID}
	if existing != nil {
		merged = *existing
	}

	if upd.DeviceName != nil {
		merged.DeviceName = *upd.DeviceName
	} else if existing == nil {
		merged.DeviceName = upd.DeviceID
	}
	if upd.Online != nil {
		merged.ReportedOnline = *upd.Online
		merged.LastSeen = now
		merged.IdleSeconds = nil
	} else if existing == nil {
		merged.LastSeen = now
	}
	if upd.ManualOffline != nil {
		merged.ManualOffline = *upd.ManualOffline
	}
	if upd.MusicPlaying != nil {
		merged.MusicPlaying = *upd.MusicPlaying
	}
	if upd.MusicTitle != nil {
		merged.MusicTitle = upd.MusicTitle
	}
	if upd.MusicArtist != nil {
		merged.MusicArtist = upd.MusicArtist
	}
	if upd.MusicSource != nil {
		merged.MusicSource = upd.MusicSource
	}
	if upd.HasMusicUpdate() {
		ts := now
		merged.MusicUpdatedAt = &ts
	}

	query := `INSERT INTO device_status (
		device_id, device_name, online, last_seen, idle_seconds, manual_offline,
		music_playing, music_title, music_artist, music_source, music_updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(device_id) DO UPDATE SET
		device_name = excluded.device_name,
		online = excluded.online,
		last_seen = excluded.last_seen,
		idle_seconds = excluded.idle_seconds,
		manual_offline = excluded.manual_offline,
		music_playing = excluded.music_playing,
		music_title = excluded.music_title,
		music_artist = excluded.music_artist,
		music_source = excluded.music_source,
		music_updated_at = excluded.music_updated_at`

	if _, err := tx.Exec(query,
		merged.DeviceID, merged.DeviceName, boolToInt(merged.ReportedOnline), merged.LastSeen,
		merged.IdleSeconds, boolToInt(merged.ManualOffline), boolToInt(merged.MusicPlaying),
		merged.MusicTitle, merged.MusicArtist, merged.MusicSource, merged.MusicUpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to apply status update for device %s: %w", upd.DeviceID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update for device %s: %w", upd.DeviceID, err)
	}
	return nil
}

// ListDevices retrieves all device rows ordered by device_id ascending.
func (r *sqliteDeviceRepository) ListDevices() ([]model.DeviceRecord, error) {
	query := `SELECT device_id, device_name, online, last_seen, idle_seconds, manual_offline,
		music_playing, music_title, music_artist, music_source, music_updated_at
	FROM device_status
	ORDER BY device_id ASC`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query device rows: %w", err)
	}
	defer rows.Close()

	devices := make([]model.DeviceRecord, 0)
	for rows.Next() {
		var d model.DeviceRecord
		var online, manualOffline, musicPlaying int
		if err := rows.Scan(
			&d.DeviceID, &d.DeviceName, &online, &d.LastSeen, &d.IdleSeconds, &manualOffline,
			&musicPlaying, &d.MusicTitle, &d.MusicArtist, &d.MusicSource, &d.MusicUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		d.ReportedOnline = online == 1
		d.ManualOffline = manualOffline == 1
		d.MusicPlaying = musicPlaying == 1
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during device rows iteration: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a device row. Deleting an unknown device is a no-op.
func (r *sqliteDeviceRepository) DeleteDevice(deviceID string) error {
	res, err := r.DB.Exec(`DELETE FROM device_status WHERE device_id = ?`, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device %s: %w", deviceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logger.Info("device deleted", logger.String("deviceId", deviceID))
	}
	return nil
}

func readDevice(tx *sql.Tx, deviceID string) (*model.DeviceRecord, error) {
	query := `SELECT device_id, device_name, online, last_seen, idle_seconds, manual_offline,
		music_playing, music_title, music_artist, music_source, music_updated_at
	FROM device_status
	WHERE device_id = ?`

	var d model.DeviceRecord
	var online, manualOffline, musicPlaying int
	err := tx.QueryRow(query, deviceID).Scan(
		&d.DeviceID, &d.DeviceName, &online, &d.LastSeen, &d.IdleSeconds, &manualOffline,
		&musicPlaying, &d.MusicTitle, &d.MusicArtist, &d.MusicSource, &d.MusicUpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // first sighting of this device
		}
		return nil, fmt.Errorf("failed to read device %s: %w", deviceID, err)
	}
	d.ReportedOnline = online == 1
	d.ManualOffline = manualOffline == 1
	d.MusicPlaying = musicPlaying == 1
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
