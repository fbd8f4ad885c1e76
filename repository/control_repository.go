package repository

import (
	"database/sql"
	"fmt"

	"HomeStatus/db"
	"HomeStatus/model"
)

// ControlRepository manages the singleton global override row.
type ControlRepository interface {
	GetControl() (model.GlobalControl, error)
	SetGlobalManualOffline(enabled bool, now int64) (model.GlobalControl, error)
}

type sqliteControlRepository struct {
	DB *sql.DB
}

func NewSQLiteControlRepository() ControlRepository {
	return &sqliteControlRepository{DB: db.DB}
}

func NewSQLiteControlRepositoryWithDB(conn *sql.DB) ControlRepository {
	return &sqliteControlRepository{DB: conn}
}

// GetControl reads the global override. A missing row reads as disabled
// rather than an error, matching the first-boot default.
func (r *sqliteControlRepository) GetControl() (model.GlobalControl, error) {
	var flag int
	var updatedAt int64
	err := r.DB.QueryRow(
		`SELECT global_manual_offline, updated_at FROM status_control WHERE id = 1`,
	).Scan(&flag, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.GlobalControl{}, nil
		}
		return model.GlobalControl{}, fmt.Errorf("failed to read status control: %w", err)
	}
	return model.GlobalControl{ManualOffline: flag == 1, UpdatedAt: updatedAt}, nil
}

// SetGlobalManualOffline flips the override and returns the new state.
func (r *sqliteControlRepository) SetGlobalManualOffline(enabled bool, now int64) (model.GlobalControl, error) {
	_, err := r.DB.Exec(
		`INSERT INTO status_control (id, global_manual_offline, updated_at)
		 VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			global_manual_offline = excluded.global_manual_offline,
			updated_at = excluded.updated_at`,
		boolToInt(enabled), now,
	)
	if err != nil {
		return model.GlobalControl{}, fmt.Errorf("failed to set status control: %w", err)
	}
	return model.GlobalControl{ManualOffline: enabled, UpdatedAt: now}, nil
}
