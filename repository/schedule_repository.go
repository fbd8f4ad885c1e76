package repository

import (
	"database/sql"
	"fmt"

	"HomeStatus/db"
	"HomeStatus/model"

	"github.com/google/uuid"
)

// ScheduleRepository manages the schedule collection. Writes replace the
// whole set atomically.
type ScheduleRepository interface {
	ListItems() ([]model.ScheduleItem, error)
	ReplaceAll(items []model.ScheduleItemInput, now int64) error
}

type sqliteScheduleRepository struct {
	DB *sql.DB
}

func NewSQLiteScheduleRepository() ScheduleRepository {
	return &sqliteScheduleRepository{DB: db.DB}
}

func NewSQLiteScheduleRepositoryWithDB(conn *sql.DB) ScheduleRepository {
	return &sqliteScheduleRepository{DB: conn}
}

// ListItems retrieves all schedule items ordered by sort_order, then most
// recently updated.
func (r *sqliteScheduleRepository) ListItems() ([]model.ScheduleItem, error) {
	rows, err := r.DB.Query(
		`SELECT id, title, time, note, location, tag, sort_order, updated_at
		 FROM schedule_items
		 ORDER BY sort_order ASC, updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ScheduleItem, 0)
	for rows.Next() {
		var it model.ScheduleItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Time, &it.Note, &it.Location, &it.Tag, &it.SortOrder, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schedule rows iteration: %w", err)
	}
	return items, nil
}

// ReplaceAll deletes the stored set and re-inserts the submitted one inside a
// single transaction; a mid-batch failure leaves the previous data untouched.
func (r *sqliteScheduleRepository) ReplaceAll(items []model.ScheduleItemInput, now int64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schedule replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedule_items`); err != nil {
		return fmt.Errorf("failed to clear schedule items: %w", err)
	}

	for idx, item := range items {
		id := ""
		if item.ID != nil {
			id = *item.ID
		}
		if id == "" {
			id = "schedule-" + uuid.New().String()
		}
		sortOrder := int64(idx)
		if item.SortOrder != nil {
			sortOrder = *item.SortOrder
		}
		if _, err := tx.Exec(
			`INSERT INTO schedule_items (id, title, time, note, location, tag, sort_order, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, item.Title, item.Time, item.Note, item.Location, item.Tag, sortOrder, now,
		); err != nil {
			return fmt.Errorf("failed to insert schedule item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule replace: %w", err)
	}
	return nil
}
