package repository

import (
	"database/sql"
	"fmt"

	"HomeStatus/db"
	"HomeStatus/model"
)

// VisitorRepository counts distinct daily visits.
type VisitorRepository interface {
	RecordVisit(visitorID, dateKey string, now int64) error
	Stats(dateKey, monthKey string, now int64) (model.VisitorStats, error)
}

type sqliteVisitorRepository struct {
	DB *sql.DB
}

func NewSQLiteVisitorRepository() VisitorRepository {
	return &sqliteVisitorRepository{DB: db.DB}
}

func NewSQLiteVisitorRepositoryWithDB(conn *sql.DB) VisitorRepository {
	return &sqliteVisitorRepository{DB: conn}
}

// RecordVisit inserts a (visitor, day) pair. Repeat visits on the same day
// are ignored, so daily counting stays idempotent.
func (r *sqliteVisitorRepository) RecordVisit(visitorID, dateKey string, now int64) error {
	_, err := r.DB.Exec(
		`INSERT OR IGNORE INTO visitor_visits (visitor_id, visit_date, created_at)
		 VALUES (?, ?, ?)`,
		visitorID, dateKey, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// Stats returns today / this-month / all-time distinct visit counts.
func (r *sqliteVisitorRepository) Stats(dateKey, monthKey string, now int64) (model.VisitorStats, error) {
	stats := model.VisitorStats{UpdatedAt: now}

	if err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM visitor_visits WHERE visit_date = ?`, dateKey,
	).Scan(&stats.Today); err != nil {
		return stats, fmt.Errorf("failed to count today's visits: %w", err)
	}
	if err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM visitor_visits WHERE visit_date LIKE ?`, monthKey+"-%",
	).Scan(&stats.Month); err != nil {
		return stats, fmt.Errorf("failed to count month visits: %w", err)
	}
	if err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM visitor_visits`,
	).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("failed to count total visits: %w", err)
	}
	return stats, nil
}
