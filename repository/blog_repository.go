package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"HomeStatus/db"
	"HomeStatus/model"

	"github.com/google/uuid"
)

// BlogRepository manages blog posts. Content is persisted as a JSON-encoded
// ordered list of paragraph strings.
type BlogRepository interface {
	ListSummaries() ([]model.BlogPostSummary, error)
	GetBySlug(slug string) (*model.BlogPost, error)
	ReplaceAll(items []model.BlogPostInput, now int64) error
}

type sqliteBlogRepository struct {
	DB *sql.DB
}

func NewSQLiteBlogRepository() BlogRepository {
	return &sqliteBlogRepository{DB: db.DB}
}

func NewSQLiteBlogRepositoryWithDB(conn *sql.DB) BlogRepository {
	return &sqliteBlogRepository{DB: conn}
}

// ListSummaries retrieves the list view of all posts, without content.
func (r *sqliteBlogRepository) ListSummaries() ([]model.BlogPostSummary, error) {
	rows, err := r.DB.Query(
		`SELECT slug, title, date, tag, excerpt, sort_order, updated_at
		 FROM blog_posts
		 ORDER BY sort_order ASC, date DESC, updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.BlogPostSummary, 0)
	for rows.Next() {
		var p model.BlogPostSummary
		if err := rows.Scan(&p.Slug, &p.Title, &p.Date, &p.Tag, &p.Excerpt, &p.SortOrder, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blog summary: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during blog rows iteration: %w", err)
	}
	return posts, nil
}

// GetBySlug retrieves one full post, or nil when the slug is unknown.
func (r *sqliteBlogRepository) GetBySlug(slug string) (*model.BlogPost, error) {
	var p model.BlogPost
	var contentJSON string
	err := r.DB.QueryRow(
		`SELECT slug, title, date, tag, excerpt, content_json, sort_order, updated_at
		 FROM blog_posts
		 WHERE slug = ?
		 LIMIT 1`,
		slug,
	).Scan(&p.Slug, &p.Title, &p.Date, &p.Tag, &p.Excerpt, &contentJSON, &p.SortOrder, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read blog post %s: %w", slug, err)
	}
	if err := json.Unmarshal([]byte(contentJSON), &p.Content); err != nil {
		// A corrupted column should not take down the detail page.
		p.Content = []string{}
	}
	return &p, nil
}

// ReplaceAll deletes the stored set and re-inserts the submitted one inside a
// single transaction. Slugs are normalized; empty excerpts fall back to the
// first paragraph.
func (r *sqliteBlogRepository) ReplaceAll(items []model.BlogPostInput, now int64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin blog replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blog_posts`); err != nil {
		return fmt.Errorf("failed to clear blog posts: %w", err)
	}

	for idx, item := range items {
		slug := ""
		if item.Slug != nil {
			slug = NormalizeSlug(*item.Slug)
		}
		if slug == "" {
			slug = "post-" + uuid.New().String()
		}
		sortOrder := int64(idx)
		if item.SortOrder != nil {
			sortOrder = *item.SortOrder
		}
		excerpt := ""
		if item.Excerpt != nil {
			excerpt = strings.TrimSpace(*item.Excerpt)
		}
		if excerpt == "" && len(item.Content) > 0 {
			excerpt = item.Content[0]
		}
		content := item.Content
		if content == nil {
			content = []string{}
		}
		contentJSON, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("failed to encode content for post %s: %w", slug, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO blog_posts (slug, title, date, tag, excerpt, content_json, sort_order, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			slug, item.Title, item.Date, item.Tag, excerpt, string(contentJSON), sortOrder, now,
		); err != nil {
			return fmt.Errorf("failed to insert blog post %s: %w", slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blog replace: %w", err)
	}
	return nil
}

// NormalizeSlug lowercases, dashes spaces, and strips everything outside
// [a-z0-9-]. Returns "" when nothing usable remains.
func NormalizeSlug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
