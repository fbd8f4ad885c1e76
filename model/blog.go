package model

// BlogPost is a full post, content as an ordered list of paragraphs.
type BlogPost struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Tag       *string  `json:"tag"`
	Excerpt   string   `json:"excerpt"`
	Content   []string `json:"content"`
	SortOrder int64    `json:"sort_order"`
	UpdatedAt int64    `json:"updated_at"`
}

// BlogPostSummary is the list view — everything but the content.
type BlogPostSummary struct {
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Tag       *string `json:"tag"`
	Excerpt   string  `json:"excerpt"`
	SortOrder int64   `json:"sort_order"`
	UpdatedAt int64   `json:"updated_at"`
}

// BlogPayload is the POST /blog body, a wholesale replace like the schedule.
type BlogPayload struct {
	Items []BlogPostInput `json:"items"`
}

// BlogPostInput is one post of a bulk replace. A missing or unusable slug gets
// a generated one; an empty excerpt falls back to the first paragraph.
type BlogPostInput struct {
	Slug      *string  `json:"slug"`
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Tag       *string  `json:"tag"`
	Excerpt   *string  `json:"excerpt"`
	Content   []string `json:"content"`
	SortOrder *int64   `json:"sort_order"`
}
