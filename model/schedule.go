package model

// ScheduleItem is a stored schedule entry.
type ScheduleItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Time      string  `json:"time"`
	Note      *string `json:"note"`
	Location  *string `json:"location"`
	Tag       *string `json:"tag"`
	SortOrder int64   `json:"sort_order"`
	UpdatedAt int64   `json:"updated_at"`
}

// SchedulePayload is the POST /schedule body. The submitted set replaces the
// stored set wholesale.
type SchedulePayload struct {
	Items []ScheduleItemInput `json:"items"`
}

// ScheduleItemInput is one item of a bulk schedule replace. A missing ID gets
// a generated one; a missing sort order falls back to the item's position.
type ScheduleItemInput struct {
	ID        *string `json:"id"`
	Title     string  `json:"title"`
	Time      string  `json:"time"`
	Note      *string `json:"note"`
	Location  *string `json:"location"`
	Tag       *string `json:"tag"`
	SortOrder *int64  `json:"sort_order"`
}
