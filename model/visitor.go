package model

// VisitPayload is the POST /visitor/visit body. A visitor counts at most once
// per UTC day.
type VisitPayload struct {
	VisitorID string `json:"visitor_id"`
}

// VisitorStats is returned by GET /visitor.
type VisitorStats struct {
	Today     int64 `json:"today"`
	Month     int64 `json:"month"`
	Total     int64 `json:"total"`
	UpdatedAt int64 `json:"updated_at"`
}
