package models

// Pagination describes offset-based result windows in list responses.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Count      int  `json:"count"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}
