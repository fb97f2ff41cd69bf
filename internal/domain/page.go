package domain

// Cursor is the pagination state of a list surface.
type Cursor struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

// InferCursor builds a cursor when the upstream response carried none:
// a full page suggests there is more.
func InferCursor(page, limit, received int) Cursor {
	return Cursor{
		Page:        page,
		Limit:       limit,
		HasNextPage: received >= limit && limit > 0,
	}
}
