package page

// CursorPage is one page of a cursor-paginated collection. The cursor
// strings are opaque tokens minted by the server; callers pass them
// back verbatim to move through the collection.
type CursorPage[T any] struct {
	Items          []T    `json:"items"`
	NextCursor     string `json:"next_cursor"`
	PreviousCursor string `json:"previous_cursor"`
	HasNext        bool   `json:"has_next"`
	HasPrevious    bool   `json:"has_previous"`
	PageSize       int    `json:"page_size"`
}

// OffsetPage is one page of an offset-paginated collection.
type OffsetPage[T any] struct {
	Items       []T  `json:"items"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}
