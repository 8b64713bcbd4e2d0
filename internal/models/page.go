package models

// SortDirection orders listings by creation time
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// MovementFilter narrows a paged movement listing. Zero values match everything.
type MovementFilter struct {
	ClientID       string
	Type           MovementType
	IncludeDeleted bool
}

// Page is one zero-based slice of a listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a page and derives TotalPages as ceil(total / size)
func NewPage[T any](content []T, pageNumber, pageSize int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}
}
