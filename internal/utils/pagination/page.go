package pagination

// Params is a normalized page request.
type Params struct {
	Page     int
	PageSize int
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Normalize clamps page and pageSize to sane values: page >= 1,
// 1 <= pageSize <= 50, defaulting pageSize to 10.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta is the pagination envelope returned with every list response.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewMeta computes totalPages = ceil(total / pageSize).
func NewMeta(p Params, total int64) Meta {
	pages := (total + int64(p.PageSize) - 1) / int64(p.PageSize)
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: pages,
	}
}

// Slice cuts one page out of an already-ordered in-memory result set.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
