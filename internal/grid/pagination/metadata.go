package pagination

// Metadata is the page metadata a server returns with one page of rows.
// Page is 1-based; PageIndex converts it to the grid's zero-based index.
type Metadata struct {
	Total      int `json:"total"       yaml:"total"`
	Page       int `json:"page"        yaml:"page"`
	PageSize   int `json:"page_size"   yaml:"page_size"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// NewMetadata creates metadata for the page described by state over total rows.
func NewMetadata(state State, total int) Metadata {
	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = total // No page size means a single page.
	}

	return Metadata{
		Total:      total,
		Page:       state.PageIndex + 1,
		PageSize:   pageSize,
		TotalPages: PageCount(total, pageSize),
	}
}

// PageIndex returns the zero-based index of the page.
func (m Metadata) PageIndex() int {
	if m.Page <= 0 {
		return 0
	}
	return m.Page - 1
}

// PageCount returns TotalPages, deriving it from Total and PageSize when the
// server left it out.
func (m Metadata) PageCount() int {
	if m.TotalPages > 0 {
		return m.TotalPages
	}
	return PageCount(m.Total, m.PageSize)
}

// HasPrevious reports whether a page exists before this one.
func (m Metadata) HasPrevious() bool {
	return m.Page > 1
}

// HasNext reports whether a page exists after this one.
func (m Metadata) HasNext() bool {
	return m.Page < m.PageCount()
}
