package listquery

// PageMeta describes one page of a listing. Computed per response, never
// stored.
type PageMeta struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	Count           int  `json:"count"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPageMeta computes page metadata from the total row count matching the
// filters, independent of the page actually returned.
func NewPageMeta(spec *Spec, count int) PageMeta {
	pageCount := count / spec.PageSize
	if count%spec.PageSize != 0 {
		pageCount++
	}

	return PageMeta{
		Page:            spec.Page,
		PageSize:        spec.PageSize,
		Count:           count,
		PageCount:       pageCount,
		HasPreviousPage: spec.Page > 1,
		HasNextPage:     spec.Page < pageCount,
	}
}
