package service

// DefaultLimit is the page size used when the caller does not provide one.
const DefaultLimit = 10

// Pagination describes a deterministic slice of a sorted result set. All
// fields are derived from the total count and the requested page; none are
// independently tracked.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// paginate computes the slice bounds and pagination metadata for a result
// set of the given size. Page is 1-based; offset = (page-1)*limit.
func paginate(total, page, limit int) (start, end int, p Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	totalPages := (total + limit - 1) / limit
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = start + limit
	if end > total {
		end = total
	}

	p = Pagination{
		Page:            page,
		Limit:           limit,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasNextPage:     end < total,
		HasPreviousPage: page > 1 && start > 0,
	}
	return start, end, p
}
