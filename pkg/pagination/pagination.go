package pagination

type Params struct {
	Page     int
	PageSize int
}

// Window clamps an offset/limit view onto a slice of totalItems entries.
// A zero PageSize means everything.
func (p Params) Window(totalItems int) (offset, limit int) {
	if p.PageSize <= 0 {
		return 0, totalItems
	}

	page := p.Page
	if page < 1 {
		page = 1
	}

	offset = (page - 1) * p.PageSize
	if offset > totalItems {
		offset = totalItems
	}

	limit = p.PageSize
	if offset+limit > totalItems {
		limit = totalItems - offset
	}
	return offset, limit
}

func (p Params) BuildMeta(totalItems int) Meta {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (totalItems + p.PageSize - 1) / p.PageSize
	}
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}
