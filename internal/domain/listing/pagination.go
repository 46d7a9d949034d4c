package listing

// Pagination describes one page of a listing. From and To are 1-based item
// positions and are nil when the page is empty.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

func NewPagination(page, size, total int) Pagination {
	p := Pagination{
		CurrentPage: page,
		PerPage:     size,
		Total:       total,
		LastPage:    1,
	}
	if size > 0 && total > 0 {
		p.LastPage = (total + size - 1) / size
	}

	if start, end := window(page, size, total); start < end {
		from := start + 1
		p.From = &from
		p.To = &end
	}
	return p
}

// window returns the [start, end) slice bounds of a page over total items.
// Pages past the end, or with a non-positive page or size, are empty.
func window(page, size, total int) (start, end int) {
	if page < 1 || size < 1 || page-1 >= (total+size-1)/size {
		return total, total
	}
	start = (page - 1) * size
	return start, min(start+size, total)
}
