package listview

// DefaultMaxVisible is the page-button window width used by the dashboard.
const DefaultMaxVisible = 5

// Pager is a bounded window of page numbers around the current page.
type Pager struct {
	Current          int   `json:"current"`
	Total            int   `json:"total"`
	Pages            []int `json:"pages"`
	ShowFirst        bool  `json:"show_first"`
	LeadingEllipsis  bool  `json:"leading_ellipsis"`
	ShowLast         bool  `json:"show_last"`
	TrailingEllipsis bool  `json:"trailing_ellipsis"`
	HasPrev          bool  `json:"has_prev"`
	HasNext          bool  `json:"has_next"`
}

// NewPager centres a window of maxVisible pages on current, shifting it at
// the edges so it stays full whenever total >= maxVisible.
func NewPager(current, total, maxVisible int) Pager {
	if total < 1 {
		return Pager{Current: 1, Pages: []int{}}
	}
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisible
	}
	current = max(1, min(current, total))
	width := min(maxVisible, total)

	start := max(1, current-width/2)
	end := start + width - 1
	if end > total {
		end = total
		start = end - width + 1
	}

	pages := make([]int, 0, width)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return Pager{
		Current:          current,
		Total:            total,
		Pages:            pages,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		ShowLast:         end < total,
		TrailingEllipsis: end < total-1,
		HasPrev:          current > 1,
		HasNext:          current < total,
	}
}

// Prev returns the previous page, or the current page at the first page.
func (p Pager) Prev() int {
	if !p.HasPrev {
		return p.Current
	}
	return p.Current - 1
}

// Next returns the next page, or the current page at the last page.
func (p Pager) Next() int {
	if !p.HasNext {
		return p.Current
	}
	return p.Current + 1
}
