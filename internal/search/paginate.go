package search

import "talant-web/internal/domain/listing"

const (
	DefaultPageSize = 10
	MaxVisiblePages = 5
)

func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the records of the given 1-based page. Pages outside the
// valid range yield an empty slice.
func Paginate(records []listing.Record, page, size int) []listing.Record {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(records), size)
	if page < 1 || page > total {
		return []listing.Record{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Goto moves to requested when it lies within [1, total]; otherwise the
// current page is kept.
func Goto(current, requested, total int) int {
	if requested < 1 || requested > total {
		return current
	}
	return requested
}

// Step moves delta pages from current without leaving [1, total].
func Step(current, delta, total int) int {
	return Goto(current, current+delta, total)
}

// ClampPage pulls a page number into [1, total], returning 1 for an empty
// result set.
func ClampPage(page, total int) int {
	if total < 1 || page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

type PagerItem struct {
	Page     int  `json:"page,omitempty"`
	Active   bool `json:"active,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

type Pager struct {
	Current int         `json:"current"`
	Total   int         `json:"total"`
	HasPrev bool        `json:"has_prev"`
	HasNext bool        `json:"has_next"`
	Items   []PagerItem `json:"items"`
}

// Visible reports whether page controls should be shown at all.
func (p Pager) Visible() bool {
	return p.Total > 1
}

// Window builds the page controls: at most MaxVisiblePages numeric buttons
// around current, plus first/last shortcuts separated by an ellipsis when
// there is a gap.
func Window(current, total int) Pager {
	p := Pager{Current: current, Total: total}
	if total <= 1 {
		return p
	}
	p.HasPrev = current > 1
	p.HasNext = current < total

	num := func(i int) PagerItem { return PagerItem{Page: i, Active: i == current} }

	if total <= MaxVisiblePages {
		for i := 1; i <= total; i++ {
			p.Items = append(p.Items, num(i))
		}
		return p
	}

	start := max(1, current-2)
	end := min(total, start+MaxVisiblePages-1)
	if end-start+1 < MaxVisiblePages {
		start = max(1, end-MaxVisiblePages+1)
	}

	if start > 1 {
		p.Items = append(p.Items, num(1))
		if start > 2 {
			p.Items = append(p.Items, PagerItem{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, num(i))
	}
	if end < total {
		if end < total-1 {
			p.Items = append(p.Items, PagerItem{Ellipsis: true})
		}
		p.Items = append(p.Items, num(total))
	}
	return p
}
