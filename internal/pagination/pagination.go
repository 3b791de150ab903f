// Package pagination computes fixed-size page windows for listing views.
// Pages are 1-based and recomputed on every request; nothing here caches.
package pagination

// Page describes one page of a listing
type Page struct {
	Number     int   // 1-based page number after clamping
	Size       int   // items per page
	Total      int64 // total items across all pages
	TotalPages int   // at least 1, even for an empty listing
}

// Paginate clamps the requested page number into [1, TotalPages] and
// returns the resulting page. Out-of-range requests are soft failures:
// below range serves the first page, above range serves the last.
func Paginate(total int64, size, requested int) Page {
	if size < 1 {
		size = 1
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset is the number of items to skip to reach this page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a following page exists
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// PrevNumber is the previous page number, valid only when HasPrev
func (p Page) PrevNumber() int {
	return p.Number - 1
}

// NextNumber is the next page number, valid only when HasNext
func (p Page) NextNumber() int {
	return p.Number + 1
}

// Window returns the page numbers to render in the pager, centered on the
// current page with up to two neighbors on each side.
func (p Page) Window() []int {
	lo := p.Number - 2
	if lo < 1 {
		lo = 1
	}
	hi := p.Number + 2
	if hi > p.TotalPages {
		hi = p.TotalPages
	}

	window := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		window = append(window, n)
	}
	return window
}
