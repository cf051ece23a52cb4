package listing

// DefaultPageSize is the number of recipes per page.
const DefaultPageSize = 12

// Paginate returns the 1-based page of items, the page count and whether page is
// in range. The page count is never below 1, so an empty list has one empty page.
func Paginate[T any](items []T, page, size int) ([]T, int, bool) {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := max(1, (len(items)+size-1)/size)
	if page < 1 || page > totalPages {
		return nil, totalPages, false
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end], totalPages, true
}
