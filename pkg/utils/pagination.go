package utils

// CalculateTotalPages returns how many pages are needed to cover total rows
// at perPage rows each. Non-positive input yields zero pages.
func CalculateTotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return int(pages)
}
