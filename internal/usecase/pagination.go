package usecase

// ClampPage treats anything below 1 as the first page.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Paginate converts a 1-based page into skip/limit.
func Paginate(page, size int) (skip, limit int) {
	return (ClampPage(page) - 1) * size, size
}

func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
