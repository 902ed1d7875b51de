package catalog

// PageSize is the number of treatment cards per slider page.
const PageSize = 4

// Paginate splits treatments into chunks of size, preserving order. The last
// chunk may be shorter and an empty input still yields one empty page.
func Paginate(treatments []Treatment, size int) [][]Treatment {
	if size <= 0 {
		size = PageSize
	}
	if len(treatments) == 0 {
		return [][]Treatment{{}}
	}
	pages := make([][]Treatment, 0, PageCount(len(treatments), size))
	for start := 0; start < len(treatments); start += size {
		end := start + size
		if end > len(treatments) {
			end = len(treatments)
		}
		pages = append(pages, treatments[start:end:end])
	}
	return pages
}

// PageCount returns max(1, ceil(n/size)).
func PageCount(n, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
