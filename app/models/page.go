package models

// PageRequest selects a zero-based page of a given size.
type PageRequest struct {
	Page int `json:"page" validate:"gte=0"`
	Size int `json:"size" validate:"gte=1"`
}

// NewPageRequest builds a request, clamping negative pages and non-positive sizes.
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	return PageRequest{Page: page, Size: size}
}

// Offset is the number of elements skipped before this page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one window of a larger, ordered result.
type Page[T any] struct {
	Content       []T `json:"content"`
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// NewPage wraps content already cut to the requested window.
func NewPage[T any](content []T, req PageRequest, total int) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// EmptyPage returns a page with no content for the request.
func EmptyPage[T any](req PageRequest) Page[T] {
	return NewPage[T](nil, req, 0)
}

// Paginate cuts the requested window out of a full, ordered slice.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	total := len(all)
	start := req.Offset()
	if start >= total {
		return NewPage[T](nil, req, total)
	}
	end := start + req.Size
	if end > total {
		end = total
	}
	return NewPage(all[start:end], req, total)
}

// IsEmpty reports whether the page has no content.
func (p Page[T]) IsEmpty() bool {
	return len(p.Content) == 0
}
