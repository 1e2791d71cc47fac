package server

import "github.com/tusharelectronics/storefront/internal/usecase"

type Meta struct {
	Total      int `json:"total"`
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

type Res struct {
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

func pageMeta(total, page, size int) *Meta {
	page = usecase.ClampPage(page)
	skip, limit := usecase.Paginate(page, size)
	return &Meta{
		Total:      total,
		Skip:       skip,
		Limit:      limit,
		Page:       page,
		TotalPages: usecase.TotalPages(total, size),
	}
}
