// Package paging holds the page/limit parameters and the paginated response
// envelope shared by list endpoints.
package paging

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit far from overflowing.
	MaxPage = 1_000_000
)

type Params struct {
	Page  int
	Limit int
}

// FromQuery parses 1-indexed page and limit query values, falling back to the
// defaults for missing or invalid input.
func FromQuery(page, limit string) Params {
	p, err := strconv.Atoi(page)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(page), "-"):
		p = MaxPage
	case err != nil || p <= 0:
		p = DefaultPage
	case p > MaxPage:
		p = MaxPage
	}
	l, err := strconv.Atoi(limit)
	switch {
	case err != nil || l <= 0:
		l = DefaultLimit
	case l > MaxLimit:
		l = MaxLimit
	}
	return Params{Page: p, Limit: l}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Result[T any] struct {
	Data        []T   `json:"data"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

func NewResult[T any](data []T, total int64, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Result[T]{
		Data:        data,
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		Limit:       p.Limit,
	}
}
