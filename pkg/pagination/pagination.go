package pagination

import (
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit caps the page size; larger requested limits are clamped.
	MaxLimit = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the pagination defaults used when the query omits them.
func DefaultParams() Params {
	return Params{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Offset: 0,
	}
}

// New validates page and limit, clamps limit to MaxLimit and computes the
// offset. Pages whose offset would not fit in an int32 are rejected.
func New(page, limit int) (Params, error) {
	if page < 1 {
		return Params{}, apperrors.InvalidPagination("page must be a positive integer")
	}
	if limit < 1 {
		return Params{}, apperrors.InvalidPagination("limit must be a positive integer")
	}
	limit = min(limit, MaxLimit)
	if page-1 > math.MaxInt32/limit {
		return Params{}, apperrors.InvalidPagination("page is out of range")
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}, nil
}

// FromRequest extracts pagination parameters from an HTTP request. Absent
// values fall back to the defaults; present values must be positive integers.
func FromRequest(r *http.Request) (Params, error) {
	q := r.URL.Query()

	page, err := parsePositive(q, "page", DefaultPage)
	if err != nil {
		return Params{}, err
	}
	limit, err := parsePositive(q, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	return New(page, limit)
}

func parsePositive(q map[string][]string, key string, def int) (int, error) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return def, nil
	}
	v, err := strconv.Atoi(values[0])
	if err != nil || v < 1 {
		return 0, apperrors.InvalidPagination(key + " must be a positive integer")
	}
	return v, nil
}

// Meta describes the page that was returned.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, total int, params Params) Result[T] {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = total / params.Limit
		if total%params.Limit > 0 {
			totalPages++
		}
	}
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data: data,
		Pagination: Meta{
			Page:        params.Page,
			Limit:       params.Limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: params.Page < totalPages,
			HasPrevPage: params.Page > 1,
		},
	}
}
