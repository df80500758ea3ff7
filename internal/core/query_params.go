// internal/core/query_params.go
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Default and limit constants for pagination
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidPagination = errors.New("Parámetros de paginación inválidos")

// Pagination holds parsed page/limit query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns how many pages are needed for total items.
func (p Pagination) Pages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}

// ParsePagination extracts 'page' and 'limit' from query parameters.
// Limits above MaxLimit are clamped.
func ParsePagination(queryParams url.Values) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if pageStr := queryParams.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return Pagination{}, fmt.Errorf("%w: 'page' debe ser un entero", ErrInvalidPagination)
		}
		if page < 1 {
			return Pagination{}, fmt.Errorf("%w: 'page' debe ser al menos 1", ErrInvalidPagination)
		}
		p.Page = page
	}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return Pagination{}, fmt.Errorf("%w: 'limit' debe ser un entero", ErrInvalidPagination)
		}
		if limit < 1 {
			return Pagination{}, fmt.Errorf("%w: 'limit' debe ser al menos 1", ErrInvalidPagination)
		}
		p.Limit = min(limit, MaxLimit)
	}

	return p, nil
}
