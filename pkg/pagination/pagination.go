package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any list call can request.
	MaxPageSize = 100
)

// Params holds page-number pagination inputs for list endpoints.
type Params struct {
	Page     int
	PageSize int
}

// NormalizePage enforces a 1-based page number.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// NormalizePageSize enforces the configured default and maximum sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Query encodes the normalized params as URL query values.
func (p Params) Query() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(NormalizePage(p.Page)))
	values.Set("page_size", strconv.Itoa(NormalizePageSize(p.PageSize)))
	return values
}
