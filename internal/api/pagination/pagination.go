package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a parsed page/limit pair. Offset is derived, never parsed.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages computes the page count for a total item count.
func (p Page) TotalPages(totalItems int64) int {
	if totalItems <= 0 {
		return 0
	}
	pages := int(totalItems) / p.Limit
	if int(totalItems)%p.Limit != 0 {
		pages++
	}
	return pages
}

type ParseError struct {
	Param string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("invalid %s: must be a positive integer", e.Param)
}

// Parse reads page and limit query parameters, applying defaults and the
// hard cap on limit.
func Parse(values url.Values) (Page, error) {
	page := Page{Page: 1, Limit: DefaultLimit}

	if raw := values.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return Page{}, ParseError{Param: "page"}
		}
		page.Page = parsed
	}

	if raw := values.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return Page{}, ParseError{Param: "limit"}
		}
		if parsed > MaxLimit {
			parsed = MaxLimit
		}
		page.Limit = parsed
	}

	return page, nil
}
