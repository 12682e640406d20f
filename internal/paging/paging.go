// Package paging models page requests and page results for list endpoints.
package paging

import (
	"fmt"
	"math"
	"strings"

	"github.com/juju/errors"
)

const (
	DefaultSize = 20
	MaxSize     = 100
	DefaultSort = "id"
)

// Request selects one page of a sorted collection. Page is zero based.
type Request struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// NewRequest builds a Request from raw query values. An empty sort falls back
// to DefaultSort; a sort may carry a direction suffix, as in "name,desc".
func NewRequest(page, size int, sort string) (Request, error) {
	if page < 0 {
		return Request{}, errors.NotValidf("page %d", page)
	}
	if size == 0 {
		size = DefaultSize
	}
	if size < 0 || size > MaxSize {
		return Request{}, errors.NotValidf("page size %d (must be between 1 and %d)", size, MaxSize)
	}
	if page > math.MaxInt32/size {
		return Request{}, errors.NotValidf("page %d (offset out of range)", page)
	}

	req := Request{Page: page, Size: size, Sort: DefaultSort}
	if sort == "" {
		return req, nil
	}

	field, direction, _ := strings.Cut(sort, ",")
	req.Sort = strings.TrimSpace(field)
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		req.Desc = true
	default:
		return Request{}, errors.NotValidf("sort direction %q", direction)
	}
	if req.Sort == "" {
		return Request{}, errors.NotValidf("empty sort key")
	}
	return req, nil
}

// Offset is the number of rows preceding the requested page.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// OrderBy resolves the sort key against the allowed columns and returns an
// ORDER BY expression. The id column is appended as a tie breaker so paging is
// stable.
func (r Request) OrderBy(columns map[string]string) (string, error) {
	column, ok := columns[r.Sort]
	if !ok {
		return "", errors.NotValidf("sort key %q", r.Sort)
	}
	direction := "ASC"
	if r.Desc {
		direction = "DESC"
	}
	if column == "id" {
		return fmt.Sprintf("id %s", direction), nil
	}
	return fmt.Sprintf("%s %s, id ASC", column, direction), nil
}

// Page is one page of results plus the totals a client needs to navigate.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a Page for req holding content out of total elements.
func NewPage[T any](req Request, content []T, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
