// Package paging implements look-ahead offset paging for list pages. A page
// query fetches one row more than it shows; the extra row only signals that a
// next page exists.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of rows shown per list page.
const PageSize = 25

// LimitPlusOne is the query limit for one page plus the look-ahead row.
func LimitPlusOne() int { return PageSize + 1 }

// ParseStart reads the 1-based "start" query parameter. Missing or invalid
// values mean 1.
func ParseStart(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "start"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Skip is the number of rows before start.
func Skip(start int) int {
	if start < 1 {
		return 0
	}
	return start - 1
}

// Page describes the rows shown and the neighbouring pages.
type Page struct {
	Start     int // 1-based index of the first row shown, 0 when empty
	End       int // 1-based index of the last row shown, 0 when empty
	HasPrev   bool
	HasNext   bool
	PrevStart int
	NextStart int
}

// Trim drops the look-ahead row from rows, fetched with LimitPlusOne from
// Skip(start), and describes the resulting page.
func Trim[T any](rows *[]T, start int) Page {
	if start < 1 {
		start = 1
	}
	p := Page{HasPrev: start > 1}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		p.HasNext = true
	}

	p.PrevStart = start - PageSize
	if p.PrevStart < 1 {
		p.PrevStart = 1
	}
	if n := len(*rows); n > 0 {
		p.Start = start
		p.End = start + n - 1
		p.NextStart = p.End + 1
	} else {
		p.NextStart = start
	}
	return p
}
