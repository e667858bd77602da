// Package pagination converts page numbers into store ranges.
//
// Every range in this module is half-open: [Start, End). GROQ expresses it as
// [$start...$end] and SQL as LIMIT End-Start OFFSET Start.
//
// HasMore is a heuristic: a full page means "there may be more". When the
// total count is an exact multiple of the page size the caller is offered one
// extra page that comes back empty. Clients treat an empty page as the end.
// MoreAfter is exact and is used where the total is known.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sakif/tweetfeed/internal/apperror"
)

// MaxPerPage bounds the page size a caller may request.
const MaxPerPage = 50

// Range is the half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of positions covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// ComputeRange returns the range for a zero-based page of perPage items.
// Negative pages and out-of-bounds page sizes are rejected, not clamped.
func ComputeRange(page, perPage int) (Range, error) {
	if page < 0 {
		return Range{}, apperror.ValidationFailed("page", "page must not be negative")
	}
	if perPage <= 0 {
		return Range{}, apperror.ValidationFailed("perPage", "perPage must be positive")
	}
	if perPage > MaxPerPage {
		return Range{}, apperror.ValidationFailed("perPage",
			fmt.Sprintf("perPage must be %d or less", MaxPerPage))
	}
	start := page * perPage
	return Range{Start: start, End: start + perPage}, nil
}

// HasMore reports whether another page may exist.
func HasMore(returned, perPage int) bool {
	return returned == perPage
}

// MoreAfter reports whether items exist past r when the total is known.
// Unlike HasMore it is exact when total is a multiple of the page size.
func MoreAfter(r Range, total int) bool {
	return r.End < total
}

// ParseInt parses an untrusted query value. Empty or non-numeric input yields def.
func ParseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
