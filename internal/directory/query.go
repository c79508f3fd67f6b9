package directory

import (
	"fmt"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

// IntentKind names one of the inputs the directory accepts.
type IntentKind string

const (
	IntentSearch    IntentKind = "search"
	IntentCategory  IntentKind = "category"
	IntentSort      IntentKind = "sort"
	IntentPage      IntentKind = "page"
	IntentPageDelta IntentKind = "page_delta"
)

// ParseIntentKind validates a raw intent name.
func ParseIntentKind(raw string) (IntentKind, error) {
	k := IntentKind(raw)
	switch k {
	case IntentSearch, IntentCategory, IntentSort, IntentPage, IntentPageDelta:
		return k, nil
	}
	return "", fmt.Errorf("unknown intent %q", raw)
}

// OnSearch stores the normalised search text and returns to the first page.
func OnSearch(q models.QueryState, text string) models.QueryState {
	q.Search = NormalizeSearch(text)
	q.Page = 1
	return q
}

// OnCategory switches the category filter and returns to the first page.
func OnCategory(q models.QueryState, filter models.CategoryFilter) models.QueryState {
	q.Category = filter
	q.Page = 1
	return q
}

// OnSort changes the ordering. The page number is kept.
func OnSort(q models.QueryState, key models.SortKey) models.QueryState {
	q.Sort = key
	return q
}

// OnPageRequest moves to page n. Requests outside [1, totalPages] leave the state unchanged.
func OnPageRequest(q models.QueryState, n, totalPages int) (models.QueryState, bool) {
	if n < 1 || n > totalPages || n == q.Page {
		return q, false
	}
	q.Page = n
	return q, true
}

// OnPageDelta moves by delta pages, with the same out-of-range policy as OnPageRequest.
func OnPageDelta(q models.QueryState, delta, totalPages int) (models.QueryState, bool) {
	return OnPageRequest(q, q.Page+delta, totalPages)
}

// Settle runs after a recompute: a page past the end of the result resets to 1.
func Settle(q models.QueryState, totalPages int) models.QueryState {
	if q.Page < 1 || q.Page > totalPages {
		q.Page = 1
	}
	return q
}
