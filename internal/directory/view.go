package directory

import (
	"time"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

// View is everything a renderer needs after one recompute.
type View struct {
	Revision      uint64                `json:"revision"`
	Query         models.QueryState     `json:"query"`
	Clubs         []models.Club         `json:"clubs"`
	Pagination    models.Pagination     `json:"pagination"`
	Stats         models.DirectoryStats `json:"stats"`
	Empty         bool                  `json:"empty"`
	PendingSearch bool                  `json:"pending_search"`
	ComputedAt    time.Time             `json:"computed_at"`
}

// Recompute runs search → category → sort → paginate for a one-off query.
// The returned state carries the clamped page.
func Recompute(store *Store, q models.QueryState, pageSize int) (models.QueryState, Page) {
	filtered := Compute(store.clubs, q)
	page := Paginate(filtered, pageSize, q.Page)
	page.Items = cloneClubs(page.Items)
	q.Page = page.Page
	return q, page
}

// Top returns the first limit clubs ordered by key, ignoring search and category.
func Top(store *Store, key models.SortKey, limit int) []models.Club {
	ordered := Compute(store.clubs, models.QueryState{Category: models.FilterAll, Sort: key})
	if limit > 0 && limit < len(ordered) {
		ordered = ordered[:limit]
	}
	return cloneClubs(ordered)
}

// Filtered returns the complete ordered result for q without paging.
func Filtered(store *Store, q models.QueryState) []models.Club {
	return cloneClubs(Compute(store.clubs, q))
}

func cloneClubs(clubs []models.Club) []models.Club {
	out := make([]models.Club, len(clubs))
	for i, c := range clubs {
		out[i] = cloneClub(c)
	}
	return out
}
