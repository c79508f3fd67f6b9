package directory

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

// collate.Collator keeps scratch buffers and is not safe for concurrent use.
var collators = sync.Pool{
	New: func() interface{} { return collate.New(language.Korean) },
}

// NormalizeSearch trims and case-folds search input the same way for the query and the haystack.
func NormalizeSearch(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// KnownSortKey reports whether Compute orders by key. Unknown keys keep input order.
func KnownSortKey(key models.SortKey) bool {
	switch key {
	case models.SortByName, models.SortByMemberCount, models.SortByCategory, models.SortByEstablishedYear:
		return true
	}
	return false
}

// Compute filters and orders clubs for q. The result is a new slice; clubs is left untouched.
func Compute(clubs []models.Club, q models.QueryState) []models.Club {
	needle := NormalizeSearch(q.Search)

	out := make([]models.Club, 0, len(clubs))
	for _, c := range clubs {
		if needle != "" && !matchesSearch(c, needle) {
			continue
		}
		if !matchesCategory(c, q.Category) {
			continue
		}
		out = append(out, c)
	}

	sortClubs(out, q.Sort)
	return out
}

// matchesSearch is literal substring containment on name, description or any activity.
func matchesSearch(c models.Club, needle string) bool {
	if strings.Contains(NormalizeSearch(c.Name), needle) {
		return true
	}
	if strings.Contains(NormalizeSearch(c.Description), needle) {
		return true
	}
	for _, activity := range c.Activities {
		if strings.Contains(NormalizeSearch(activity), needle) {
			return true
		}
	}
	return false
}

func matchesCategory(c models.Club, filter models.CategoryFilter) bool {
	switch filter {
	case "", models.FilterAll:
		return true
	case models.FilterRecruiting:
		return c.IsRecruiting
	default:
		return c.Category.String() == string(filter)
	}
}

// sortClubs orders in place with a stable sort so ties keep their input order.
func sortClubs(clubs []models.Club, key models.SortKey) {
	switch key {
	case models.SortByName:
		col := collators.Get().(*collate.Collator)
		defer collators.Put(col)
		sort.SliceStable(clubs, func(i, j int) bool {
			return col.CompareString(clubs[i].Name, clubs[j].Name) < 0
		})
	case models.SortByMemberCount:
		sort.SliceStable(clubs, func(i, j int) bool {
			return clubs[i].MemberCount > clubs[j].MemberCount
		})
	case models.SortByCategory:
		col := collators.Get().(*collate.Collator)
		defer collators.Put(col)
		sort.SliceStable(clubs, func(i, j int) bool {
			return col.CompareString(clubs[i].Category.Label(), clubs[j].Category.Label()) < 0
		})
	case models.SortByEstablishedYear:
		sort.SliceStable(clubs, func(i, j int) bool {
			return clubs[i].EstablishedYear > clubs[j].EstablishedYear
		})
	}
}
