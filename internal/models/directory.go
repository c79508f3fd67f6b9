package models

import "strings"

// CategoryFilter selects which clubs survive the category step: "all", "recruiting" or a category key.
type CategoryFilter string

const (
	FilterAll        CategoryFilter = "all"
	FilterRecruiting CategoryFilter = "recruiting"
)

// FilterFor returns the filter that keeps a single category.
func FilterFor(c Category) CategoryFilter { return CategoryFilter(c.String()) }

// ParseCategoryFilter validates raw input. Empty input means FilterAll.
func ParseCategoryFilter(raw string) (CategoryFilter, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch key {
	case "", string(FilterAll):
		return FilterAll, true
	case string(FilterRecruiting):
		return FilterRecruiting, true
	}
	if c, ok := ParseCategory(key); ok {
		return FilterFor(c), true
	}
	return "", false
}

// SortKey is the ordering applied after filtering.
type SortKey string

const (
	SortByName            SortKey = "name"
	SortByMemberCount     SortKey = "memberCount"
	SortByCategory        SortKey = "category"
	SortByEstablishedYear SortKey = "establishedYear"
)

var sortAliases = map[string]SortKey{
	"name":            SortByName,
	"membercount":     SortByMemberCount,
	"members":         SortByMemberCount,
	"member_count":    SortByMemberCount,
	"category":        SortByCategory,
	"establishedyear": SortByEstablishedYear,
	"established":     SortByEstablishedYear,
	"newest":          SortByEstablishedYear,
}

// ParseSortKey resolves a sort key, accepting the legacy front-end spellings. Empty input means SortByName.
func ParseSortKey(raw string) (SortKey, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return SortByName, true
	}
	k, ok := sortAliases[key]
	return k, ok
}

// QueryState is the current search/filter/sort/page selection of one directory view.
type QueryState struct {
	Search   string         `json:"search"`
	Category CategoryFilter `json:"category"`
	Sort     SortKey        `json:"sort"`
	Page     int            `json:"page"`
}

// DefaultQueryState is the state a fresh directory view starts from.
func DefaultQueryState() QueryState {
	return QueryState{Category: FilterAll, Sort: SortByName, Page: 1}
}

// DirectoryStats aggregates the whole store, independent of the current query.
type DirectoryStats struct {
	TotalClubs      int `json:"total_clubs"`
	RecruitingClubs int `json:"recruiting_clubs"`
	TotalMembers    int `json:"total_members"`
	Categories      int `json:"categories"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalCount  int   `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PageNumbers []int `json:"page_numbers,omitempty"`
}
