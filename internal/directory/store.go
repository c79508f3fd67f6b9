// Package directory implements the club directory core: the read-only entity store, the
// filter-sort engine, the pager, the query state transitions and the interactive session
// that ties them together.
//
// Control flow for every change:
//
//	intent ──► QueryState ──► Compute (search → category → sort) ──► Paginate ──► View
//
// Every intent triggers a full recompute; there is no incremental path.
package directory

import (
	"fmt"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

// Store owns the canonical club list. It is populated once and read-only afterwards.
type Store struct {
	clubs []models.Club
	index map[int64]int
	stats models.DirectoryStats
}

// NewStore validates and copies clubs. Loading is all-or-nothing: one bad record rejects the set.
func NewStore(clubs []models.Club) (*Store, error) {
	s := &Store{
		clubs: make([]models.Club, 0, len(clubs)),
		index: make(map[int64]int, len(clubs)),
	}
	for i, club := range clubs {
		if _, dup := s.index[club.ID]; dup {
			return nil, fmt.Errorf("club %d: duplicate id", club.ID)
		}
		if !club.Category.Valid() {
			return nil, fmt.Errorf("club %d: invalid category", club.ID)
		}
		if club.MemberCount < 0 {
			return nil, fmt.Errorf("club %d: negative member count %d", club.ID, club.MemberCount)
		}
		if club.Name == "" {
			return nil, fmt.Errorf("club %d (#%d): empty name", club.ID, i)
		}
		c := cloneClub(club)
		c.CategoryLabel = c.Category.Label()
		s.index[c.ID] = len(s.clubs)
		s.clubs = append(s.clubs, c)
	}
	s.stats = computeStats(s.clubs)
	return s, nil
}

// Len returns the number of clubs.
func (s *Store) Len() int { return len(s.clubs) }

// All returns a deep copy of the clubs in load order.
func (s *Store) All() []models.Club {
	out := make([]models.Club, len(s.clubs))
	for i, c := range s.clubs {
		out[i] = cloneClub(c)
	}
	return out
}

// Find returns a copy of the club with the given id.
func (s *Store) Find(id int64) (models.Club, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Club{}, false
	}
	return cloneClub(s.clubs[i]), true
}

// Stats returns the aggregate counts of the whole store.
func (s *Store) Stats() models.DirectoryStats { return s.stats }

func computeStats(clubs []models.Club) models.DirectoryStats {
	var stats models.DirectoryStats
	seen := make(map[models.Category]struct{})
	for _, c := range clubs {
		stats.TotalClubs++
		stats.TotalMembers += c.MemberCount
		if c.IsRecruiting {
			stats.RecruitingClubs++
		}
		seen[c.Category] = struct{}{}
	}
	stats.Categories = len(seen)
	return stats
}

func cloneClub(c models.Club) models.Club {
	c.Activities = append([]string(nil), c.Activities...)
	c.Requirements = append([]string(nil), c.Requirements...)
	return c
}
