package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

const selectClubs = `SELECT id, name, icon, category, description, activities, member_count, established_year,
        is_recruiting, schedule, location, contact, requirements
        FROM clubs ORDER BY id`

type clubRow struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	Icon            string          `db:"icon"`
	Category        models.Category `db:"category"`
	Description     string          `db:"description"`
	Activities      pq.StringArray  `db:"activities"`
	MemberCount     int             `db:"member_count"`
	EstablishedYear int             `db:"established_year"`
	IsRecruiting    bool            `db:"is_recruiting"`
	Schedule        string          `db:"schedule"`
	Location        string          `db:"location"`
	Contact         string          `db:"contact"`
	Requirements    pq.StringArray  `db:"requirements"`
}

func (r clubRow) toModel() models.Club {
	return models.Club{
		ID:              r.ID,
		Name:            r.Name,
		Icon:            r.Icon,
		Category:        r.Category,
		Description:     r.Description,
		Activities:      []string(r.Activities),
		MemberCount:     r.MemberCount,
		EstablishedYear: r.EstablishedYear,
		IsRecruiting:    r.IsRecruiting,
		Schedule:        r.Schedule,
		Location:        r.Location,
		Contact:         r.Contact,
		Requirements:    []string(r.Requirements),
	}
}

// ClubRepository reads the club directory from Postgres.
type ClubRepository struct {
	db *sqlx.DB
}

// NewClubRepository constructs a ClubRepository.
func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// LoadClubs returns every club ordered by id.
func (r *ClubRepository) LoadClubs(ctx context.Context) ([]models.Club, error) {
	var rows []clubRow
	if err := r.db.SelectContext(ctx, &rows, selectClubs); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	clubs := make([]models.Club, 0, len(rows))
	for _, row := range rows {
		clubs = append(clubs, row.toModel())
	}
	return clubs, nil
}

// Ping checks the connection backing the repository.
func (r *ClubRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
