package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// OffreRepository handles database operations for travel offers
type OffreRepository struct {
	db db.Executor
}

// NewOffreRepository creates a new OffreRepository
func NewOffreRepository(ex db.Executor) *OffreRepository {
	return &OffreRepository{db: ex}
}

func offreListQuery(search string) squirrel.SelectBuilder {
	q := psql.Select("*").From("offres")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(ilikeAny(helpers.Contains(s), "nom", "hotel"))
	}
	return q.OrderBy("created_at DESC", "id DESC")
}

// List returns offers matching search on nom or hotel.
func (r *OffreRepository) List(ctx context.Context, search string) ([]models.Offre, error) {
	items, err := db.SelectBuilt[models.Offre](ctx, r.db, offreListQuery(search))
	if err != nil {
		return nil, fmt.Errorf("error listing offres: %w", err)
	}
	return items, nil
}

// GetByID retrieves an offer by ID
func (r *OffreRepository) GetByID(ctx context.Context, id int64) (*models.Offre, error) {
	item, err := db.GetBuilt[models.Offre](ctx, r.db, psql.Select("*").From("offres").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving offre: %w", err)
	}
	return item, nil
}

// Create inserts an offer.
func (r *OffreRepository) Create(ctx context.Context, o *models.Offre) error {
	q := psql.Insert("offres").
		Columns("nom", "prix", "hotel", "date_depart", "date_arrivee").
		Values(o.Nom, o.Prix, o.Hotel, o.DateDepart, o.DateArrivee).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.Offre](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating offre: %w", err)
	}
	*o = *created
	return nil
}

// Update replaces every column of the offer.
func (r *OffreRepository) Update(ctx context.Context, o *models.Offre) error {
	q := psql.Update("offres").
		Set("nom", o.Nom).
		Set("prix", o.Prix).
		Set("hotel", o.Hotel).
		Set("date_depart", o.DateDepart).
		Set("date_arrivee", o.DateArrivee).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": o.ID}).
		Suffix("RETURNING *")

	updated, err := db.GetBuilt[models.Offre](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating offre: %w", err)
	}
	*o = *updated
	return nil
}

// Delete removes an offer, returning db.ErrNotFound when absent.
func (r *OffreRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.ExecuteBuilt(ctx, r.db, psql.Delete("offres").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting offre: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
