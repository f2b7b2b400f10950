package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
)

// VoyageConstraintNomAnnee is the unique constraint on (nom, annee).
const VoyageConstraintNomAnnee = "voyages_nom_annee_key"

// VoyageRepository handles database operations for voyages
type VoyageRepository struct {
	db db.Executor
}

// NewVoyageRepository creates a new VoyageRepository
func NewVoyageRepository(ex db.Executor) *VoyageRepository {
	return &VoyageRepository{db: ex}
}

func voyageListQuery(nom string, annee int) squirrel.SelectBuilder {
	q := psql.Select("*").From("voyages")
	if nom != "" {
		q = q.Where(squirrel.Eq{"nom": nom})
	}
	if annee > 0 {
		q = q.Where(squirrel.Eq{"annee": annee})
	}
	return q.OrderBy("annee DESC", "nom ASC")
}

// List returns voyages, optionally filtered by nom and annee.
func (r *VoyageRepository) List(ctx context.Context, nom string, annee int) ([]models.Voyage, error) {
	items, err := db.SelectBuilt[models.Voyage](ctx, r.db, voyageListQuery(nom, annee))
	if err != nil {
		return nil, fmt.Errorf("error listing voyages: %w", err)
	}
	return items, nil
}

// GetByID retrieves a voyage by ID
func (r *VoyageRepository) GetByID(ctx context.Context, id int64) (*models.Voyage, error) {
	item, err := db.GetBuilt[models.Voyage](ctx, r.db, psql.Select("*").From("voyages").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving voyage: %w", err)
	}
	return item, nil
}

// Exists reports whether another voyage already uses (nom, annee).
func (r *VoyageRepository) Exists(ctx context.Context, nom string, annee int, excludeID int64) (bool, error) {
	q := psql.Select("COUNT(*)").From("voyages").Where(squirrel.Eq{"nom": nom, "annee": annee})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	n, err := db.Count(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("error checking voyage: %w", err)
	}
	return n > 0, nil
}

// Create inserts a voyage.
func (r *VoyageRepository) Create(ctx context.Context, v *models.Voyage) error {
	q := psql.Insert("voyages").
		Columns("nom", "annee", "offres").
		Values(v.Nom, v.Annee, v.Offres).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.Voyage](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating voyage: %w", err)
	}
	*v = *created
	return nil
}

// Update replaces nom, annee and offres.
func (r *VoyageRepository) Update(ctx context.Context, v *models.Voyage) error {
	q := psql.Update("voyages").
		Set("nom", v.Nom).
		Set("annee", v.Annee).
		Set("offres", v.Offres).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": v.ID}).
		Suffix("RETURNING *")

	updated, err := db.GetBuilt[models.Voyage](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating voyage: %w", err)
	}
	*v = *updated
	return nil
}

// Delete removes a voyage, returning db.ErrNotFound when absent.
func (r *VoyageRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.ExecuteBuilt(ctx, r.db, psql.Delete("voyages").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting voyage: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
