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

// MedicaleRepository handles database operations for medical forms
type MedicaleRepository struct {
	db db.Executor
}

// NewMedicaleRepository creates a new MedicaleRepository
func NewMedicaleRepository(ex db.Executor) *MedicaleRepository {
	return &MedicaleRepository{db: ex}
}

func medicaleFilter(search string) squirrel.Sqlizer {
	s := strings.TrimSpace(search)
	if s == "" {
		return squirrel.Expr("TRUE")
	}
	return ilikeAny(helpers.Contains(s), "passeport", "nom", "prenoms", "numero_cmah")
}

func medicaleListQuery(search string, limit, offset int) squirrel.SelectBuilder {
	return psql.Select("*").From("medicales").
		Where(medicaleFilter(search)).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
}

// List returns one page of forms and the total count for search.
func (r *MedicaleRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Medicale, int64, error) {
	items, err := db.SelectBuilt[models.Medicale](ctx, r.db, medicaleListQuery(search, limit, offset))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing medicales: %w", err)
	}
	total, err := db.Count(ctx, r.db, psql.Select("COUNT(*)").From("medicales").Where(medicaleFilter(search)))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting medicales: %w", err)
	}
	return items, total, nil
}

// ListByPassport returns every form for passport, ignoring case.
func (r *MedicaleRepository) ListByPassport(ctx context.Context, passport string) ([]models.Medicale, error) {
	q := psql.Select("*").From("medicales").
		Where("UPPER(passeport) = UPPER(?)", passport).
		OrderBy("id DESC")

	items, err := db.SelectBuilt[models.Medicale](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error listing medicales by passport: %w", err)
	}
	return items, nil
}

// GetByID retrieves a form by ID
func (r *MedicaleRepository) GetByID(ctx context.Context, id int64) (*models.Medicale, error) {
	item, err := db.GetBuilt[models.Medicale](ctx, r.db, psql.Select("*").From("medicales").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving medicale: %w", err)
	}
	return item, nil
}

// Create inserts the given column values.
func (r *MedicaleRepository) Create(ctx context.Context, values map[string]any) (*models.Medicale, error) {
	item, err := db.GetBuilt[models.Medicale](ctx, r.db, psql.Insert("medicales").SetMap(values).Suffix("RETURNING *"))
	if err != nil {
		return nil, fmt.Errorf("error creating medicale: %w", err)
	}
	return item, nil
}

// Update sets the given columns, returning db.ErrNotFound when the row is absent.
func (r *MedicaleRepository) Update(ctx context.Context, id int64, values map[string]any) (*models.Medicale, error) {
	q := psql.Update("medicales").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING *")

	item, err := db.GetBuilt[models.Medicale](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error updating medicale: %w", err)
	}
	return item, nil
}

// Delete removes a form, returning db.ErrNotFound when absent.
func (r *MedicaleRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.ExecuteBuilt(ctx, r.db, psql.Delete("medicales").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting medicale: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
