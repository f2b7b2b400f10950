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

// PelerinRepository handles database operations for pilgrims
type PelerinRepository struct {
	db db.Executor
}

// NewPelerinRepository creates a new PelerinRepository
func NewPelerinRepository(ex db.Executor) *PelerinRepository {
	return &PelerinRepository{db: ex}
}

func pelerinListQuery(search string) squirrel.SelectBuilder {
	q := psql.Select("*").From("pelerins")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(ilikeAny(helpers.Contains(s), "nom", "prenoms", "num_passeport", "contact", "created_by_name"))
	}
	return q.OrderBy("created_at DESC", "id DESC")
}

// List returns pilgrims matching search, newest first.
func (r *PelerinRepository) List(ctx context.Context, search string) ([]models.Pelerin, error) {
	items, err := db.SelectBuilt[models.Pelerin](ctx, r.db, pelerinListQuery(search))
	if err != nil {
		return nil, fmt.Errorf("error listing pelerins: %w", err)
	}
	return items, nil
}

// SearchByPassport returns up to limit pilgrims whose passport contains fragment.
func (r *PelerinRepository) SearchByPassport(ctx context.Context, fragment string, limit int) ([]models.PelerinMatch, error) {
	q := psql.Select("id", "nom", "prenoms", "num_passeport").
		From("pelerins").
		Where(squirrel.Like{"num_passeport": helpers.Contains(fragment)}).
		OrderBy("id DESC").
		Limit(uint64(limit))

	items, err := db.SelectBuilt[models.PelerinMatch](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error searching pelerins by passport: %w", err)
	}
	return items, nil
}

// GetByID retrieves a pilgrim by ID
func (r *PelerinRepository) GetByID(ctx context.Context, id int64) (*models.Pelerin, error) {
	item, err := db.GetBuilt[models.Pelerin](ctx, r.db, psql.Select("*").From("pelerins").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving pelerin: %w", err)
	}
	return item, nil
}

// FindIDByPassport returns the id of the latest pilgrim holding passport, or nil.
func (r *PelerinRepository) FindIDByPassport(ctx context.Context, passport string) (*int64, error) {
	q := psql.Select("id").From("pelerins").
		Where(squirrel.Eq{"num_passeport": passport}).
		OrderBy("id DESC").
		Limit(1)

	res, err := db.ExecuteBuilt(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error resolving pelerin by passport: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	id, ok := res.Rows[0]["id"].(int64)
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// Create inserts the given column values.
func (r *PelerinRepository) Create(ctx context.Context, values map[string]any) (*models.Pelerin, error) {
	q := psql.Insert("pelerins").SetMap(values).Suffix("RETURNING *")
	item, err := db.GetBuilt[models.Pelerin](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error creating pelerin: %w", err)
	}
	return item, nil
}

// Update sets the given columns, returning db.ErrNotFound when the row is absent.
func (r *PelerinRepository) Update(ctx context.Context, id int64, values map[string]any) (*models.Pelerin, error) {
	q := psql.Update("pelerins").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING *")

	item, err := db.GetBuilt[models.Pelerin](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error updating pelerin: %w", err)
	}
	return item, nil
}

// Delete removes a pilgrim and returns the deleted row.
func (r *PelerinRepository) Delete(ctx context.Context, id int64) (*models.Pelerin, error) {
	q := psql.Delete("pelerins").Where(squirrel.Eq{"id": id}).Suffix("RETURNING *")
	item, err := db.GetBuilt[models.Pelerin](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error deleting pelerin: %w", err)
	}
	return item, nil
}
