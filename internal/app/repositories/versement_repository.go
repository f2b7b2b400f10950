package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
)

// VersementFilter narrows an installment listing; Du and Au bound the due date.
type VersementFilter struct {
	Passeport string
	Du        pgtype.Date
	Au        pgtype.Date
	Limit     int
}

// VersementRepository handles database operations for installments
type VersementRepository struct {
	db db.Executor
}

// NewVersementRepository creates a new VersementRepository
func NewVersementRepository(ex db.Executor) *VersementRepository {
	return &VersementRepository{db: ex}
}

func versementListQuery(f VersementFilter) squirrel.SelectBuilder {
	q := psql.Select("*").From("versements")
	if f.Passeport != "" {
		q = q.Where(squirrel.Eq{"passeport": f.Passeport})
	}
	if f.Du.Valid {
		q = q.Where(squirrel.GtOrEq{"echeance": f.Du})
	}
	if f.Au.Valid {
		q = q.Where(squirrel.LtOrEq{"echeance": f.Au})
	}
	return q.OrderBy("id DESC").Limit(uint64(f.Limit))
}

// List returns installments matching f, newest id first.
func (r *VersementRepository) List(ctx context.Context, f VersementFilter) ([]models.Versement, error) {
	items, err := db.SelectBuilt[models.Versement](ctx, r.db, versementListQuery(f))
	if err != nil {
		return nil, fmt.Errorf("error listing versements: %w", err)
	}
	return items, nil
}

// Create inserts an installment.
func (r *VersementRepository) Create(ctx context.Context, v *models.Versement) error {
	q := psql.Insert("versements").
		Columns("passeport", "nom", "prenoms", "echeance", "verse", "restant", "statut").
		Values(v.Passeport, v.Nom, v.Prenoms, v.Echeance, v.Verse, v.Restant, v.Statut).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.Versement](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating versement: %w", err)
	}
	*v = *created
	return nil
}
