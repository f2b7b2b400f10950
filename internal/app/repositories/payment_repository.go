package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
)

// PaymentConstraintRef is the unique constraint on payments.ref.
const PaymentConstraintRef = "payments_ref_key"

// UnfilteredLimit caps listings requested without any filter.
const UnfilteredLimit = 1000

// PaymentFilter narrows a payment listing. Zero values are ignored.
type PaymentFilter struct {
	Passeport string
	Du        pgtype.Date
	Au        pgtype.Date
}

func (f PaymentFilter) empty() bool {
	return f.Passeport == "" && !f.Du.Valid && !f.Au.Valid
}

// PaymentRepository handles database operations for payments
type PaymentRepository struct {
	db db.Executor
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(ex db.Executor) *PaymentRepository {
	return &PaymentRepository{db: ex}
}

func paymentListQuery(f PaymentFilter) squirrel.SelectBuilder {
	q := psql.Select("*").From("payments")
	if f.Passeport != "" {
		q = q.Where(squirrel.Eq{"passeport": f.Passeport})
	}
	if f.Du.Valid {
		q = q.Where(squirrel.GtOrEq{"date": f.Du})
	}
	if f.Au.Valid {
		q = q.Where(squirrel.LtOrEq{"date": f.Au})
	}
	q = q.OrderBy("date DESC", "id DESC")
	if f.empty() {
		q = q.Limit(UnfilteredLimit)
	}
	return q
}

// List returns payments matching f, newest first.
func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	items, err := db.SelectBuilt[models.Payment](ctx, r.db, paymentListQuery(f))
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	return items, nil
}

// ListByPassports returns the payments of any of passports.
func (r *PaymentRepository) ListByPassports(ctx context.Context, passports []string) ([]models.Payment, error) {
	if len(passports) == 0 {
		return []models.Payment{}, nil
	}
	q := psql.Select("*").From("payments").
		Where("passeport = ANY(?)", passports).
		OrderBy("date DESC", "id DESC")

	items, err := db.SelectBuilt[models.Payment](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error listing payments by passports: %w", err)
	}
	return items, nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	item, err := db.GetBuilt[models.Payment](ctx, r.db, psql.Select("*").From("payments").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving payment: %w", err)
	}
	return item, nil
}

// Create inserts a payment. A reference collision surfaces as a unique
// violation on PaymentConstraintRef.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	q := psql.Insert("payments").
		Columns("ref", "passeport", "nom", "prenoms", "mode", "montant", "total_du", "reduction", "date", "statut").
		Values(p.Ref, p.Passeport, p.Nom, p.Prenoms, p.Mode, p.Montant, p.TotalDu, p.Reduction, p.Date, p.Statut).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.Payment](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating payment: %w", err)
	}
	*p = *created
	return nil
}

// Delete removes a payment, returning db.ErrNotFound when absent.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.ExecuteBuilt(ctx, r.db, psql.Delete("payments").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting payment: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
