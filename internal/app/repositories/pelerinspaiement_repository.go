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

// PelerinPaiementRepository reads pilgrims joined with the price of their offer.
type PelerinPaiementRepository struct {
	db db.Executor
}

// NewPelerinPaiementRepository creates a new PelerinPaiementRepository
func NewPelerinPaiementRepository(ex db.Executor) *PelerinPaiementRepository {
	return &PelerinPaiementRepository{db: ex}
}

func pelerinOffreSelect() squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.nom", "p.prenoms", "p.num_passeport", "p.offre", "o.prix AS prix_offre",
		"p.photo_pelerin_path", "p.photo_passeport_path", "p.contact",
	).
		From("pelerins p").
		JoinClause("LEFT JOIN LATERAL (SELECT prix FROM offres WHERE offres.nom = p.offre ORDER BY offres.id DESC LIMIT 1) o ON TRUE")
}

func pelerinOffreListQuery(search, offre string, limit int) squirrel.SelectBuilder {
	q := pelerinOffreSelect()
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(ilikeAny(helpers.Contains(s), "p.nom", "p.prenoms", "p.num_passeport"))
	}
	if offre != "" {
		q = q.Where(squirrel.Eq{"p.offre": offre})
	}
	return q.OrderBy("p.created_at DESC", "p.id DESC").Limit(uint64(limit))
}

// List returns up to limit pilgrims matching search and offre.
func (r *PelerinPaiementRepository) List(ctx context.Context, search, offre string, limit int) ([]models.PelerinOffre, error) {
	items, err := db.SelectBuilt[models.PelerinOffre](ctx, r.db, pelerinOffreListQuery(search, offre, limit))
	if err != nil {
		return nil, fmt.Errorf("error listing pelerins with offre: %w", err)
	}
	return items, nil
}

// GetByPassport returns the latest pilgrim holding passport.
func (r *PelerinPaiementRepository) GetByPassport(ctx context.Context, passport string) (*models.PelerinOffre, error) {
	q := pelerinOffreSelect().
		Where(squirrel.Eq{"p.num_passeport": passport}).
		OrderBy("p.id DESC").
		Limit(1)

	item, err := db.GetBuilt[models.PelerinOffre](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error retrieving pelerin with offre: %w", err)
	}
	return item, nil
}
