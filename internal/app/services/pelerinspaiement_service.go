package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	pelerinPaiementDefaultLimit = 300
	pelerinPaiementMaxLimit     = 1000
	allOffres                   = "TOUTES"
)

// PelerinOffreStore lists pilgrims with the price of their offer.
type PelerinOffreStore interface {
	List(ctx context.Context, search, offre string, limit int) ([]models.PelerinOffre, error)
	GetByPassport(ctx context.Context, passport string) (*models.PelerinOffre, error)
}

// PaymentsByPassport loads the payments of a set of passports.
type PaymentsByPassport interface {
	ListByPassports(ctx context.Context, passports []string) ([]models.Payment, error)
}

// PelerinPaiementQuery filters the payment screen.
type PelerinPaiementQuery struct {
	Search string
	Offre  string
	Limit  int
	// BaseURL prefixes relative photo paths, e.g. "https://api.example.com".
	BaseURL string
}

// PelerinPaiementService joins pilgrims, offer prices and payments.
type PelerinPaiementService interface {
	List(ctx context.Context, q PelerinPaiementQuery) (*dto.PelerinsPaiementResponse, error)
	GetByPassport(ctx context.Context, passport, baseURL string) (*dto.PelerinPaiementByPassportResponse, error)
}

type pelerinPaiementServiceImpl struct {
	pelerins PelerinOffreStore
	payments PaymentsByPassport
	logger   zerolog.Logger
}

// NewPelerinPaiementService creates a new PelerinPaiementService
func NewPelerinPaiementService(pelerins PelerinOffreStore, payments PaymentsByPassport, logger zerolog.Logger) PelerinPaiementService {
	return &pelerinPaiementServiceImpl{pelerins: pelerins, payments: payments, logger: logger}
}

// PublicURL makes a stored path absolute against baseURL. Absolute URLs are
// kept as they are.
func PublicURL(baseURL string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	p := *path
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return &p
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	out := baseURL + p
	return &out
}

func pelerinPaiementView(row *models.PelerinOffre, baseURL string) dto.PelerinPaiementView {
	var prix float64
	if row.PrixOffre != nil {
		prix = *row.PrixOffre
	}
	return dto.PelerinPaiementView{
		ID:             row.ID,
		Nom:            row.Nom,
		Prenoms:        row.Prenoms,
		Passeport:      row.NumPasseport,
		Offre:          row.Offre,
		PrixOffre:      prix,
		PhotoPelerin:   PublicURL(baseURL, row.PhotoPelerinPath),
		PhotoPasseport: PublicURL(baseURL, row.PhotoPasseportPath),
		Contact:        helpers.NullIfBlank(row.Contact),
	}
}

func nonNilPayments(p []models.Payment) []models.Payment {
	if p == nil {
		return []models.Payment{}
	}
	return p
}

// List returns the matching pilgrims and the payments of their passports.
func (s *pelerinPaiementServiceImpl) List(ctx context.Context, q PelerinPaiementQuery) (*dto.PelerinsPaiementResponse, error) {
	offre := strings.TrimSpace(q.Offre)
	if strings.EqualFold(offre, allOffres) {
		offre = ""
	}
	limit := helpers.ClampLimit(q.Limit, pelerinPaiementDefaultLimit, pelerinPaiementMaxLimit)

	rows, err := s.pelerins.List(ctx, q.Search, offre, limit)
	if err != nil {
		return nil, err
	}

	views := make([]dto.PelerinPaiementView, 0, len(rows))
	passports := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		views = append(views, pelerinPaiementView(&rows[i], q.BaseURL))
		pp := rows[i].NumPasseport
		if _, dup := seen[pp]; pp != "" && !dup {
			seen[pp] = struct{}{}
			passports = append(passports, pp)
		}
	}

	payments, err := s.payments.ListByPassports(ctx, passports)
	if err != nil {
		return nil, err
	}
	return &dto.PelerinsPaiementResponse{Pelerins: views, Payments: nonNilPayments(payments)}, nil
}

// GetByPassport loads the pilgrim and its payments concurrently. A missing
// pilgrim yields a nil Pelerin, not an error.
func (s *pelerinPaiementServiceImpl) GetByPassport(ctx context.Context, passport, baseURL string) (*dto.PelerinPaiementByPassportResponse, error) {
	passport = validation.NormalizePassport(passport)
	if passport == "" {
		return nil, apperrors.NewBadRequestError("Paramètre 'passport' requis.")
	}

	var (
		row      *models.PelerinOffre
		payments []models.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.pelerins.GetByPassport(gctx, passport)
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		row = found
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListByPassports(gctx, []string{passport})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.PelerinPaiementByPassportResponse{Payments: nonNilPayments(payments)}
	if row != nil {
		view := pelerinPaiementView(row, baseURL)
		resp.Pelerin = &view
	}
	return resp, nil
}
