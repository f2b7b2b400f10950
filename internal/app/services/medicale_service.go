package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const msgInvalidMedicalePassport = "Le champ 'passeport' doit contenir 5 à 15 caractères alphanumériques."

// MedicaleStore is the persistence needed by MedicaleService.
type MedicaleStore interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Medicale, int64, error)
	ListByPassport(ctx context.Context, passport string) ([]models.Medicale, error)
	GetByID(ctx context.Context, id int64) (*models.Medicale, error)
	Create(ctx context.Context, values map[string]any) (*models.Medicale, error)
	Update(ctx context.Context, id int64, values map[string]any) (*models.Medicale, error)
	Delete(ctx context.Context, id int64) error
}

// PelerinResolver links a medical form to a pilgrim by passport.
type PelerinResolver interface {
	FindIDByPassport(ctx context.Context, passport string) (*int64, error)
}

// MedicaleService manages medical forms.
type MedicaleService interface {
	ListMedicales(ctx context.Context, search string, limit, offset int) ([]models.Medicale, int64, error)
	ListByPassport(ctx context.Context, passport string) ([]models.Medicale, error)
	GetMedicale(ctx context.Context, id int64) (*models.Medicale, error)
	CreateMedicale(ctx context.Context, in dto.Payload) (*models.Medicale, error)
	UpdateMedicale(ctx context.Context, id int64, in dto.Payload) (*models.Medicale, error)
	DeleteMedicale(ctx context.Context, id int64) error
}

type medicaleServiceImpl struct {
	repo     MedicaleStore
	pelerins PelerinResolver
	logger   zerolog.Logger
}

// NewMedicaleService creates a new MedicaleService
func NewMedicaleService(repo MedicaleStore, pelerins PelerinResolver, logger zerolog.Logger) MedicaleService {
	return &medicaleServiceImpl{repo: repo, pelerins: pelerins, logger: logger}
}

// ListMedicales clamps limit to 1..500 (default 100) and offset to >= 0.
func (s *medicaleServiceImpl) ListMedicales(ctx context.Context, search string, limit, offset int) ([]models.Medicale, int64, error) {
	limit = helpers.ClampLimit(limit, 100, 500)
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, search, limit, offset)
}

func (s *medicaleServiceImpl) ListByPassport(ctx context.Context, passport string) ([]models.Medicale, error) {
	passport = validation.NormalizePassport(passport)
	if passport == "" {
		return []models.Medicale{}, nil
	}
	return s.repo.ListByPassport(ctx, passport)
}

func (s *medicaleServiceImpl) GetMedicale(ctx context.Context, id int64) (*models.Medicale, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}
	return m, nil
}

// medicaleValues keeps the present columns, blanks becoming NULL.
func medicaleValues(in dto.Payload, all bool) map[string]any {
	values := make(map[string]any, len(models.MedicaleColumns))
	for _, col := range models.MedicaleColumns {
		if !all && !in.Has(col) {
			continue
		}
		values[col] = helpers.NullIfBlank(in.String(col))
	}
	return values
}

func (s *medicaleServiceImpl) resolvePelerin(ctx context.Context, passport string) *int64 {
	id, err := s.pelerins.FindIDByPassport(ctx, passport)
	if err != nil {
		s.logger.Warn().Err(err).Str("passport", passport).Msg("Failed to link medical form to pelerin")
		return nil
	}
	return id
}

func (s *medicaleServiceImpl) CreateMedicale(ctx context.Context, in dto.Payload) (*models.Medicale, error) {
	passport := validation.NormalizePassport(in.String("passeport"))
	if !validation.IsPassport(passport) {
		return nil, apperrors.NewBadRequestError(msgInvalidMedicalePassport)
	}

	values := medicaleValues(in, true)
	values["passeport"] = passport
	values["pelerin_id"] = s.resolvePelerin(ctx, passport)

	m, err := s.repo.Create(ctx, values)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("medicaleID", m.ID).Str("passport", passport).Msg("Medical form created")
	return m, nil
}

// UpdateMedicale applies the present fields; a new passport relinks the pilgrim.
func (s *medicaleServiceImpl) UpdateMedicale(ctx context.Context, id int64, in dto.Payload) (*models.Medicale, error) {
	values := medicaleValues(in, false)
	if _, ok := values["passeport"]; ok {
		passport := validation.NormalizePassport(in.String("passeport"))
		if passport == "" {
			delete(values, "passeport")
		} else {
			if !validation.IsPassport(passport) {
				return nil, apperrors.NewBadRequestError(msgInvalidMedicalePassport)
			}
			values["passeport"] = passport
			values["pelerin_id"] = s.resolvePelerin(ctx, passport)
		}
	}

	m, err := s.repo.Update(ctx, id, values)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}
	return m, nil
}

func (s *medicaleServiceImpl) DeleteMedicale(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id), msgIntrouvable)
}
