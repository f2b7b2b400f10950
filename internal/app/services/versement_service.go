package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	defaultVersementStatut = "En cours"
	versementDefaultLimit  = 1000
	versementMaxLimit      = 5000
)

// VersementStore is the persistence needed by VersementService.
type VersementStore interface {
	List(ctx context.Context, f repositories.VersementFilter) ([]models.Versement, error)
	Create(ctx context.Context, v *models.Versement) error
}

// VersementQuery holds the raw listing filters.
type VersementQuery struct {
	Passeport string
	Du        string
	Au        string
	Limit     int
}

// VersementService records installments.
type VersementService interface {
	ListVersements(ctx context.Context, q VersementQuery) ([]models.Versement, error)
	CreateVersement(ctx context.Context, in dto.Payload) (*models.Versement, error)
}

type versementServiceImpl struct {
	repo   VersementStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewVersementService creates a new VersementService
func NewVersementService(repo VersementStore, logger zerolog.Logger) VersementService {
	return &versementServiceImpl{repo: repo, now: time.Now, logger: logger}
}

func (s *versementServiceImpl) ListVersements(ctx context.Context, q VersementQuery) ([]models.Versement, error) {
	du, err := optionalDate(q.Du)
	if err != nil {
		return nil, err
	}
	au, err := optionalDate(q.Au)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repositories.VersementFilter{
		Passeport: validation.NormalizePassport(q.Passeport),
		Du:        du,
		Au:        au,
		Limit:     helpers.ClampLimit(q.Limit, versementDefaultLimit, versementMaxLimit),
	})
}

func (s *versementServiceImpl) CreateVersement(ctx context.Context, in dto.Payload) (*models.Versement, error) {
	passeport := validation.NormalizePassport(in.String("passeport"))
	if passeport == "" {
		return nil, apperrors.NewBadRequestError("Le champ 'passeport' est obligatoire.")
	}
	if len(passeport) > validation.PassportMaxLength {
		return nil, apperrors.NewBadRequestError(msgPassportTooLong)
	}
	nom := in.String("nom")
	if nom == "" {
		return nil, apperrors.NewBadRequestError("Le champ 'nom' est obligatoire.")
	}
	verse, ok := in.Float("verse")
	if !ok || verse <= 0 {
		return nil, apperrors.NewBadRequestError("Le champ 'verse' doit être un nombre > 0.")
	}
	restant := 0.0
	if in.Has("restant") && in.String("restant") != "" {
		restant, ok = in.Float("restant")
		if !ok || restant < 0 {
			return nil, apperrors.NewBadRequestError("Le champ 'restant' doit être un nombre ≥ 0.")
		}
	}

	echeance := helpers.DateOf(s.now())
	if raw := in.String("echeance"); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewBadRequestError(msgInvalidDate)
		}
		echeance = parsed
	}

	v := &models.Versement{
		Passeport: passeport,
		Nom:       nom,
		Prenoms:   helpers.NullIfBlank(in.String("prenoms")),
		Echeance:  echeance,
		Verse:     verse,
		Restant:   restant,
		Statut:    stringOr(in.String("statut"), defaultVersementStatut),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
