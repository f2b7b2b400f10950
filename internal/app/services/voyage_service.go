package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/dberrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	msgVoyageNotFound    = "Voyage introuvable"
	msgVoyageExists      = "Ce voyage existe déjà pour cette année."
	msgVoyageDuplicate   = "Un voyage identique existe déjà."
	msgVoyageInvalidName = "nom doit être 'HAJJ' ou 'OUMRAH'"
)

// VoyageStore is the persistence needed by VoyageService.
type VoyageStore interface {
	List(ctx context.Context, nom string, annee int) ([]models.Voyage, error)
	GetByID(ctx context.Context, id int64) (*models.Voyage, error)
	Exists(ctx context.Context, nom string, annee int, excludeID int64) (bool, error)
	Create(ctx context.Context, v *models.Voyage) error
	Update(ctx context.Context, v *models.Voyage) error
	Delete(ctx context.Context, id int64) error
}

// VoyageService manages the yearly HAJJ and OUMRAH campaigns.
type VoyageService interface {
	ListVoyages(ctx context.Context, nom string, annee int) ([]models.Voyage, error)
	GetVoyage(ctx context.Context, id int64) (*models.Voyage, error)
	CreateVoyage(ctx context.Context, in dto.Payload) (*models.Voyage, error)
	UpdateVoyage(ctx context.Context, id int64, in dto.Payload) (*models.Voyage, error)
	DeleteVoyage(ctx context.Context, id int64) error
}

type voyageServiceImpl struct {
	repo   VoyageStore
	logger zerolog.Logger
}

// NewVoyageService creates a new VoyageService
func NewVoyageService(repo VoyageStore, logger zerolog.Logger) VoyageService {
	return &voyageServiceImpl{repo: repo, logger: logger}
}

func normalizeVoyageName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func validateVoyage(v *models.Voyage) error {
	if !enums.VoyageName(v.Nom).Valid() {
		return apperrors.NewBadRequestError(msgVoyageInvalidName)
	}
	if v.Annee < validation.VoyageMinYear || v.Annee > validation.VoyageMaxYear {
		return apperrors.NewBadRequestError("Année invalide")
	}
	if v.Offres != nil && len([]rune(*v.Offres)) > validation.VoyageOffresMax {
		return apperrors.NewBadRequestError("Le champ 'offres' est trop long (max 5000 caractères).")
	}
	return nil
}

// payloadYear reads annee, reporting -1 for a value that is present but not a number.
func payloadYear(in dto.Payload) int {
	annee, ok := in.Int("annee")
	if !ok {
		return -1
	}
	return annee
}

func (s *voyageServiceImpl) ListVoyages(ctx context.Context, nom string, annee int) ([]models.Voyage, error) {
	return s.repo.List(ctx, normalizeVoyageName(nom), annee)
}

func (s *voyageServiceImpl) GetVoyage(ctx context.Context, id int64) (*models.Voyage, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgVoyageNotFound)
	}
	return v, nil
}

func (s *voyageServiceImpl) CreateVoyage(ctx context.Context, in dto.Payload) (*models.Voyage, error) {
	v := &models.Voyage{
		Nom:    normalizeVoyageName(in.String("nom")),
		Annee:  payloadYear(in),
		Offres: helpers.NullIfBlank(in.String("offres")),
	}
	if err := validateVoyage(v); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, v.Nom, v.Annee, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError(msgVoyageExists)
	}

	if err := s.repo.Create(ctx, v); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.VoyageConstraintNomAnnee) {
			return nil, apperrors.NewConflictError(msgVoyageExists)
		}
		return nil, err
	}
	return v, nil
}

// UpdateVoyage keeps the current value of every field absent from in.
func (s *voyageServiceImpl) UpdateVoyage(ctx context.Context, id int64, in dto.Payload) (*models.Voyage, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgVoyageNotFound)
	}

	v := &models.Voyage{ID: id, Nom: current.Nom, Annee: current.Annee, Offres: current.Offres}
	if in.Has("nom") {
		v.Nom = normalizeVoyageName(in.String("nom"))
	}
	if in.Has("annee") {
		v.Annee = payloadYear(in)
	}
	if in.Has("offres") {
		v.Offres = helpers.NullIfBlank(in.String("offres"))
	}
	if err := validateVoyage(v); err != nil {
		return nil, err
	}

	if v.Nom != current.Nom || v.Annee != current.Annee {
		exists, err := s.repo.Exists(ctx, v.Nom, v.Annee, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflictError(msgVoyageDuplicate)
		}
	}

	if err := s.repo.Update(ctx, v); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.VoyageConstraintNomAnnee) {
			return nil, apperrors.NewConflictError(msgVoyageDuplicate)
		}
		return nil, notFound(err, msgVoyageNotFound)
	}
	return v, nil
}

func (s *voyageServiceImpl) DeleteVoyage(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id), msgVoyageNotFound)
}
