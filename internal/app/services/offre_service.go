package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

const msgOffreNotFound = "Offre introuvable"

// OffreStore is the persistence needed by OffreService.
type OffreStore interface {
	List(ctx context.Context, search string) ([]models.Offre, error)
	GetByID(ctx context.Context, id int64) (*models.Offre, error)
	Create(ctx context.Context, o *models.Offre) error
	Update(ctx context.Context, o *models.Offre) error
	Delete(ctx context.Context, id int64) error
}

// OffreService manages travel offers.
type OffreService interface {
	ListOffres(ctx context.Context, search string) ([]models.Offre, error)
	GetOffre(ctx context.Context, id int64) (*models.Offre, error)
	CreateOffre(ctx context.Context, in dto.Payload) (*models.Offre, error)
	UpdateOffre(ctx context.Context, id int64, in dto.Payload) (*models.Offre, error)
	DeleteOffre(ctx context.Context, id int64) error
}

type offreServiceImpl struct {
	repo   OffreStore
	logger zerolog.Logger
}

// NewOffreService creates a new OffreService
func NewOffreService(repo OffreStore, logger zerolog.Logger) OffreService {
	return &offreServiceImpl{repo: repo, logger: logger}
}

// offreFromPayload reads an offer from snake_case or camelCase keys.
func offreFromPayload(in dto.Payload) (*models.Offre, error) {
	missing := apperrors.NewBadRequestError("Champs requis manquants")

	nom := in.String("nom")
	hotel := in.String("hotel")
	prix, hasPrix := in.Float("prix")
	rawDepart := in.String("date_depart", "dateDepart")
	rawArrivee := in.String("date_arrivee", "dateArrivee")
	if nom == "" || hotel == "" || !hasPrix || prix == 0 || rawDepart == "" || rawArrivee == "" {
		return nil, missing
	}

	depart, err := helpers.ParseDate(rawDepart)
	if err != nil {
		return nil, apperrors.NewBadRequestError(msgInvalidDate)
	}
	arrivee, err := helpers.ParseDate(rawArrivee)
	if err != nil {
		return nil, apperrors.NewBadRequestError(msgInvalidDate)
	}

	return &models.Offre{
		Nom:         nom,
		Prix:        prix,
		Hotel:       hotel,
		DateDepart:  depart,
		DateArrivee: arrivee,
	}, nil
}

func (s *offreServiceImpl) ListOffres(ctx context.Context, search string) ([]models.Offre, error) {
	return s.repo.List(ctx, search)
}

func (s *offreServiceImpl) GetOffre(ctx context.Context, id int64) (*models.Offre, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgOffreNotFound)
	}
	return o, nil
}

func (s *offreServiceImpl) CreateOffre(ctx context.Context, in dto.Payload) (*models.Offre, error) {
	o, err := offreFromPayload(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *offreServiceImpl) UpdateOffre(ctx context.Context, id int64, in dto.Payload) (*models.Offre, error) {
	o, err := offreFromPayload(in)
	if err != nil {
		return nil, err
	}
	o.ID = id
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, notFound(err, msgOffreNotFound)
	}
	return o, nil
}

func (s *offreServiceImpl) DeleteOffre(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id), msgOffreNotFound)
}
