package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/cleanup"
	"github.com/bmvt/backend/internal/pkg/filestorage"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const msgIntrouvable = "Introuvable"

// PelerinStore is the persistence needed by PelerinService.
type PelerinStore interface {
	List(ctx context.Context, search string) ([]models.Pelerin, error)
	SearchByPassport(ctx context.Context, fragment string, limit int) ([]models.PelerinMatch, error)
	GetByID(ctx context.Context, id int64) (*models.Pelerin, error)
	Create(ctx context.Context, values map[string]any) (*models.Pelerin, error)
	Update(ctx context.Context, id int64, values map[string]any) (*models.Pelerin, error)
	Delete(ctx context.Context, id int64) (*models.Pelerin, error)
}

// PelerinFiles holds the optional photo uploads of a pilgrim.
type PelerinFiles struct {
	Photo    *multipart.FileHeader
	Passport *multipart.FileHeader
}

// PelerinService manages pilgrim records and their photos.
type PelerinService interface {
	ListPelerins(ctx context.Context, search string) ([]models.Pelerin, error)
	SearchByPassport(ctx context.Context, fragment string) ([]models.PelerinMatch, error)
	GetPelerin(ctx context.Context, id int64) (*models.Pelerin, error)
	CreatePelerin(ctx context.Context, actor *Actor, in dto.Payload, files PelerinFiles) (*models.Pelerin, error)
	UpdatePelerin(ctx context.Context, id int64, in dto.Payload, files PelerinFiles) (*models.Pelerin, error)
	DeletePelerin(ctx context.Context, id int64) error
}

type pelerinServiceImpl struct {
	repo    PelerinStore
	users   UserLookup
	store   filestorage.FileStorage
	cleaner cleanup.Cleaner
	logger  zerolog.Logger
}

// NewPelerinService creates a new PelerinService
func NewPelerinService(repo PelerinStore, users UserLookup, store filestorage.FileStorage, cleaner cleanup.Cleaner, logger zerolog.Logger) PelerinService {
	return &pelerinServiceImpl{repo: repo, users: users, store: store, cleaner: cleaner, logger: logger}
}

type pelerinField struct {
	column   string
	keys     []string
	required bool
}

// pelerinFields maps columns to the request keys accepted for them.
var pelerinFields = []pelerinField{
	{column: "nom", keys: []string{"nom"}, required: true},
	{column: "prenoms", keys: []string{"prenoms"}, required: true},
	{column: "date_naissance", keys: []string{"dateNaissance", "date_naissance"}, required: true},
	{column: "lieu_naissance", keys: []string{"lieuNaissance", "lieu_naissance"}},
	{column: "sexe", keys: []string{"sexe"}, required: true},
	{column: "adresse", keys: []string{"adresse"}},
	{column: "contact", keys: []string{"contact", "contacts"}, required: true},
	{column: "num_passeport", keys: []string{"numPasseport", "num_passeport"}, required: true},
	{column: "offre", keys: []string{"offre"}},
	{column: "voyage", keys: []string{"voyage"}},
	{column: "annee_voyage", keys: []string{"anneeVoyage", "annee_voyage"}, required: true},
	{column: "ur_nom", keys: []string{"urNom", "ur_nom", "urgenceNom"}},
	{column: "ur_prenoms", keys: []string{"urPrenoms", "ur_prenoms", "urgencePrenoms"}},
	{column: "ur_contact", keys: []string{"urContact", "ur_contact", "urgenceContact"}},
	{column: "ur_residence", keys: []string{"urResidence", "ur_residence", "urgenceResidence"}},
}

// pelerinValues converts the present keys of in into column values.
// Blank required fields are skipped; blank optional ones become NULL.
func pelerinValues(in dto.Payload) (map[string]any, error) {
	values := make(map[string]any)
	for _, f := range pelerinFields {
		if !in.Has(f.keys...) {
			continue
		}
		raw := in.String(f.keys...)
		if raw == "" {
			if !f.required {
				values[f.column] = nil
			}
			continue
		}

		switch f.column {
		case "sexe":
			sexe := strings.ToUpper(raw)
			if sexe != "M" && sexe != "F" {
				return nil, apperrors.NewBadRequestError("Sexe invalide (M/F).")
			}
			values[f.column] = sexe
		case "date_naissance":
			d, err := helpers.ParseDate(raw)
			if err != nil {
				return nil, apperrors.NewBadRequestError("Date de naissance invalide.")
			}
			values[f.column] = d
		case "annee_voyage":
			year, ok := in.Int(f.keys...)
			if !ok || year <= 0 {
				year = time.Now().Year()
			}
			values[f.column] = year
		case "num_passeport":
			values[f.column] = validation.NormalizePassport(raw)
		default:
			values[f.column] = raw
		}
	}
	return values, nil
}

func (s *pelerinServiceImpl) ListPelerins(ctx context.Context, search string) ([]models.Pelerin, error) {
	return s.repo.List(ctx, search)
}

// SearchByPassport returns the pilgrims whose passport contains fragment.
func (s *pelerinServiceImpl) SearchByPassport(ctx context.Context, fragment string) ([]models.PelerinMatch, error) {
	fragment = validation.NormalizePassport(fragment)
	if fragment == "" {
		return nil, apperrors.NewBadRequestError("Paramètre 'passport' requis.")
	}
	return s.repo.SearchByPassport(ctx, fragment, validation.PelerinMatchSize)
}

func (s *pelerinServiceImpl) GetPelerin(ctx context.Context, id int64) (*models.Pelerin, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}
	return p, nil
}

// CreatePelerin validates the required fields, stores the photos and inserts the row.
func (s *pelerinServiceImpl) CreatePelerin(ctx context.Context, actor *Actor, in dto.Payload, files PelerinFiles) (*models.Pelerin, error) {
	// Required fields first
	for _, f := range pelerinFields {
		if f.required && in.String(f.keys...) == "" {
			return nil, apperrors.NewBadRequestError("Champs obligatoires manquants.")
		}
	}
	values, err := pelerinValues(in)
	if err != nil {
		return nil, err
	}

	// Author falls back to the caller
	createdBy := in.String("createdByName", "created_by_name")
	if createdBy == "" {
		createdBy = actorName(ctx, s.users, actor)
	}
	values["created_by_name"] = helpers.NullIfBlank(createdBy)
	if id, ok := in.Int("createdById", "created_by_id"); ok && id > 0 {
		values["created_by_id"] = int64(id)
	} else if actor != nil && actor.ID > 0 {
		values["created_by_id"] = actor.ID
	}

	// Store uploads before the insert, drop them if it fails
	photo, passport, err := s.savePhotos(ctx, files)
	if err != nil {
		return nil, err
	}
	values["photo_pelerin_path"] = photo
	values["photo_passeport_path"] = passport

	p, err := s.repo.Create(ctx, values)
	if err != nil {
		discard(ctx, s.cleaner, photo, passport)
		return nil, err
	}
	s.logger.Info().Int64("pelerinID", p.ID).Str("passport", p.NumPasseport).Msg("Pelerin created")
	return p, nil
}

func (s *pelerinServiceImpl) savePhotos(ctx context.Context, files PelerinFiles) (*string, *string, error) {
	photo, err := saveUpload(ctx, s.store, ResourcePelerins, files.Photo)
	if err != nil {
		return nil, nil, err
	}
	passport, err := saveUpload(ctx, s.store, ResourcePelerins, files.Passport)
	if err != nil {
		discard(ctx, s.cleaner, photo)
		return nil, nil, err
	}
	return photo, passport, nil
}

// UpdatePelerin applies a partial update. Replaced photos are removed
// once the row is written.
func (s *pelerinServiceImpl) UpdatePelerin(ctx context.Context, id int64, in dto.Payload, files PelerinFiles) (*models.Pelerin, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}

	values, err := pelerinValues(in)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 && files.Photo == nil && files.Passport == nil {
		return nil, apperrors.NewBadRequestError("Aucun champ à mettre à jour.")
	}

	// New uploads replace the current files
	photo, passport, err := s.savePhotos(ctx, files)
	if err != nil {
		return nil, err
	}
	var replaced []string
	if photo != nil {
		values["photo_pelerin_path"] = photo
		replaced = append(replaced, helpers.Deref(current.PhotoPelerinPath))
	}
	if passport != nil {
		values["photo_passeport_path"] = passport
		replaced = append(replaced, helpers.Deref(current.PhotoPasseportPath))
	}

	updated, err := s.repo.Update(ctx, id, values)
	if err != nil {
		discard(ctx, s.cleaner, photo, passport)
		return nil, notFound(err, msgIntrouvable)
	}
	s.cleaner.Cleanup(ctx, replaced...)
	return updated, nil
}

// DeletePelerin removes the row, then its photos.
func (s *pelerinServiceImpl) DeletePelerin(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err, msgIntrouvable)
	}
	s.cleaner.Cleanup(ctx, deleted.PhotoPaths()...)
	s.logger.Info().Int64("pelerinID", id).Msg("Pelerin deleted")
	return nil
}
