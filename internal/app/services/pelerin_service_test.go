package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

type recordingPelerins struct {
	current  *models.Pelerin
	created  map[string]any
	updated  map[string]any
	fragment string
	limit    int
}

func (r *recordingPelerins) List(context.Context, string) ([]models.Pelerin, error) {
	return nil, nil
}

func (r *recordingPelerins) SearchByPassport(_ context.Context, fragment string, limit int) ([]models.PelerinMatch, error) {
	r.fragment, r.limit = fragment, limit
	return []models.PelerinMatch{}, nil
}

func (r *recordingPelerins) GetByID(_ context.Context, id int64) (*models.Pelerin, error) {
	if r.current == nil || r.current.ID != id {
		return nil, db.ErrNotFound
	}
	cp := *r.current
	return &cp, nil
}

func (r *recordingPelerins) Create(_ context.Context, values map[string]any) (*models.Pelerin, error) {
	r.created = values
	return &models.Pelerin{ID: 1, NumPasseport: values["num_passeport"].(string)}, nil
}

func (r *recordingPelerins) Update(_ context.Context, id int64, values map[string]any) (*models.Pelerin, error) {
	r.updated = values
	return r.GetByID(context.Background(), id)
}

func (r *recordingPelerins) Delete(_ context.Context, id int64) (*models.Pelerin, error) {
	p, err := r.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	r.current = nil
	return p, nil
}

func pelerinPayload() dto.Payload {
	return dto.Payload{
		"nom":           "Diop",
		"prenoms":       "Awa",
		"dateNaissance": "1970-01-31",
		"sexe":          "f",
		"contacts":      "+221770000000",
		"numPasseport":  " a01234567 ",
		"anneeVoyage":   "2025",
		"adresse":       "",
	}
}

func TestCreatePelerin(t *testing.T) {
	repo := &recordingPelerins{}
	store := &fakeFileStore{}
	users := staticUsers{3: {ID: 3, Name: "Agent Ndiaye"}}
	svc := NewPelerinService(repo, users, store, &recordingCleaner{}, zerolog.Nop())

	p, err := svc.CreatePelerin(context.Background(), &Actor{ID: 3}, pelerinPayload(), PelerinFiles{
		Photo: fileHeader("awa.jpg", "image/jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A01234567", p.NumPasseport)

	v := repo.created
	assert.Equal(t, "F", v["sexe"])
	assert.Equal(t, "+221770000000", v["contact"])
	assert.Equal(t, 2025, v["annee_voyage"])
	assert.Equal(t, true, v["date_naissance"].(pgtype.Date).Valid)
	assert.Nil(t, v["adresse"])
	assert.Equal(t, "Agent Ndiaye", *v["created_by_name"].(*string))
	assert.Equal(t, int64(3), v["created_by_id"])
	assert.Equal(t, "/uploads/pelerins/1700000000000_awa.jpg", *v["photo_pelerin_path"].(*string))
	assert.Nil(t, v["photo_passeport_path"].(*string))
}

func TestCreatePelerinValidation(t *testing.T) {
	svc := NewPelerinService(&recordingPelerins{}, nil, &fakeFileStore{}, &recordingCleaner{}, zerolog.Nop())
	ctx := context.Background()

	missing := pelerinPayload()
	delete(missing, "contacts")
	_, err := svc.CreatePelerin(ctx, nil, missing, PelerinFiles{})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Champs obligatoires manquants.")

	sexe := pelerinPayload()
	sexe["sexe"] = "X"
	_, err = svc.CreatePelerin(ctx, nil, sexe, PelerinFiles{})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Sexe invalide (M/F).")
}

func TestUpdatePelerinReplacesPhotos(t *testing.T) {
	repo := &recordingPelerins{current: &models.Pelerin{
		ID:                 5,
		PhotoPelerinPath:   strPtr("/uploads/pelerins/old.jpg"),
		PhotoPasseportPath: strPtr("/uploads/pelerins/old-passport.jpg"),
	}}
	cleaner := &recordingCleaner{}
	svc := NewPelerinService(repo, nil, &fakeFileStore{}, cleaner, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.UpdatePelerin(ctx, 5, dto.Payload{}, PelerinFiles{})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Aucun champ à mettre à jour.")

	_, err = svc.UpdatePelerin(ctx, 5, dto.Payload{"num_passeport": "b7654321", "nom": ""}, PelerinFiles{
		Photo: fileHeader("new.jpg", "image/jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "B7654321", repo.updated["num_passeport"])
	assert.NotContains(t, repo.updated, "nom", "blank required fields are left untouched")
	assert.Equal(t, []string{"/uploads/pelerins/old.jpg"}, cleaner.cleaned())

	_, err = svc.UpdatePelerin(ctx, 6, dto.Payload{"nom": "Ba"}, PelerinFiles{})
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Introuvable")
}

func TestDeletePelerinRemovesPhotos(t *testing.T) {
	repo := &recordingPelerins{current: &models.Pelerin{ID: 5, PhotoPasseportPath: strPtr("/uploads/pelerins/p.jpg")}}
	cleaner := &recordingCleaner{}
	svc := NewPelerinService(repo, nil, &fakeFileStore{}, cleaner, zerolog.Nop())

	require.NoError(t, svc.DeletePelerin(context.Background(), 5))
	assert.Equal(t, []string{"/uploads/pelerins/p.jpg"}, cleaner.cleaned())

	err := svc.DeletePelerin(context.Background(), 5)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Introuvable")
}

func TestSearchByPassport(t *testing.T) {
	repo := &recordingPelerins{}
	svc := NewPelerinService(repo, nil, &fakeFileStore{}, &recordingCleaner{}, zerolog.Nop())

	_, err := svc.SearchByPassport(context.Background(), " ")
	requireAppError(t, err, apperrors.ErrValidationFailed, "Paramètre 'passport' requis.")

	_, err = svc.SearchByPassport(context.Background(), "a012")
	require.NoError(t, err)
	assert.Equal(t, "A012", repo.fragment)
	assert.Equal(t, 10, repo.limit)
}
