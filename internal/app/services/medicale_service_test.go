package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

type recordingMedicales struct {
	created    map[string]any
	updated    map[string]any
	limit      int
	offset     int
	byPassport string
}

func (r *recordingMedicales) List(_ context.Context, _ string, limit, offset int) ([]models.Medicale, int64, error) {
	r.limit, r.offset = limit, offset
	return nil, 0, nil
}

func (r *recordingMedicales) ListByPassport(_ context.Context, passport string) ([]models.Medicale, error) {
	r.byPassport = passport
	return []models.Medicale{{ID: 1, Passeport: passport}}, nil
}

func (r *recordingMedicales) GetByID(context.Context, int64) (*models.Medicale, error) {
	return nil, db.ErrNotFound
}

func (r *recordingMedicales) Create(_ context.Context, values map[string]any) (*models.Medicale, error) {
	r.created = values
	return &models.Medicale{ID: 1, Passeport: values["passeport"].(string)}, nil
}

func (r *recordingMedicales) Update(_ context.Context, id int64, values map[string]any) (*models.Medicale, error) {
	if id != 1 {
		return nil, db.ErrNotFound
	}
	r.updated = values
	return &models.Medicale{ID: id}, nil
}

func (r *recordingMedicales) Delete(_ context.Context, id int64) error {
	if id != 1 {
		return db.ErrNotFound
	}
	return nil
}

type passportIndex map[string]int64

func (p passportIndex) FindIDByPassport(_ context.Context, passport string) (*int64, error) {
	if id, ok := p[passport]; ok {
		return &id, nil
	}
	return nil, nil
}

const passportRule = "Le champ 'passeport' doit contenir 5 à 15 caractères alphanumériques."

func TestCreateMedicaleRejectsShortPassport(t *testing.T) {
	svc := NewMedicaleService(&recordingMedicales{}, passportIndex{}, zerolog.Nop())

	_, err := svc.CreateMedicale(context.Background(), dto.Payload{"passeport": "AB1"})
	requireAppError(t, err, apperrors.ErrValidationFailed, passportRule)

	_, err = svc.CreateMedicale(context.Background(), dto.Payload{"passeport": "AB-12345"})
	requireAppError(t, err, apperrors.ErrValidationFailed, passportRule)
}

func TestCreateMedicaleNormalizesAndLinks(t *testing.T) {
	repo := &recordingMedicales{}
	svc := NewMedicaleService(repo, passportIndex{"A1234567": 9}, zerolog.Nop())

	m, err := svc.CreateMedicale(context.Background(), dto.Payload{
		"passeport": " a1234567 ", "nom": "Diop", "tension": "  ", "groupe_sanguin": "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, "A1234567", m.Passeport)

	assert.Equal(t, "A1234567", repo.created["passeport"])
	assert.Equal(t, int64(9), *repo.created["pelerin_id"].(*int64))
	assert.Nil(t, repo.created["tension"].(*string), "blank becomes NULL")
	assert.Equal(t, "O+", *repo.created["groupe_sanguin"].(*string))
	assert.Contains(t, repo.created, "antecedents", "absent columns are written as NULL on create")
}

func TestUpdateMedicaleIsPartial(t *testing.T) {
	repo := &recordingMedicales{}
	svc := NewMedicaleService(repo, passportIndex{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.UpdateMedicale(ctx, 1, dto.Payload{"poids": "72"})
	require.NoError(t, err)
	assert.Len(t, repo.updated, 1)

	_, err = svc.UpdateMedicale(ctx, 1, dto.Payload{"passeport": "x"})
	requireAppError(t, err, apperrors.ErrValidationFailed, passportRule)

	_, err = svc.UpdateMedicale(ctx, 2, dto.Payload{"poids": "72"})
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Introuvable")
}

func TestListMedicalesBounds(t *testing.T) {
	repo := &recordingMedicales{}
	svc := NewMedicaleService(repo, passportIndex{}, zerolog.Nop())
	ctx := context.Background()

	_, _, err := svc.ListMedicales(ctx, "", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.limit)
	assert.Equal(t, 0, repo.offset)

	_, _, err = svc.ListMedicales(ctx, "", 900, 10)
	require.NoError(t, err)
	assert.Equal(t, 500, repo.limit)
	assert.Equal(t, 10, repo.offset)

	items, err := svc.ListByPassport(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, repo.byPassport)

	_, err = svc.ListByPassport(ctx, "a1234567")
	require.NoError(t, err)
	assert.Equal(t, "A1234567", repo.byPassport)
}
