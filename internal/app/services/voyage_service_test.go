package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

type memoryVoyages struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]models.Voyage
	skipCheck bool
}

func newMemoryVoyages() *memoryVoyages {
	return &memoryVoyages{rows: map[int64]models.Voyage{}}
}

func (m *memoryVoyages) List(_ context.Context, nom string, annee int) ([]models.Voyage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Voyage
	for _, v := range m.rows {
		if (nom == "" || v.Nom == nom) && (annee == 0 || v.Annee == annee) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryVoyages) GetByID(_ context.Context, id int64) (*models.Voyage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &v, nil
}

func (m *memoryVoyages) Exists(_ context.Context, nom string, annee int, excludeID int64) (bool, error) {
	if m.skipCheck {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken(nom, annee, excludeID), nil
}

func (m *memoryVoyages) taken(nom string, annee int, excludeID int64) bool {
	for id, v := range m.rows {
		if id != excludeID && v.Nom == nom && v.Annee == annee {
			return true
		}
	}
	return false
}

func (m *memoryVoyages) Create(_ context.Context, v *models.Voyage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(v.Nom, v.Annee, 0) {
		return uniqueViolation(repositories.VoyageConstraintNomAnnee)
	}
	m.nextID++
	v.ID = m.nextID
	m.rows[v.ID] = *v
	return nil
}

func (m *memoryVoyages) Update(_ context.Context, v *models.Voyage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[v.ID]; !ok {
		return db.ErrNotFound
	}
	if m.taken(v.Nom, v.Annee, v.ID) {
		return uniqueViolation(repositories.VoyageConstraintNomAnnee)
	}
	m.rows[v.ID] = *v
	return nil
}

func (m *memoryVoyages) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func TestCreateVoyageIsUniquePerYearIgnoringCase(t *testing.T) {
	svc := NewVoyageService(newMemoryVoyages(), zerolog.Nop())
	ctx := context.Background()

	v, err := svc.CreateVoyage(ctx, dto.Payload{"nom": "hajj", "annee": float64(2025)})
	require.NoError(t, err)
	assert.Equal(t, "HAJJ", v.Nom)
	assert.Nil(t, v.Offres)

	_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "Hajj ", "annee": "2025"})
	requireAppError(t, err, apperrors.ErrConflict, "Ce voyage existe déjà pour cette année.")

	_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "OUMRAH", "annee": float64(2025)})
	assert.NoError(t, err)
}

func TestCreateVoyageConstraintRace(t *testing.T) {
	repo := newMemoryVoyages()
	svc := NewVoyageService(repo, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": float64(2026)})
	require.NoError(t, err)

	repo.skipCheck = true
	_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": float64(2026)})
	requireAppError(t, err, apperrors.ErrConflict, "Ce voyage existe déjà pour cette année.")
}

func TestVoyageValidation(t *testing.T) {
	svc := NewVoyageService(newMemoryVoyages(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CreateVoyage(ctx, dto.Payload{"nom": "ZIARA", "annee": float64(2025)})
	requireAppError(t, err, apperrors.ErrValidationFailed, "nom doit être 'HAJJ' ou 'OUMRAH'")

	for _, annee := range []any{float64(1999), float64(2101), "deux mille", nil} {
		_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": annee})
		requireAppError(t, err, apperrors.ErrValidationFailed, "Année invalide")
	}

	_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": float64(2025), "offres": strings.Repeat("x", 5001)})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Le champ 'offres' est trop long (max 5000 caractères).")

	_, err = svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": float64(2025), "offres": strings.Repeat("é", 5000)})
	assert.NoError(t, err)
}

func TestUpdateVoyage(t *testing.T) {
	svc := NewVoyageService(newMemoryVoyages(), zerolog.Nop())
	ctx := context.Background()

	hajj, err := svc.CreateVoyage(ctx, dto.Payload{"nom": "HAJJ", "annee": float64(2025), "offres": "Confort"})
	require.NoError(t, err)
	oumrah, err := svc.CreateVoyage(ctx, dto.Payload{"nom": "OUMRAH", "annee": float64(2025)})
	require.NoError(t, err)

	updated, err := svc.UpdateVoyage(ctx, hajj.ID, dto.Payload{"annee": float64(2026)})
	require.NoError(t, err)
	assert.Equal(t, "HAJJ", updated.Nom)
	assert.Equal(t, 2026, updated.Annee)
	assert.Equal(t, "Confort", *updated.Offres, "absent fields keep their value")

	_, err = svc.UpdateVoyage(ctx, oumrah.ID, dto.Payload{"nom": "hajj", "annee": float64(2026)})
	requireAppError(t, err, apperrors.ErrConflict, "Un voyage identique existe déjà.")

	_, err = svc.UpdateVoyage(ctx, 999, dto.Payload{"nom": "HAJJ"})
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Voyage introuvable")

	require.NoError(t, svc.DeleteVoyage(ctx, hajj.ID))
	err = svc.DeleteVoyage(ctx, hajj.ID)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Voyage introuvable")
}
