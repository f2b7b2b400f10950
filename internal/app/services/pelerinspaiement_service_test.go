package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

type stubPelerinOffres struct {
	rows      []models.PelerinOffre
	gotOffre  string
	gotLimit  int
	gotSearch string
}

func (s *stubPelerinOffres) List(_ context.Context, search, offre string, limit int) ([]models.PelerinOffre, error) {
	s.gotSearch, s.gotOffre, s.gotLimit = search, offre, limit
	return s.rows, nil
}

func (s *stubPelerinOffres) GetByPassport(_ context.Context, passport string) (*models.PelerinOffre, error) {
	for i := range s.rows {
		if s.rows[i].NumPasseport == passport {
			return &s.rows[i], nil
		}
	}
	return nil, db.ErrNotFound
}

type stubPaymentsByPassport struct {
	rows []models.Payment
	got  []string
}

func (s *stubPaymentsByPassport) ListByPassports(_ context.Context, passports []string) ([]models.Payment, error) {
	s.got = passports
	var out []models.Payment
	for _, p := range s.rows {
		for _, pp := range passports {
			if p.Passeport == pp {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func samplePelerinOffres() []models.PelerinOffre {
	prix := 3500000.0
	return []models.PelerinOffre{
		{ID: 1, Nom: "Diop", Prenoms: "Awa", NumPasseport: "A1234567", Offre: strPtr("Confort"), PrixOffre: &prix,
			PhotoPelerinPath: strPtr("/uploads/pelerins/awa.jpg"), Contact: "77 000 00 00"},
		{ID: 2, Nom: "Ba", Prenoms: "Moussa", NumPasseport: "B7654321",
			PhotoPasseportPath: strPtr("https://cdn.example.com/p.jpg")},
		{ID: 3, Nom: "Ba", Prenoms: "Fatou", NumPasseport: "B7654321"},
	}
}

func TestPelerinPaiementList(t *testing.T) {
	pelerins := &stubPelerinOffres{rows: samplePelerinOffres()}
	payments := &stubPaymentsByPassport{rows: []models.Payment{
		{ID: 10, Passeport: "A1234567"}, {ID: 11, Passeport: "C0000000"},
	}}
	svc := NewPelerinPaiementService(pelerins, payments, zerolog.Nop())

	resp, err := svc.List(context.Background(), PelerinPaiementQuery{Offre: "toutes", Limit: 5000, BaseURL: "https://api.bmvt.sn/"})
	require.NoError(t, err)
	assert.Equal(t, "", pelerins.gotOffre)
	assert.Equal(t, 1000, pelerins.gotLimit)
	assert.Equal(t, []string{"A1234567", "B7654321"}, payments.got)

	require.Len(t, resp.Pelerins, 3)
	awa := resp.Pelerins[0]
	assert.Equal(t, "A1234567", awa.Passeport)
	assert.Equal(t, 3500000.0, awa.PrixOffre)
	assert.Equal(t, "https://api.bmvt.sn/uploads/pelerins/awa.jpg", *awa.PhotoPelerin)
	assert.Nil(t, awa.PhotoPasseport)
	assert.Equal(t, "77 000 00 00", *awa.Contact)

	moussa := resp.Pelerins[1]
	assert.Zero(t, moussa.PrixOffre)
	assert.Equal(t, "https://cdn.example.com/p.jpg", *moussa.PhotoPasseport)
	assert.Nil(t, moussa.Contact)

	require.Len(t, resp.Payments, 1)
	assert.Equal(t, int64(10), resp.Payments[0].ID)
}

func TestPelerinPaiementListDefaults(t *testing.T) {
	pelerins := &stubPelerinOffres{}
	svc := NewPelerinPaiementService(pelerins, &stubPaymentsByPassport{}, zerolog.Nop())

	resp, err := svc.List(context.Background(), PelerinPaiementQuery{Offre: " Confort "})
	require.NoError(t, err)
	assert.Equal(t, "Confort", pelerins.gotOffre)
	assert.Equal(t, 300, pelerins.gotLimit)
	assert.NotNil(t, resp.Pelerins)
	assert.NotNil(t, resp.Payments)
}

func TestPelerinPaiementByPassport(t *testing.T) {
	pelerins := &stubPelerinOffres{rows: samplePelerinOffres()}
	payments := &stubPaymentsByPassport{rows: []models.Payment{{ID: 10, Passeport: "A1234567"}}}
	svc := NewPelerinPaiementService(pelerins, payments, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.GetByPassport(ctx, "", "http://localhost:4000")
	requireAppError(t, err, apperrors.ErrValidationFailed, "Paramètre 'passport' requis.")

	resp, err := svc.GetByPassport(ctx, "a1234567", "http://localhost:4000")
	require.NoError(t, err)
	require.NotNil(t, resp.Pelerin)
	assert.Equal(t, "http://localhost:4000/uploads/pelerins/awa.jpg", *resp.Pelerin.PhotoPelerin)
	assert.Len(t, resp.Payments, 1)

	resp, err = svc.GetByPassport(ctx, "Z9999999", "http://localhost:4000")
	require.NoError(t, err)
	assert.Nil(t, resp.Pelerin)
	assert.Empty(t, resp.Payments)
}

func TestPublicURL(t *testing.T) {
	assert.Nil(t, PublicURL("http://h", nil))
	assert.Nil(t, PublicURL("http://h", strPtr("")))
	assert.Equal(t, "http://h/uploads/x.jpg", *PublicURL("http://h", strPtr("uploads/x.jpg")))
	assert.Equal(t, "http://h/uploads/x.jpg", *PublicURL("http://h/", strPtr("/uploads/x.jpg")))
	assert.Equal(t, "https://cdn/x.jpg", *PublicURL("http://h", strPtr("https://cdn/x.jpg")))
}
