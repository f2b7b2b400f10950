package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

type memoryFlights struct {
	mu      sync.Mutex
	nextID  int64
	flights map[int64]*models.Flight
}

func newMemoryFlights() *memoryFlights {
	return &memoryFlights{flights: map[int64]*models.Flight{}}
}

func (m *memoryFlights) List(context.Context) ([]models.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Flight, 0, len(m.flights))
	for _, f := range m.flights {
		out = append(out, *f)
	}
	return out, nil
}

func (m *memoryFlights) GetByID(_ context.Context, id int64) (*models.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *f
	cp.Passengers = append([]models.Passenger{}, f.Passengers...)
	return &cp, nil
}

func (m *memoryFlights) Create(_ context.Context, f *models.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	f.ID = m.nextID
	cp := *f
	m.flights[f.ID] = &cp
	return nil
}

func (m *memoryFlights) Update(_ context.Context, f *models.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.flights[f.ID]
	if !ok {
		return db.ErrNotFound
	}
	f.Passengers = cur.Passengers
	cp := *f
	m.flights[f.ID] = &cp
	return nil
}

func (m *memoryFlights) Delete(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	var photos []string
	for _, p := range f.Passengers {
		photos = append(photos, paths(p.OwnedPhoto())...)
	}
	delete(m.flights, id)
	return photos, nil
}

func (m *memoryFlights) AddPassenger(_ context.Context, p *models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[p.FlightID]
	if !ok {
		return db.ErrNotFound
	}
	if p.Seat != models.UnassignedSeat {
		for _, other := range f.Passengers {
			if strings.EqualFold(other.Seat, p.Seat) {
				return repositories.ErrSeatTaken
			}
		}
	}
	m.nextID++
	p.ID = m.nextID
	f.Passengers = append(f.Passengers, *p)
	return nil
}

func (m *memoryFlights) RemovePassenger(_ context.Context, flightID, passengerID int64) (*models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[flightID]
	if !ok {
		return nil, db.ErrNotFound
	}
	for i, p := range f.Passengers {
		if p.ID == passengerID {
			f.Passengers = append(f.Passengers[:i], f.Passengers[i+1:]...)
			return &p, nil
		}
	}
	return nil, db.ErrNotFound
}

func validFlightRequest() *dto.FlightRequest {
	return &dto.FlightRequest{
		Code:     "sv 123",
		Company:  "Saudia",
		From:     dto.FlightEndpointRequest{Code: "dss", Date: "2025-03-15T14:30"},
		To:       dto.FlightEndpointRequest{Code: "JED", Date: "2025-03-15T21:00"},
		Duration: "6h30",
	}
}

func newTestFlightService() (FlightService, *memoryFlights, *fakeFileStore, *recordingCleaner) {
	repo := newMemoryFlights()
	store := &fakeFileStore{}
	cleaner := &recordingCleaner{}
	return NewFlightService(repo, store, cleaner, zerolog.Nop()), repo, store, cleaner
}

func TestCreateFlightNormalizesCodes(t *testing.T) {
	svc, _, _, _ := newTestFlightService()

	f, err := svc.CreateFlight(context.Background(), validFlightRequest())
	require.NoError(t, err)
	assert.Equal(t, "SV123", f.Code)
	assert.Equal(t, "DSS", f.FromCode)
	assert.Equal(t, time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC), f.FromDate)
}

func TestCreateFlightValidation(t *testing.T) {
	svc, _, _, _ := newTestFlightService()
	ctx := context.Background()

	missing := validFlightRequest()
	missing.Duration = " "
	_, err := svc.CreateFlight(ctx, missing)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Champs requis manquants.")

	iata := validFlightRequest()
	iata.To.Code = "JEDD"
	_, err = svc.CreateFlight(ctx, iata)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Codes IATA invalides (ex: DSS, JED).")

	// Arrival before departure is rejected.
	reversed := validFlightRequest()
	reversed.From.Date, reversed.To.Date = reversed.To.Date, reversed.From.Date
	_, err = svc.CreateFlight(ctx, reversed)
	requireAppError(t, err, apperrors.ErrValidationFailed, "L'arrivée doit être postérieure au départ.")

	same := validFlightRequest()
	same.To.Date = same.From.Date
	_, err = svc.CreateFlight(ctx, same)
	requireAppError(t, err, apperrors.ErrValidationFailed, "L'arrivée doit être postérieure au départ.")
}

func TestAddPassengerSeatConflict(t *testing.T) {
	svc, _, store, cleaner := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)

	p, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Awa Diop", Seat: "12a", Passport: " a1234567 "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "12A", p.Seat)
	assert.Equal(t, "A1234567", *p.Passport)

	_, err = svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Moussa Ba", Seat: "12A"}, fileHeader("moussa.jpg", "image/jpeg"))
	requireAppError(t, err, apperrors.ErrConflict, "Siège 12A déjà attribué.")
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved, cleaner.cleaned(), "upload of the rejected passenger is discarded")
}

func TestAddPassengerDefaults(t *testing.T) {
	svc, _, _, _ := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)

	_, err = svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "  "}, nil)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Nom requis")

	first, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Awa"}, nil)
	require.NoError(t, err)
	second, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Moussa"}, fileHeader("photo moussa.png", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, models.UnassignedSeat, first.Seat)
	assert.Equal(t, models.UnassignedSeat, second.Seat, "unassigned seats never conflict")
	assert.Equal(t, "/uploads/vols/1700000000000_photo_moussa.png", *second.PhotoURL)

	_, err = svc.AddPassenger(ctx, 999, &dto.PassengerRequest{Fullname: "Awa"}, nil)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Vol introuvable")
}

func TestDeleteFlightCleansUploadedPhotosOnly(t *testing.T) {
	svc, _, _, cleaner := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)
	uploaded, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Awa"}, fileHeader("awa.jpg", "image/jpeg"))
	require.NoError(t, err)
	_, err = svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Moussa", PhotoURL: "/uploads/vols/someone_else.jpg"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFlight(ctx, f.ID))
	assert.Equal(t, []string{*uploaded.PhotoURL}, cleaner.cleaned())

	err = svc.DeleteFlight(ctx, f.ID)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Vol introuvable")
}

func TestRemovePassengerKeepsLinkedPhoto(t *testing.T) {
	svc, _, _, cleaner := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)

	linked, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Awa", PhotoURL: "/uploads/pelerins/1700_awa.jpg"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/pelerins/1700_awa.jpg", *linked.PhotoURL)

	require.NoError(t, svc.RemovePassenger(ctx, f.ID, linked.ID))
	assert.Empty(t, cleaner.cleaned(), "a pilgrim's photo is not removed with the passenger")

	uploaded, err := svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Moussa"}, fileHeader("moussa.jpg", "image/jpeg"))
	require.NoError(t, err)
	require.NoError(t, svc.RemovePassenger(ctx, f.ID, uploaded.ID))
	assert.Equal(t, []string{*uploaded.PhotoURL}, cleaner.cleaned())
}

func TestRemovePassengerMissing(t *testing.T) {
	svc, _, _, _ := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)

	err = svc.RemovePassenger(ctx, f.ID, 77)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Passager introuvable")
}

func TestExportPassengers(t *testing.T) {
	svc, _, _, _ := newTestFlightService()
	ctx := context.Background()
	f, err := svc.CreateFlight(ctx, validFlightRequest())
	require.NoError(t, err)
	_, err = svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Awa Diop", Seat: "1A", Passport: "A1234567"}, nil)
	require.NoError(t, err)
	_, err = svc.AddPassenger(ctx, f.ID, &dto.PassengerRequest{Fullname: "Moussa, Ba"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	name, err := svc.ExportPassengers(ctx, f.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, "passagers_SV123.csv", name)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Vol", "SV123"},
		{"Compagnie", "Saudia"},
		{"Départ", "DSS - 15 mars 2025 à 14:30"},
		{"Arrivée", "JED - 15 mars 2025 à 21:00"},
		{"#", "Nom", "Passeport", "Siège"},
		{"1", "Awa Diop", "A1234567", "1A"},
		{"2", "Moussa, Ba", "", "—"},
	}, records)

	_, err = svc.ExportPassengers(ctx, 999, &buf)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Vol introuvable")
}
