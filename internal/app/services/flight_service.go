package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/cleanup"
	"github.com/bmvt/backend/internal/pkg/filestorage"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	msgFlightNotFound    = "Vol introuvable"
	msgPassengerNotFound = "Passager introuvable"
	msgArrivalBeforeDep  = "L'arrivée doit être postérieure au départ."
)

// utf8BOM prefixes the CSV export.
const utf8BOM = "\ufeff"

// FlightStore is the persistence needed by FlightService.
type FlightStore interface {
	List(ctx context.Context) ([]models.Flight, error)
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
	Create(ctx context.Context, f *models.Flight) error
	Update(ctx context.Context, f *models.Flight) error
	Delete(ctx context.Context, id int64) ([]string, error)
	AddPassenger(ctx context.Context, p *models.Passenger) error
	RemovePassenger(ctx context.Context, flightID, passengerID int64) (*models.Passenger, error)
}

// FlightService manages flights, passengers and the passenger export.
type FlightService interface {
	ListFlights(ctx context.Context) ([]models.Flight, error)
	GetFlight(ctx context.Context, id int64) (*models.Flight, error)
	CreateFlight(ctx context.Context, req *dto.FlightRequest) (*models.Flight, error)
	UpdateFlight(ctx context.Context, id int64, req *dto.FlightRequest) (*models.Flight, error)
	DeleteFlight(ctx context.Context, id int64) error
	AddPassenger(ctx context.Context, flightID int64, req *dto.PassengerRequest, photo *multipart.FileHeader) (*models.Passenger, error)
	RemovePassenger(ctx context.Context, flightID, passengerID int64) error
	ExportPassengers(ctx context.Context, id int64, w io.Writer) (string, error)
}

type flightServiceImpl struct {
	repo    FlightStore
	store   filestorage.FileStorage
	cleaner cleanup.Cleaner
	logger  zerolog.Logger
}

// NewFlightService creates a new FlightService
func NewFlightService(repo FlightStore, store filestorage.FileStorage, cleaner cleanup.Cleaner, logger zerolog.Logger) FlightService {
	return &flightServiceImpl{repo: repo, store: store, cleaner: cleaner, logger: logger}
}

// normalizeFlightCode upper-cases a flight number and drops its spaces.
func normalizeFlightCode(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), "")
}

// flightFromRequest validates req and builds the row.
func flightFromRequest(req *dto.FlightRequest) (*models.Flight, error) {
	code := normalizeFlightCode(req.Code)
	company := strings.TrimSpace(req.Company)
	duration := strings.TrimSpace(req.Duration)
	fromCode := strings.ToUpper(strings.TrimSpace(req.From.Code))
	toCode := strings.ToUpper(strings.TrimSpace(req.To.Code))

	if code == "" || company == "" || duration == "" || fromCode == "" || toCode == "" ||
		strings.TrimSpace(req.From.Date) == "" || strings.TrimSpace(req.To.Date) == "" {
		return nil, apperrors.NewBadRequestError("Champs requis manquants.")
	}
	if !validation.IsIATA(fromCode) || !validation.IsIATA(toCode) {
		return nil, apperrors.NewBadRequestError("Codes IATA invalides (ex: DSS, JED).")
	}

	fromDate, errFrom := helpers.ParseDateTime(req.From.Date)
	toDate, errTo := helpers.ParseDateTime(req.To.Date)
	if errFrom != nil || errTo != nil || !toDate.After(fromDate) {
		return nil, apperrors.NewBadRequestError(msgArrivalBeforeDep)
	}

	return &models.Flight{
		Code:     code,
		Company:  company,
		FromCode: fromCode,
		FromDate: fromDate,
		ToCode:   toCode,
		ToDate:   toDate,
		Duration: duration,
	}, nil
}

func (s *flightServiceImpl) ListFlights(ctx context.Context) ([]models.Flight, error) {
	return s.repo.List(ctx)
}

func (s *flightServiceImpl) GetFlight(ctx context.Context, id int64) (*models.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgFlightNotFound)
	}
	return f, nil
}

func (s *flightServiceImpl) CreateFlight(ctx context.Context, req *dto.FlightRequest) (*models.Flight, error) {
	f, err := flightFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("flightID", f.ID).Str("code", f.Code).Msg("Flight created")
	return f, nil
}

func (s *flightServiceImpl) UpdateFlight(ctx context.Context, id int64, req *dto.FlightRequest) (*models.Flight, error) {
	f, err := flightFromRequest(req)
	if err != nil {
		return nil, err
	}
	f.ID = id
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, notFound(err, msgFlightNotFound)
	}
	return f, nil
}

// DeleteFlight removes the passengers and the flight, then their photos.
func (s *flightServiceImpl) DeleteFlight(ctx context.Context, id int64) error {
	photos, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err, msgFlightNotFound)
	}
	s.cleaner.Cleanup(ctx, photos...)
	s.logger.Info().Int64("flightID", id).Msg("Flight deleted")
	return nil
}

// AddPassenger seats a passenger; an empty seat is stored as unassigned.
func (s *flightServiceImpl) AddPassenger(ctx context.Context, flightID int64, req *dto.PassengerRequest, photo *multipart.FileHeader) (*models.Passenger, error) {
	fullname := strings.TrimSpace(req.Fullname)
	if fullname == "" {
		return nil, apperrors.NewBadRequestError("Nom requis")
	}
	seat := strings.ToUpper(strings.TrimSpace(req.Seat))
	if seat == "" {
		seat = models.UnassignedSeat
	}

	p := &models.Passenger{
		FlightID: flightID,
		Fullname: fullname,
		Seat:     seat,
		Passport: helpers.NullIfBlank(validation.NormalizePassport(req.Passport)),
		PhotoURL: helpers.NullIfBlank(req.PhotoURL),
	}

	uploaded, err := saveUpload(ctx, s.store, ResourceVols, photo)
	if err != nil {
		return nil, err
	}
	if uploaded != nil {
		p.PhotoURL = uploaded
		p.PhotoOwned = true
	}

	if err := s.repo.AddPassenger(ctx, p); err != nil {
		discard(ctx, s.cleaner, uploaded)
		if errors.Is(err, repositories.ErrSeatTaken) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("Siège %s déjà attribué.", seat))
		}
		return nil, notFound(err, msgFlightNotFound)
	}
	return p, nil
}

func (s *flightServiceImpl) RemovePassenger(ctx context.Context, flightID, passengerID int64) error {
	removed, err := s.repo.RemovePassenger(ctx, flightID, passengerID)
	if err != nil {
		return notFound(err, msgPassengerNotFound)
	}
	// A client supplied photoUrl may point at another record's file.
	s.cleaner.Cleanup(ctx, paths(removed.OwnedPhoto())...)
	return nil
}

func paths(values ...*string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil && *v != "" {
			out = append(out, *v)
		}
	}
	return out
}

// ExportPassengers writes the passenger list of a flight as CSV and
// returns the attachment file name.
func (s *flightServiceImpl) ExportPassengers(ctx context.Context, id int64, w io.Writer) (string, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", notFound(err, msgFlightNotFound)
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return "", err
	}
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Vol", f.Code},
		{"Compagnie", f.Company},
		{"Départ", f.FromCode + " - " + helpers.FrenchDateTime(f.FromDate)},
		{"Arrivée", f.ToCode + " - " + helpers.FrenchDateTime(f.ToDate)},
		{""},
		{"#", "Nom", "Passeport", "Siège"},
	}
	for i, p := range f.Passengers {
		records = append(records, []string{strconv.Itoa(i + 1), p.Fullname, helpers.Deref(p.Passport), p.Seat})
	}
	if err := cw.WriteAll(records); err != nil {
		return "", err
	}
	return fmt.Sprintf("passagers_%s.csv", f.Code), nil
}
