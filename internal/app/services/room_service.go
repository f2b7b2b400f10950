package services

import (
	"context"
	"errors"
	"mime/multipart"
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
	msgRoomNotFound     = "Chambre introuvable"
	msgOccupantNotFound = "Occupant introuvable"
	defaultRoomType     = "double"
)

// RoomInput creates or replaces a room. Capacity arrives loosely typed.
type RoomInput struct {
	Hotel    string
	City     string
	Type     string
	Capacity int
}

// RoomStore is the persistence needed by RoomService.
type RoomStore interface {
	List(ctx context.Context) ([]models.Room, error)
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id int64) ([]string, error)
	AddOccupant(ctx context.Context, o *models.Occupant) error
	RemoveOccupant(ctx context.Context, roomID, occupantID int64) (*models.Occupant, error)
}

// RoomService manages hotel rooms and their occupants.
type RoomService interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error)
	UpdateRoom(ctx context.Context, id int64, in RoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	AddOccupant(ctx context.Context, roomID int64, req *dto.OccupantRequest, photo *multipart.FileHeader) (*models.Occupant, error)
	RemoveOccupant(ctx context.Context, roomID, occupantID int64) error
}

type roomServiceImpl struct {
	repo    RoomStore
	store   filestorage.FileStorage
	cleaner cleanup.Cleaner
	logger  zerolog.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(repo RoomStore, store filestorage.FileStorage, cleaner cleanup.Cleaner, logger zerolog.Logger) RoomService {
	return &roomServiceImpl{repo: repo, store: store, cleaner: cleaner, logger: logger}
}

func roomFromInput(in RoomInput) (*models.Room, error) {
	hotel := strings.TrimSpace(in.Hotel)
	city := strings.TrimSpace(in.City)
	if hotel == "" || city == "" {
		return nil, apperrors.NewBadRequestError("Champs requis manquants (hotel, city).")
	}
	roomType := strings.ToLower(strings.TrimSpace(in.Type))
	if roomType == "" {
		roomType = defaultRoomType
	}
	return &models.Room{
		Hotel:    hotel,
		City:     city,
		Type:     roomType,
		Capacity: max(1, in.Capacity),
	}, nil
}

func (s *roomServiceImpl) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.repo.List(ctx)
}

func (s *roomServiceImpl) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgRoomNotFound)
	}
	return room, nil
}

func (s *roomServiceImpl) CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error) {
	room, err := roomFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomServiceImpl) UpdateRoom(ctx context.Context, id int64, in RoomInput) (*models.Room, error) {
	room, err := roomFromInput(in)
	if err != nil {
		return nil, err
	}
	room.ID = id
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, notFound(err, msgRoomNotFound)
	}
	return room, nil
}

// DeleteRoom removes the occupants and the room, then their photos.
func (s *roomServiceImpl) DeleteRoom(ctx context.Context, id int64) error {
	photos, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err, msgRoomNotFound)
	}
	s.cleaner.Cleanup(ctx, photos...)
	return nil
}

// AddOccupant places someone in a room that still has a free bed.
func (s *roomServiceImpl) AddOccupant(ctx context.Context, roomID int64, req *dto.OccupantRequest, photo *multipart.FileHeader) (*models.Occupant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Nom requis")
	}

	o := &models.Occupant{
		RoomID:   roomID,
		Name:     name,
		Passport: helpers.NullIfBlank(validation.NormalizePassport(req.Passport)),
		PhotoURL: helpers.NullIfBlank(req.PhotoURL),
	}

	uploaded, err := saveUpload(ctx, s.store, ResourceChambres, photo)
	if err != nil {
		return nil, err
	}
	if uploaded != nil {
		o.PhotoURL = uploaded
		o.PhotoOwned = true
	}

	if err := s.repo.AddOccupant(ctx, o); err != nil {
		discard(ctx, s.cleaner, uploaded)
		if errors.Is(err, repositories.ErrRoomFull) {
			return nil, apperrors.NewConflictError("Chambre complète.")
		}
		return nil, notFound(err, msgRoomNotFound)
	}
	return o, nil
}

func (s *roomServiceImpl) RemoveOccupant(ctx context.Context, roomID, occupantID int64) error {
	removed, err := s.repo.RemoveOccupant(ctx, roomID, occupantID)
	if err != nil {
		return notFound(err, msgOccupantNotFound)
	}
	s.cleaner.Cleanup(ctx, paths(removed.OwnedPhoto())...)
	return nil
}
