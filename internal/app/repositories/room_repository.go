package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
)

// RoomRepository handles database operations for rooms and occupants
type RoomRepository struct {
	db db.Executor
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(ex db.Executor) *RoomRepository {
	return &RoomRepository{db: ex}
}

// List returns every room, newest first, with its occupants.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := db.SelectBuilt[models.Room](ctx, r.db,
		psql.Select("*").From("rooms").OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	ids := make([]int64, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	occupants, err := db.SelectBuilt[models.Occupant](ctx, r.db,
		psql.Select("*").From("room_occupants").Where("room_id = ANY(?)", ids).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("error listing occupants: %w", err)
	}

	byRoom := make(map[int64][]models.Occupant, len(rooms))
	for _, o := range occupants {
		byRoom[o.RoomID] = append(byRoom[o.RoomID], o)
	}
	for i := range rooms {
		rooms[i].Occupants = nonNilOccupants(byRoom[rooms[i].ID])
	}
	return rooms, nil
}

func nonNilOccupants(o []models.Occupant) []models.Occupant {
	if o == nil {
		return []models.Occupant{}
	}
	return o
}

// GetByID retrieves a room with its occupants.
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	room, err := db.GetBuilt[models.Room](ctx, r.db, psql.Select("*").From("rooms").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}
	if err := r.loadOccupants(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *RoomRepository) loadOccupants(ctx context.Context, room *models.Room) error {
	occupants, err := db.SelectBuilt[models.Occupant](ctx, r.db,
		psql.Select("*").From("room_occupants").Where(squirrel.Eq{"room_id": room.ID}).OrderBy("id"))
	if err != nil {
		return fmt.Errorf("error listing occupants: %w", err)
	}
	room.Occupants = occupants
	return nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	q := psql.Insert("rooms").
		Columns("hotel", "city", "type", "capacity").
		Values(room.Hotel, room.City, room.Type, room.Capacity).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.Room](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating room: %w", err)
	}
	created.Occupants = []models.Occupant{}
	*room = *created
	return nil
}

// Update replaces the room columns.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	q := psql.Update("rooms").
		Set("hotel", room.Hotel).
		Set("city", room.City).
		Set("type", room.Type).
		Set("capacity", room.Capacity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": room.ID}).
		Suffix("RETURNING *")

	updated, err := db.GetBuilt[models.Room](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating room: %w", err)
	}
	if err := r.loadOccupants(ctx, updated); err != nil {
		return err
	}
	*room = *updated
	return nil
}

// Delete removes the occupants then the room and returns their photo paths.
func (r *RoomRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var photos []string
	err := r.db.WithTx(ctx, func(ctx context.Context, tx db.Executor) error {
		removed, err := db.SelectBuilt[models.Occupant](ctx, tx,
			psql.Delete("room_occupants").Where(squirrel.Eq{"room_id": id}).Suffix("RETURNING *"))
		if err != nil {
			return err
		}
		res, err := db.ExecuteBuilt(ctx, tx, psql.Delete("rooms").Where(squirrel.Eq{"id": id}))
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		for _, o := range removed {
			photos = append(photos, paths(o.OwnedPhoto())...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error deleting room: %w", err)
	}
	return photos, nil
}

// AddOccupant inserts o while holding the room row lock. It returns
// db.ErrNotFound for an unknown room and ErrRoomFull at capacity.
func (r *RoomRepository) AddOccupant(ctx context.Context, o *models.Occupant) error {
	err := r.db.WithTx(ctx, func(ctx context.Context, tx db.Executor) error {
		room, err := db.GetBuilt[models.Room](ctx, tx,
			psql.Select("*").From("rooms").Where(squirrel.Eq{"id": o.RoomID}).Suffix("FOR UPDATE"))
		if err != nil {
			return err
		}
		count, err := db.Count(ctx, tx,
			psql.Select("COUNT(*)").From("room_occupants").Where(squirrel.Eq{"room_id": o.RoomID}))
		if err != nil {
			return err
		}
		if count >= int64(room.Capacity) {
			return ErrRoomFull
		}

		q := psql.Insert("room_occupants").
			Columns("room_id", "name", "passport", "photo_url", "photo_owned").
			Values(o.RoomID, o.Name, o.Passport, o.PhotoURL, o.PhotoOwned).
			Suffix("RETURNING *")
		created, err := db.GetBuilt[models.Occupant](ctx, tx, q)
		if err != nil {
			return err
		}
		*o = *created
		return nil
	})
	if errors.Is(err, ErrRoomFull) || errors.Is(err, db.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("error adding occupant: %w", err)
	}
	return nil
}

// RemoveOccupant deletes an occupant of the room and returns the removed row.
func (r *RoomRepository) RemoveOccupant(ctx context.Context, roomID, occupantID int64) (*models.Occupant, error) {
	q := psql.Delete("room_occupants").
		Where(squirrel.Eq{"id": occupantID, "room_id": roomID}).
		Suffix("RETURNING *")

	removed, err := db.GetBuilt[models.Occupant](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error removing occupant: %w", err)
	}
	return removed, nil
}
