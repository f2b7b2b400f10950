package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/dberrors"
)

// FlightConstraintSeat is the partial unique index on (flight_id, UPPER(seat)).
const FlightConstraintSeat = "passengers_flight_seat_key"

// FlightRepository handles database operations for flights and their passengers
type FlightRepository struct {
	db db.Executor
}

// NewFlightRepository creates a new FlightRepository
func NewFlightRepository(ex db.Executor) *FlightRepository {
	return &FlightRepository{db: ex}
}

// List returns every flight, newest first, with its passengers.
func (r *FlightRepository) List(ctx context.Context) ([]models.Flight, error) {
	flights, err := db.SelectBuilt[models.Flight](ctx, r.db,
		psql.Select("*").From("flights").OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("error listing flights: %w", err)
	}
	if len(flights) == 0 {
		return flights, nil
	}

	ids := make([]int64, len(flights))
	for i, f := range flights {
		ids[i] = f.ID
	}
	passengers, err := db.SelectBuilt[models.Passenger](ctx, r.db,
		psql.Select("*").From("passengers").Where("flight_id = ANY(?)", ids).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("error listing passengers: %w", err)
	}

	byFlight := make(map[int64][]models.Passenger, len(flights))
	for _, p := range passengers {
		byFlight[p.FlightID] = append(byFlight[p.FlightID], p)
	}
	for i := range flights {
		flights[i].Passengers = byFlight[flights[i].ID]
	}
	return flights, nil
}

// GetByID retrieves a flight with its passengers in id order.
func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	flight, err := db.GetBuilt[models.Flight](ctx, r.db, psql.Select("*").From("flights").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving flight: %w", err)
	}
	flight.Passengers, err = r.passengers(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func (r *FlightRepository) passengers(ctx context.Context, ex db.Executor, flightID int64) ([]models.Passenger, error) {
	items, err := db.SelectBuilt[models.Passenger](ctx, ex,
		psql.Select("*").From("passengers").Where(squirrel.Eq{"flight_id": flightID}).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("error listing passengers: %w", err)
	}
	return items, nil
}

// Create inserts a flight, then reloads it by the generated id.
func (r *FlightRepository) Create(ctx context.Context, f *models.Flight) error {
	res, err := db.ExecuteBuilt(ctx, r.db, flightInsertQuery(f))
	if err != nil {
		return fmt.Errorf("error creating flight: %w", err)
	}
	if res.InsertID == nil {
		return fmt.Errorf("error creating flight: no id returned")
	}

	created, err := r.GetByID(ctx, *res.InsertID)
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

func flightInsertQuery(f *models.Flight) squirrel.InsertBuilder {
	return psql.Insert("flights").
		Columns("code", "company", "from_code", "from_date", "to_code", "to_date", "duration").
		Values(f.Code, f.Company, f.FromCode, f.FromDate, f.ToCode, f.ToDate, f.Duration).
		Suffix("RETURNING id")
}

// Update replaces the flight columns and reloads its passengers.
func (r *FlightRepository) Update(ctx context.Context, f *models.Flight) error {
	q := psql.Update("flights").
		Set("code", f.Code).
		Set("company", f.Company).
		Set("from_code", f.FromCode).
		Set("from_date", f.FromDate).
		Set("to_code", f.ToCode).
		Set("to_date", f.ToDate).
		Set("duration", f.Duration).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": f.ID}).
		Suffix("RETURNING *")

	updated, err := db.GetBuilt[models.Flight](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating flight: %w", err)
	}
	updated.Passengers, err = r.passengers(ctx, r.db, f.ID)
	if err != nil {
		return err
	}
	*f = *updated
	return nil
}

// Delete removes the passengers then the flight in one transaction and
// returns the photo paths the passengers uploaded.
func (r *FlightRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var photos []string
	err := r.db.WithTx(ctx, func(ctx context.Context, tx db.Executor) error {
		removed, err := db.SelectBuilt[models.Passenger](ctx, tx,
			psql.Delete("passengers").Where(squirrel.Eq{"flight_id": id}).Suffix("RETURNING *"))
		if err != nil {
			return err
		}
		res, err := db.ExecuteBuilt(ctx, tx, psql.Delete("flights").Where(squirrel.Eq{"id": id}))
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		for _, p := range removed {
			photos = append(photos, paths(p.OwnedPhoto())...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error deleting flight: %w", err)
	}
	return photos, nil
}

// AddPassenger inserts p after locking the flight row. It returns
// db.ErrNotFound for an unknown flight and ErrSeatTaken when the seat is held.
func (r *FlightRepository) AddPassenger(ctx context.Context, p *models.Passenger) error {
	err := r.db.WithTx(ctx, func(ctx context.Context, tx db.Executor) error {
		lock := psql.Select("id").From("flights").Where(squirrel.Eq{"id": p.FlightID}).Suffix("FOR UPDATE")
		res, err := db.ExecuteBuilt(ctx, tx, lock)
		if err != nil {
			return err
		}
		if len(res.Rows) == 0 {
			return db.ErrNotFound
		}

		if p.Seat != models.UnassignedSeat {
			taken, err := db.Count(ctx, tx, seatTakenQuery(p.FlightID, p.Seat))
			if err != nil {
				return err
			}
			if taken > 0 {
				return ErrSeatTaken
			}
		}

		q := psql.Insert("passengers").
			Columns("flight_id", "fullname", "seat", "passport", "photo_url", "photo_owned").
			Values(p.FlightID, p.Fullname, p.Seat, p.Passport, p.PhotoURL, p.PhotoOwned).
			Suffix("RETURNING *")
		created, err := db.GetBuilt[models.Passenger](ctx, tx, q)
		if err != nil {
			return err
		}
		*p = *created
		return nil
	})
	if dberrors.IsDuplicateConstraintError(err, FlightConstraintSeat) {
		return ErrSeatTaken
	}
	if errors.Is(err, ErrSeatTaken) || errors.Is(err, db.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("error adding passenger: %w", err)
	}
	return nil
}

func seatTakenQuery(flightID int64, seat string) squirrel.SelectBuilder {
	return psql.Select("COUNT(*)").From("passengers").
		Where(squirrel.Eq{"flight_id": flightID}).
		Where("UPPER(seat) = ?", strings.ToUpper(seat))
}

// RemovePassenger deletes a passenger of the flight and returns the removed row.
func (r *FlightRepository) RemovePassenger(ctx context.Context, flightID, passengerID int64) (*models.Passenger, error) {
	q := psql.Delete("passengers").
		Where(squirrel.Eq{"id": passengerID, "flight_id": flightID}).
		Suffix("RETURNING *")

	removed, err := db.GetBuilt[models.Passenger](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error removing passenger: %w", err)
	}
	return removed, nil
}
