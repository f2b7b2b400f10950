package models

import "time"

// Flight is a row of the 'flights' table.
type Flight struct {
	ID         int64       `db:"id"`
	Code       string      `db:"code"`
	Company    string      `db:"company"`
	FromCode   string      `db:"from_code"`
	FromDate   time.Time   `db:"from_date"`
	ToCode     string      `db:"to_code"`
	ToDate     time.Time   `db:"to_date"`
	Duration   string      `db:"duration"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
	Passengers []Passenger `db:"-"`
}

// Passenger is a seat assignment on a flight. "—" marks an unassigned seat.
type Passenger struct {
	ID       int64   `json:"id" db:"id"`
	FlightID int64   `json:"-" db:"flight_id"`
	Fullname string  `json:"fullname" db:"fullname"`
	Seat     string  `json:"seat" db:"seat"`
	Passport *string `json:"passport" db:"passport"`
	PhotoURL *string `json:"photoUrl" db:"photo_url"`

	// PhotoOwned is set when PhotoURL was stored by this passenger's upload.
	PhotoOwned bool `json:"-" db:"photo_owned"`
}

// OwnedPhoto returns the photo path only when the passenger owns the file.
func (p Passenger) OwnedPhoto() *string {
	if !p.PhotoOwned {
		return nil
	}
	return p.PhotoURL
}

// UnassignedSeat is the sentinel stored when no seat is given.
const UnassignedSeat = "—"
