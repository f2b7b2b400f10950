package models

import "time"

// Room is a hotel room holding occupants.
type Room struct {
	ID        int64      `json:"id" db:"id"`
	Hotel     string     `json:"hotel" db:"hotel"`
	City      string     `json:"city" db:"city"`
	Type      string     `json:"type" db:"type"`
	Capacity  int        `json:"capacity" db:"capacity"`
	Occupants []Occupant `json:"occupants" db:"-"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Occupant belongs to a room.
type Occupant struct {
	ID       int64   `json:"id" db:"id"`
	RoomID   int64   `json:"-" db:"room_id"`
	Name     string  `json:"name" db:"name"`
	Passport *string `json:"passport" db:"passport"`
	PhotoURL *string `json:"photoUrl" db:"photo_url"`

	PhotoOwned bool `json:"-" db:"photo_owned"`
}

// OwnedPhoto returns the photo path only when it came from this occupant's upload.
func (o Occupant) OwnedPhoto() *string {
	if !o.PhotoOwned {
		return nil
	}
	return o.PhotoURL
}
