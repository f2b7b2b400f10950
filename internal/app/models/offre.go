package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Offre is a travel offer.
type Offre struct {
	ID          int64       `json:"id" db:"id"`
	Nom         string      `json:"nom" db:"nom"`
	Prix        float64     `json:"prix" db:"prix"`
	Hotel       string      `json:"hotel" db:"hotel"`
	DateDepart  pgtype.Date `json:"dateDepart" db:"date_depart" swaggertype:"string"`
	DateArrivee pgtype.Date `json:"dateArrivee" db:"date_arrivee" swaggertype:"string"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Voyage is a yearly HAJJ or OUMRAH campaign.
type Voyage struct {
	ID        int64     `json:"id" db:"id"`
	Nom       string    `json:"nom" db:"nom" example:"HAJJ"`
	Annee     int       `json:"annee" db:"annee" example:"2025"`
	Offres    *string   `json:"offres" db:"offres"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
