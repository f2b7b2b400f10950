package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Payment is a recorded payment with a generated reference.
type Payment struct {
	ID        int64       `json:"id" db:"id"`
	Ref       string      `json:"ref" db:"ref" example:"PAY-2025-004512"`
	Passeport string      `json:"passeport" db:"passeport"`
	Nom       string      `json:"nom" db:"nom"`
	Prenoms   *string     `json:"prenoms" db:"prenoms"`
	Mode      string      `json:"mode" db:"mode" example:"Espèces"`
	Montant   float64     `json:"montant" db:"montant"`
	TotalDu   float64     `json:"totalDu" db:"total_du"`
	Reduction float64     `json:"reduction" db:"reduction"`
	Date      pgtype.Date `json:"date" db:"date" swaggertype:"string"`
	Statut    string      `json:"statut" db:"statut" example:"Partiel"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// Versement is an installment, joined to payments by passport only.
type Versement struct {
	ID        int64       `json:"id" db:"id"`
	Passeport string      `json:"passeport" db:"passeport"`
	Nom       string      `json:"nom" db:"nom"`
	Prenoms   *string     `json:"prenoms" db:"prenoms"`
	Echeance  pgtype.Date `json:"echeance" db:"echeance" swaggertype:"string"`
	Verse     float64     `json:"verse" db:"verse"`
	Restant   float64     `json:"restant" db:"restant"`
	Statut    string      `json:"statut" db:"statut" example:"En cours"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}
