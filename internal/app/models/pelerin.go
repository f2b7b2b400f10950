package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pelerin is a pilgrim record. Its wire form is snake_case.
type Pelerin struct {
	ID                 int64       `json:"id" db:"id"`
	PhotoPelerinPath   *string     `json:"photo_pelerin_path" db:"photo_pelerin_path"`
	PhotoPasseportPath *string     `json:"photo_passeport_path" db:"photo_passeport_path"`
	Nom                string      `json:"nom" db:"nom"`
	Prenoms            string      `json:"prenoms" db:"prenoms"`
	DateNaissance      pgtype.Date `json:"date_naissance" db:"date_naissance" swaggertype:"string" example:"1970-01-31"`
	LieuNaissance      *string     `json:"lieu_naissance" db:"lieu_naissance"`
	Sexe               string      `json:"sexe" db:"sexe" example:"M"`
	Adresse            *string     `json:"adresse" db:"adresse"`
	Contact            string      `json:"contact" db:"contact"`
	NumPasseport       string      `json:"num_passeport" db:"num_passeport" example:"A01234567"`
	Offre              *string     `json:"offre" db:"offre"`
	Voyage             *string     `json:"voyage" db:"voyage"`
	AnneeVoyage        int         `json:"annee_voyage" db:"annee_voyage"`
	UrNom              *string     `json:"ur_nom" db:"ur_nom"`
	UrPrenoms          *string     `json:"ur_prenoms" db:"ur_prenoms"`
	UrContact          *string     `json:"ur_contact" db:"ur_contact"`
	UrResidence        *string     `json:"ur_residence" db:"ur_residence"`
	CreatedByName      *string     `json:"created_by_name" db:"created_by_name"`
	CreatedByID        *int64      `json:"created_by_id" db:"created_by_id"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// PhotoPaths returns the stored photo paths that are set.
func (p *Pelerin) PhotoPaths() []string {
	var paths []string
	for _, s := range []*string{p.PhotoPelerinPath, p.PhotoPasseportPath} {
		if s != nil && *s != "" {
			paths = append(paths, *s)
		}
	}
	return paths
}

// PelerinMatch is the compact row returned by the passport lookup.
type PelerinMatch struct {
	ID           int64  `json:"id" db:"id"`
	Nom          string `json:"nom" db:"nom"`
	Prenoms      string `json:"prenoms" db:"prenoms"`
	NumPasseport string `json:"num_passeport" db:"num_passeport"`
}

// PelerinOffre is a pilgrim joined with the price of the offer it booked.
type PelerinOffre struct {
	ID                 int64    `db:"id"`
	Nom                string   `db:"nom"`
	Prenoms            string   `db:"prenoms"`
	NumPasseport       string   `db:"num_passeport"`
	Offre              *string  `db:"offre"`
	PrixOffre          *float64 `db:"prix_offre"`
	PhotoPelerinPath   *string  `db:"photo_pelerin_path"`
	PhotoPasseportPath *string  `db:"photo_passeport_path"`
	Contact            string   `db:"contact"`
}
