package dto

import "github.com/bmvt/backend/internal/app/models"

// PelerinPaiementView is a pilgrim as shown on the payment screen.
type PelerinPaiementView struct {
	ID             int64   `json:"id"`
	Nom            string  `json:"nom"`
	Prenoms        string  `json:"prenoms"`
	Passeport      string  `json:"passeport"`
	Offre          *string `json:"offre"`
	PrixOffre      float64 `json:"prixOffre"`
	PhotoPelerin   *string `json:"photoPelerin"`
	PhotoPasseport *string `json:"photoPasseport"`
	Contact        *string `json:"contact"`
}

// PelerinsPaiementResponse lists pilgrims with their payments.
type PelerinsPaiementResponse struct {
	Pelerins []PelerinPaiementView `json:"pelerins"`
	Payments []models.Payment      `json:"payments"`
}

// PelerinPaiementByPassportResponse holds one pilgrim, or null, with payments.
type PelerinPaiementByPassportResponse struct {
	Pelerin  *PelerinPaiementView `json:"pelerin"`
	Payments []models.Payment     `json:"payments"`
}
