package models

import "time"

// Medicale is a medical form. Fields stay snake_case on the wire.
type Medicale struct {
	ID                   int64     `json:"id" db:"id"`
	PelerinID            *int64    `json:"pelerin_id" db:"pelerin_id"`
	NumeroCMAH           *string   `json:"numero_cmah" db:"numero_cmah"`
	Passeport            string    `json:"passeport" db:"passeport"`
	Nom                  *string   `json:"nom" db:"nom"`
	Prenoms              *string   `json:"prenoms" db:"prenoms"`
	Pouls                *string   `json:"pouls" db:"pouls"`
	CarnetVaccins        *string   `json:"carnet_vaccins" db:"carnet_vaccins"`
	GroupeSanguin        *string   `json:"groupe_sanguin" db:"groupe_sanguin"`
	Covid                *string   `json:"covid" db:"covid"`
	Poids                *string   `json:"poids" db:"poids"`
	Tension              *string   `json:"tension" db:"tension"`
	Vulnerabilite        *string   `json:"vulnerabilite" db:"vulnerabilite"`
	Diabete              *string   `json:"diabete" db:"diabete"`
	MaladieCardiaque     *string   `json:"maladie_cardiaque" db:"maladie_cardiaque"`
	AnalysePsychiatrique *string   `json:"analyse_psychiatrique" db:"analyse_psychiatrique"`
	Accompagnements      *string   `json:"accompagnements" db:"accompagnements"`
	ExamenParaclinique   *string   `json:"examen_paraclinique" db:"examen_paraclinique"`
	Antecedents          *string   `json:"antecedents" db:"antecedents"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// MedicaleColumns lists the writable columns of a medical form.
var MedicaleColumns = []string{
	"numero_cmah", "passeport", "nom", "prenoms", "pouls", "carnet_vaccins",
	"groupe_sanguin", "covid", "poids", "tension", "vulnerabilite", "diabete",
	"maladie_cardiaque", "analyse_psychiatrique", "accompagnements",
	"examen_paraclinique", "antecedents",
}
