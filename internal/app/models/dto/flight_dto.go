package dto

import (
	"time"

	"github.com/bmvt/backend/internal/app/models"
)

// FlightEndpointRequest is one end of a flight as sent by clients.
type FlightEndpointRequest struct {
	Code string `json:"code" example:"DSS"`
	Date string `json:"date" example:"2025-03-15T14:30"`
}

// FlightRequest creates or replaces a flight.
type FlightRequest struct {
	Code     string                `json:"code" example:"SV 123"`
	Company  string                `json:"company" example:"Saudia"`
	From     FlightEndpointRequest `json:"from"`
	To       FlightEndpointRequest `json:"to"`
	Duration string                `json:"duration" example:"6h30"`
}

// FlightEndpoint is one end of a flight in responses.
type FlightEndpoint struct {
	Code string    `json:"code"`
	Date time.Time `json:"date"`
}

// FlightResponse is the wire shape of a flight.
type FlightResponse struct {
	ID         int64              `json:"id"`
	Code       string             `json:"code"`
	Company    string             `json:"company"`
	From       FlightEndpoint     `json:"from"`
	To         FlightEndpoint     `json:"to"`
	Duration   string             `json:"duration"`
	Passengers []models.Passenger `json:"passengers"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// NewFlightResponse maps a flight row and its passengers.
func NewFlightResponse(f *models.Flight) FlightResponse {
	passengers := f.Passengers
	if passengers == nil {
		passengers = []models.Passenger{}
	}
	return FlightResponse{
		ID:         f.ID,
		Code:       f.Code,
		Company:    f.Company,
		From:       FlightEndpoint{Code: f.FromCode, Date: f.FromDate},
		To:         FlightEndpoint{Code: f.ToCode, Date: f.ToDate},
		Duration:   f.Duration,
		Passengers: passengers,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// PassengerRequest adds a passenger to a flight.
type PassengerRequest struct {
	Fullname string `json:"fullname" form:"fullname"`
	Seat     string `json:"seat" form:"seat"`
	Passport string `json:"passport" form:"passport"`
	PhotoURL string `json:"photoUrl" form:"photoUrl"`
}
