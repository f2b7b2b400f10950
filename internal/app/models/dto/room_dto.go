package dto

// OccupantRequest adds an occupant to a room.
type OccupantRequest struct {
	Name     string `json:"name" form:"name"`
	Passport string `json:"passport" form:"passport"`
	PhotoURL string `json:"photoUrl" form:"photoUrl"`
}
