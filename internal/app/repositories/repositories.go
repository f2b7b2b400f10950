package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/db"
)

// psql builds every statement with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository-level errors that services translate into user messages.
var (
	ErrSeatTaken      = errors.New("seat already assigned")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyDeleted = errors.New("message already deleted")
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository            *UserRepository
	PelerinRepository         *PelerinRepository
	MedicaleRepository        *MedicaleRepository
	FlightRepository          *FlightRepository
	RoomRepository            *RoomRepository
	PaymentRepository         *PaymentRepository
	VersementRepository       *VersementRepository
	OffreRepository           *OffreRepository
	VoyageRepository          *VoyageRepository
	ChatRepository            *ChatRepository
	PelerinPaiementRepository *PelerinPaiementRepository
}

// NewRepositories initializes all repositories
func NewRepositories(ex db.Executor) *Repositories {
	return &Repositories{
		UserRepository:            NewUserRepository(ex),
		PelerinRepository:         NewPelerinRepository(ex),
		MedicaleRepository:        NewMedicaleRepository(ex),
		FlightRepository:          NewFlightRepository(ex),
		RoomRepository:            NewRoomRepository(ex),
		PaymentRepository:         NewPaymentRepository(ex),
		VersementRepository:       NewVersementRepository(ex),
		OffreRepository:           NewOffreRepository(ex),
		VoyageRepository:          NewVoyageRepository(ex),
		ChatRepository:            NewChatRepository(ex),
		PelerinPaiementRepository: NewPelerinPaiementRepository(ex),
	}
}

// ilikeAny matches pattern against any of columns.
func ilikeAny(pattern string, columns ...string) squirrel.Or {
	or := make(squirrel.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

// paths collects the non-empty strings.
func paths(values ...*string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil && *v != "" {
			out = append(out, *v)
		}
	}
	return out
}
