package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/dberrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	msgPaymentNotFound = "Paiement introuvable"
	msgInvalidDate     = "Date invalide."

	defaultPaymentMode   = "Espèces"
	defaultPaymentStatut = "Partiel"

	// refAttempts bounds the retries on a reference collision.
	refAttempts = 5
)

// RefGenerator produces a payment reference for the given instant.
type RefGenerator func(now time.Time) string

// RandomRef builds PAY-<year>-<6 random digits>.
func RandomRef(now time.Time) string {
	return fmt.Sprintf("PAY-%d-%06d", now.Year(), rand.IntN(1_000_000))
}

// PaymentStore is the persistence needed by PaymentService.
type PaymentStore interface {
	List(ctx context.Context, f repositories.PaymentFilter) ([]models.Payment, error)
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, id int64) error
}

// PaymentQuery holds the raw listing filters.
type PaymentQuery struct {
	Passeport string
	Du        string
	Au        string
}

// PaymentService records payments.
type PaymentService interface {
	ListPayments(ctx context.Context, q PaymentQuery) ([]models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	CreatePayment(ctx context.Context, in dto.Payload) (*models.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type paymentServiceImpl struct {
	repo   PaymentStore
	newRef RefGenerator
	now    func() time.Time
	logger zerolog.Logger
}

// NewPaymentService creates a new PaymentService. A nil generator uses RandomRef.
func NewPaymentService(repo PaymentStore, newRef RefGenerator, logger zerolog.Logger) PaymentService {
	if newRef == nil {
		newRef = RandomRef
	}
	return &paymentServiceImpl{repo: repo, newRef: newRef, now: time.Now, logger: logger}
}

// optionalDate parses s, returning an invalid date when s is blank.
func optionalDate(s string) (date pgtype.Date, err error) {
	if s == "" {
		return date, nil
	}
	date, err = helpers.ParseDate(s)
	if err != nil {
		return date, apperrors.NewBadRequestError(msgInvalidDate)
	}
	return date, nil
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context, q PaymentQuery) ([]models.Payment, error) {
	du, err := optionalDate(q.Du)
	if err != nil {
		return nil, err
	}
	au, err := optionalDate(q.Au)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repositories.PaymentFilter{
		Passeport: validation.NormalizePassport(q.Passeport),
		Du:        du,
		Au:        au,
	})
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgPaymentNotFound)
	}
	return p, nil
}

// CreatePayment fills the defaults and stores the payment under a fresh
// reference, drawing a new one when the previous collided.
func (s *paymentServiceImpl) CreatePayment(ctx context.Context, in dto.Payload) (*models.Payment, error) {
	passeport := validation.NormalizePassport(in.String("passeport"))
	nom := in.String("nom")
	if passeport == "" || nom == "" {
		return nil, apperrors.NewBadRequestError("Champs requis manquants (passeport, nom).")
	}
	if len(passeport) > validation.PassportMaxLength {
		return nil, apperrors.NewBadRequestError(msgPassportTooLong)
	}

	now := s.now()
	date := helpers.DateOf(now)
	if raw := in.String("date"); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewBadRequestError(msgInvalidDate)
		}
		date = parsed
	}

	p := &models.Payment{
		Passeport: passeport,
		Nom:       nom,
		Prenoms:   helpers.NullIfBlank(in.String("prenoms")),
		Mode:      stringOr(in.String("mode"), defaultPaymentMode),
		Montant:   floatOrZero(in, "montant"),
		TotalDu:   floatOrZero(in, "totalDu", "total_du"),
		Reduction: floatOrZero(in, "reduction"),
		Date:      date,
		Statut:    stringOr(in.String("statut"), defaultPaymentStatut),
	}

	var err error
	for attempt := 1; attempt <= refAttempts; attempt++ {
		p.Ref = s.newRef(now)
		err = s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !dberrors.IsDuplicateConstraintError(err, repositories.PaymentConstraintRef) {
			return nil, err
		}
		s.logger.Warn().Str("ref", p.Ref).Int("attempt", attempt).Msg("Payment reference collision")
	}
	return nil, fmt.Errorf("error generating payment reference: %w", err)
}

func (s *paymentServiceImpl) DeletePayment(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id), msgPaymentNotFound)
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func floatOrZero(in dto.Payload, keys ...string) float64 {
	f, _ := in.Float(keys...)
	return f
}
