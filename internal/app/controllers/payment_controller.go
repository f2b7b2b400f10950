package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// PaymentController handles payments and installments
type PaymentController struct {
	paymentService   services.PaymentService
	versementService services.VersementService
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService services.PaymentService, versementService services.VersementService) *PaymentController {
	return &PaymentController{paymentService: paymentService, versementService: versementService}
}

// ListPayments godoc
// @Summary List payments
// @Description Newest first. Capped at 1000 rows when no filter is given.
// @Tags paiements
// @Produce json
// @Security BearerAuth
// @Param passeport query string false "Passport"
// @Param du query string false "From date (YYYY-MM-DD)"
// @Param au query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListResponse[models.Payment]
// @Failure 400 {object} dto.ErrorResponse "Date invalide."
// @Router /paiements [get]
func (c *PaymentController) ListPayments(ctx *gin.Context) {
	items, err := c.paymentService.ListPayments(ctx.Request.Context(), services.PaymentQuery{
		Passeport: ctx.Query("passeport"),
		Du:        ctx.Query("du"),
		Au:        ctx.Query("au"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, int64(len(items)))
}

// GetPayment godoc
// @Summary Get a payment
// @Tags paiements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 404 {object} dto.ErrorResponse "Paiement introuvable"
// @Router /paiements/{id} [get]
func (c *PaymentController) GetPayment(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	p, err := c.paymentService.GetPayment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// CreatePayment godoc
// @Summary Record a payment
// @Description Defaults mode "Espèces", statut "Partiel" and date today. The reference is generated.
// @Tags paiements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Payment
// @Failure 400 {object} dto.ErrorResponse "Champs requis manquants (passeport, nom)."
// @Router /paiements [post]
func (c *PaymentController) CreatePayment(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	p, err := c.paymentService.CreatePayment(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// DeletePayment godoc
// @Summary Delete a payment
// @Tags paiements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Paiement introuvable"
// @Router /paiements/{id} [delete]
func (c *PaymentController) DeletePayment(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.paymentService.DeletePayment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx)
}

// ListVersements godoc
// @Summary List installments
// @Description Newest first; du/au bound the due date. Also served under /paiements/versements.
// @Tags versements
// @Produce json
// @Security BearerAuth
// @Param passeport query string false "Passport"
// @Param du query string false "From due date"
// @Param au query string false "To due date"
// @Param limit query int false "Max rows" default(1000)
// @Success 200 {object} dto.ListResponse[models.Versement]
// @Router /versements [get]
func (c *PaymentController) ListVersements(ctx *gin.Context) {
	items, err := c.versementService.ListVersements(ctx.Request.Context(), services.VersementQuery{
		Passeport: ctx.Query("passeport"),
		Du:        ctx.Query("du"),
		Au:        ctx.Query("au"),
		Limit:     helpers.QueryInt(ctx, "limit", 0),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, int64(len(items)))
}

// CreateVersement godoc
// @Summary Record an installment
// @Description Defaults echeance to today and statut to "En cours".
// @Tags versements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Versement
// @Failure 400 {object} dto.ErrorResponse
// @Router /versements [post]
func (c *PaymentController) CreateVersement(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	v, err := c.versementService.CreateVersement(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, v)
}
