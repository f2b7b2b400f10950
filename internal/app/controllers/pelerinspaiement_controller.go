package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// PelerinPaiementController serves the payment screen
type PelerinPaiementController struct {
	service       services.PelerinPaiementService
	publicBaseURL string
}

// NewPelerinPaiementController creates a new PelerinPaiementController.
// An empty publicBaseURL derives photo URLs from each request.
func NewPelerinPaiementController(service services.PelerinPaiementService, publicBaseURL string) *PelerinPaiementController {
	return &PelerinPaiementController{service: service, publicBaseURL: publicBaseURL}
}

// List godoc
// @Summary Pilgrims with offer price and payments
// @Tags pelerinspaiement
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search"
// @Param offre query string false "Offer name, TOUTES for all"
// @Param limit query int false "Max pilgrims" default(300)
// @Success 200 {object} dto.PelerinsPaiementResponse
// @Router /pelerinspaiement [get]
func (c *PelerinPaiementController) List(ctx *gin.Context) {
	resp, err := c.service.List(ctx.Request.Context(), services.PelerinPaiementQuery{
		Search:  ctx.Query("search"),
		Offre:   ctx.Query("offre"),
		Limit:   helpers.QueryInt(ctx, "limit", 0),
		BaseURL: requestBaseURL(ctx, c.publicBaseURL),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetByPassport godoc
// @Summary One pilgrim with its payments
// @Tags pelerinspaiement
// @Produce json
// @Security BearerAuth
// @Param passport query string true "Passport"
// @Success 200 {object} dto.PelerinPaiementByPassportResponse
// @Failure 400 {object} dto.ErrorResponse "Paramètre 'passport' requis."
// @Router /pelerinspaiement/by-passport [get]
func (c *PelerinPaiementController) GetByPassport(ctx *gin.Context) {
	resp, err := c.service.GetByPassport(ctx.Request.Context(), ctx.Query("passport"), requestBaseURL(ctx, c.publicBaseURL))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
