package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// MedicaleController handles medical forms
type MedicaleController struct {
	medicaleService services.MedicaleService
}

// NewMedicaleController creates a new MedicaleController
func NewMedicaleController(medicaleService services.MedicaleService) *MedicaleController {
	return &MedicaleController{medicaleService: medicaleService}
}

// ListMedicales godoc
// @Summary List medical forms
// @Tags medicales
// @Produce json
// @Security BearerAuth
// @Param search query string false "Passport, name or CMAH number"
// @Param limit query int false "1..500" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListResponse[models.Medicale]
// @Router /medicales [get]
func (c *MedicaleController) ListMedicales(ctx *gin.Context) {
	limit := helpers.QueryInt(ctx, "limit", 0)
	offset := helpers.QueryInt(ctx, "offset", 0)
	items, total, err := c.medicaleService.ListMedicales(ctx.Request.Context(), ctx.Query("search"), limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, total)
}

// ListByPassport godoc
// @Summary Medical forms of a passport
// @Tags medicales
// @Produce json
// @Security BearerAuth
// @Param passport query string false "Exact passport, case-insensitive"
// @Success 200 {object} map[string][]models.Medicale
// @Router /medicales/by-passport [get]
func (c *MedicaleController) ListByPassport(ctx *gin.Context) {
	items, err := c.medicaleService.ListByPassport(ctx.Request.Context(), ctx.Query("passport"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItems(ctx, items)
}

// GetMedicale godoc
// @Summary Get a medical form
// @Tags medicales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicale ID"
// @Success 200 {object} models.Medicale
// @Failure 404 {object} dto.ErrorResponse "Introuvable"
// @Router /medicales/{id} [get]
func (c *MedicaleController) GetMedicale(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	item, err := c.medicaleService.GetMedicale(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// CreateMedicale godoc
// @Summary Create a medical form
// @Tags medicales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.OKResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /medicales [post]
func (c *MedicaleController) CreateMedicale(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	item, err := c.medicaleService.CreateMedicale(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.OKResponse{OK: true, Item: item})
}

// UpdateMedicale godoc
// @Summary Update a medical form
// @Tags medicales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicale ID"
// @Success 200 {object} dto.OKResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /medicales/{id} [put]
func (c *MedicaleController) UpdateMedicale(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	item, err := c.medicaleService.UpdateMedicale(ctx.Request.Context(), id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKResponse{OK: true, Item: item})
}

// DeleteMedicale godoc
// @Summary Delete a medical form
// @Tags medicales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicale ID"
// @Success 200 {object} dto.OKResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /medicales/{id} [delete]
func (c *MedicaleController) DeleteMedicale(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.medicaleService.DeleteMedicale(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKResponse{OK: true})
}
