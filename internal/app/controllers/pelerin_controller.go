package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// PelerinController handles pilgrim records
type PelerinController struct {
	pelerinService services.PelerinService
}

// NewPelerinController creates a new PelerinController
func NewPelerinController(pelerinService services.PelerinService) *PelerinController {
	return &PelerinController{pelerinService: pelerinService}
}

func pelerinFiles(ctx *gin.Context) services.PelerinFiles {
	return services.PelerinFiles{
		Photo:    formFile(ctx, "photoPelerin"),
		Passport: formFile(ctx, "photoPasseport"),
	}
}

// ListPelerins godoc
// @Summary List pilgrims
// @Tags pelerins
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name, passport, contact or author"
// @Success 200 {object} dto.ListResponse[models.Pelerin]
// @Router /pelerins [get]
func (c *PelerinController) ListPelerins(ctx *gin.Context) {
	items, err := c.pelerinService.ListPelerins(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, int64(len(items)))
}

// SearchByPassport godoc
// @Summary Autocomplete pilgrims by passport fragment
// @Tags pelerins
// @Produce json
// @Security BearerAuth
// @Param passport query string true "Passport fragment"
// @Success 200 {array} models.PelerinMatch
// @Failure 400 {object} dto.ErrorResponse "Paramètre 'passport' requis."
// @Router /pelerins/by-passport [get]
func (c *PelerinController) SearchByPassport(ctx *gin.Context) {
	items, err := c.pelerinService.SearchByPassport(ctx.Request.Context(), ctx.Query("passport"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// GetPelerin godoc
// @Summary Get a pilgrim
// @Tags pelerins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pelerin ID"
// @Success 200 {object} models.Pelerin
// @Failure 400 {object} dto.ErrorResponse "id invalide"
// @Failure 404 {object} dto.ErrorResponse "Introuvable"
// @Router /pelerins/{id} [get]
func (c *PelerinController) GetPelerin(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	item, err := c.pelerinService.GetPelerin(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// CreatePelerin godoc
// @Summary Register a pilgrim
// @Description Multipart with photoPelerin and photoPasseport files, or JSON.
// @Tags pelerins
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param photoPelerin formData file false "Photo"
// @Param photoPasseport formData file false "Passport scan"
// @Success 201 {object} dto.ItemMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Champs obligatoires manquants."
// @Router /pelerins [post]
func (c *PelerinController) CreatePelerin(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	item, err := c.pelerinService.CreatePelerin(ctx.Request.Context(), currentActor(ctx), in, pelerinFiles(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ItemMessageResponse{Message: "Pèlerin enregistré.", Item: item})
}

// UpdatePelerin godoc
// @Summary Update a pilgrim
// @Description Partial update; camelCase or snake_case keys. New photos replace the old files.
// @Tags pelerins
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pelerin ID"
// @Success 200 {object} dto.ItemMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Aucun champ à mettre à jour."
// @Failure 404 {object} dto.ErrorResponse
// @Router /pelerins/{id} [put]
func (c *PelerinController) UpdatePelerin(ctx *gin.Context) {
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
	item, err := c.pelerinService.UpdatePelerin(ctx.Request.Context(), id, in, pelerinFiles(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ItemMessageResponse{Message: "Mise à jour effectuée", Item: item})
}

// DeletePelerin godoc
// @Summary Delete a pilgrim and its photos
// @Tags pelerins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pelerin ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /pelerins/{id} [delete]
func (c *PelerinController) DeletePelerin(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.pelerinService.DeletePelerin(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx)
}
