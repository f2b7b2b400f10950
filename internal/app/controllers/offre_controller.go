package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// OffreController handles travel offers and yearly campaigns
type OffreController struct {
	offreService  services.OffreService
	voyageService services.VoyageService
}

// NewOffreController creates a new OffreController
func NewOffreController(offreService services.OffreService, voyageService services.VoyageService) *OffreController {
	return &OffreController{offreService: offreService, voyageService: voyageService}
}

// ListOffres godoc
// @Summary List offers
// @Tags offres
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or hotel"
// @Success 200 {object} dto.ListResponse[models.Offre]
// @Router /offres [get]
func (c *OffreController) ListOffres(ctx *gin.Context) {
	items, err := c.offreService.ListOffres(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, int64(len(items)))
}

// GetOffre godoc
// @Summary Get an offer
// @Tags offres
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offre ID"
// @Success 200 {object} models.Offre
// @Failure 404 {object} dto.ErrorResponse "Offre introuvable"
// @Router /offres/{id} [get]
func (c *OffreController) GetOffre(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	o, err := c.offreService.GetOffre(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, o)
}

// CreateOffre godoc
// @Summary Create an offer
// @Tags offres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Offre
// @Failure 400 {object} dto.ErrorResponse "Champs requis manquants"
// @Router /offres [post]
func (c *OffreController) CreateOffre(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	o, err := c.offreService.CreateOffre(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, o)
}

// UpdateOffre godoc
// @Summary Replace an offer
// @Tags offres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offre ID"
// @Success 200 {object} models.Offre
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Offre introuvable"
// @Router /offres/{id} [put]
func (c *OffreController) UpdateOffre(ctx *gin.Context) {
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
	o, err := c.offreService.UpdateOffre(ctx.Request.Context(), id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, o)
}

// DeleteOffre godoc
// @Summary Delete an offer
// @Tags offres
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offre ID"
// @Success 200 {object} dto.OKResponse
// @Failure 404 {object} dto.ErrorResponse "Offre introuvable"
// @Router /offres/{id} [delete]
func (c *OffreController) DeleteOffre(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.offreService.DeleteOffre(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// ListVoyages godoc
// @Summary List campaigns
// @Description Ordered by year descending, then name.
// @Tags voyages
// @Produce json
// @Security BearerAuth
// @Param nom query string false "HAJJ or OUMRAH"
// @Param annee query int false "Year"
// @Success 200 {object} dto.ListResponse[models.Voyage]
// @Router /voyages [get]
func (c *OffreController) ListVoyages(ctx *gin.Context) {
	items, err := c.voyageService.ListVoyages(ctx.Request.Context(), ctx.Query("nom"), helpers.QueryInt(ctx, "annee", 0))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, int64(len(items)))
}

// GetVoyage godoc
// @Summary Get a campaign
// @Tags voyages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Voyage ID"
// @Success 200 {object} models.Voyage
// @Failure 404 {object} dto.ErrorResponse "Voyage introuvable"
// @Router /voyages/{id} [get]
func (c *OffreController) GetVoyage(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	v, err := c.voyageService.GetVoyage(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, v)
}

// CreateVoyage godoc
// @Summary Create a campaign
// @Tags voyages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Voyage
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Ce voyage existe déjà pour cette année."
// @Router /voyages [post]
func (c *OffreController) CreateVoyage(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	v, err := c.voyageService.CreateVoyage(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, v)
}

// UpdateVoyage godoc
// @Summary Update a campaign
// @Tags voyages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Voyage ID"
// @Success 200 {object} models.Voyage
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Un voyage identique existe déjà."
// @Router /voyages/{id} [put]
func (c *OffreController) UpdateVoyage(ctx *gin.Context) {
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
	v, err := c.voyageService.UpdateVoyage(ctx.Request.Context(), id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, v)
}

// DeleteVoyage godoc
// @Summary Delete a campaign
// @Tags voyages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Voyage ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} dto.ErrorResponse "Voyage introuvable"
// @Router /voyages/{id} [delete]
func (c *OffreController) DeleteVoyage(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.voyageService.DeleteVoyage(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
