package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// FlightController handles flights and their passengers
type FlightController struct {
	flightService services.FlightService
}

// NewFlightController creates a new FlightController
func NewFlightController(flightService services.FlightService) *FlightController {
	return &FlightController{flightService: flightService}
}

func flightResponses(flights []models.Flight) []dto.FlightResponse {
	out := make([]dto.FlightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, dto.NewFlightResponse(&flights[i]))
	}
	return out
}

// ListFlights godoc
// @Summary List flights with their passengers
// @Tags vols
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListResponse[dto.FlightResponse]
// @Router /vols [get]
func (c *FlightController) ListFlights(ctx *gin.Context) {
	flights, err := c.flightService.ListFlights(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	items := flightResponses(flights)
	respondList(ctx, items, int64(len(items)))
}

// GetFlight godoc
// @Summary Get a flight
// @Tags vols
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} dto.FlightResponse
// @Failure 404 {object} dto.ErrorResponse "Vol introuvable"
// @Router /vols/{id} [get]
func (c *FlightController) GetFlight(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	f, err := c.flightService.GetFlight(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewFlightResponse(f))
}

// CreateFlight godoc
// @Summary Create a flight
// @Tags vols
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FlightRequest true "Flight"
// @Success 201 {object} dto.FlightResponse
// @Failure 400 {object} dto.ErrorResponse "Codes IATA invalides (ex: DSS, JED)."
// @Router /vols [post]
func (c *FlightController) CreateFlight(ctx *gin.Context) {
	var req dto.FlightRequest
	if err := bindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	f, err := c.flightService.CreateFlight(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewFlightResponse(f))
}

// UpdateFlight godoc
// @Summary Replace a flight
// @Tags vols
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param request body dto.FlightRequest true "Flight"
// @Success 200 {object} dto.FlightResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Vol introuvable"
// @Router /vols/{id} [put]
func (c *FlightController) UpdateFlight(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.FlightRequest
	if err := bindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	f, err := c.flightService.UpdateFlight(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewFlightResponse(f))
}

// DeleteFlight godoc
// @Summary Delete a flight and its passengers
// @Tags vols
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /vols/{id} [delete]
func (c *FlightController) DeleteFlight(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.flightService.DeleteFlight(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx)
}

// AddPassenger godoc
// @Summary Add a passenger
// @Tags vols
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param photo formData file false "Photo"
// @Success 201 {object} models.Passenger
// @Failure 400 {object} dto.ErrorResponse "Nom requis"
// @Failure 404 {object} dto.ErrorResponse "Vol introuvable"
// @Failure 409 {object} dto.ErrorResponse "Siège déjà attribué"
// @Router /vols/{id}/passagers [post]
func (c *FlightController) AddPassenger(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.PassengerRequest
	if err := bindRequest(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	p, err := c.flightService.AddPassenger(ctx.Request.Context(), id, &req, formFile(ctx, "photo"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// RemovePassenger godoc
// @Summary Remove a passenger
// @Tags vols
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param pid path int true "Passenger ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Passager introuvable"
// @Router /vols/{id}/passagers/{pid} [delete]
func (c *FlightController) RemovePassenger(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	pid, err := helpers.ParseID(ctx, "pid")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.flightService.RemovePassenger(ctx.Request.Context(), id, pid); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Retiré"})
}

// ExportPassengers godoc
// @Summary Passenger list as CSV
// @Tags vols
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "Vol introuvable"
// @Router /vols/{id}/export.csv [get]
func (c *FlightController) ExportPassengers(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var buf bytes.Buffer
	filename, err := c.flightService.ExportPassengers(ctx.Request.Context(), id, &buf)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
