package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// RoomController handles hotel rooms and their occupants
type RoomController struct {
	roomService services.RoomService
}

// NewRoomController creates a new RoomController
func NewRoomController(roomService services.RoomService) *RoomController {
	return &RoomController{roomService: roomService}
}

func roomInput(ctx *gin.Context) (services.RoomInput, error) {
	in, err := readPayload(ctx)
	if err != nil {
		return services.RoomInput{}, err
	}
	capacity, _ := in.Int("capacity")
	return services.RoomInput{
		Hotel:    in.String("hotel"),
		City:     in.String("city"),
		Type:     in.String("type"),
		Capacity: capacity,
	}, nil
}

// ListRooms godoc
// @Summary List rooms with their occupants
// @Tags chambres
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListResponse[models.Room]
// @Router /chambres [get]
func (c *RoomController) ListRooms(ctx *gin.Context) {
	rooms, err := c.roomService.ListRooms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, rooms, int64(len(rooms)))
}

// GetRoom godoc
// @Summary Get a room
// @Tags chambres
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} models.Room
// @Failure 404 {object} dto.ErrorResponse "Chambre introuvable"
// @Router /chambres/{id} [get]
func (c *RoomController) GetRoom(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	room, err := c.roomService.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, room)
}

// CreateRoom godoc
// @Summary Create a room
// @Tags chambres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Room
// @Failure 400 {object} dto.ErrorResponse "Champs requis manquants (hotel, city)."
// @Router /chambres [post]
func (c *RoomController) CreateRoom(ctx *gin.Context) {
	in, err := roomInput(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	room, err := c.roomService.CreateRoom(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, room)
}

// UpdateRoom godoc
// @Summary Update a room
// @Tags chambres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} models.Room
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Chambre introuvable"
// @Router /chambres/{id} [put]
func (c *RoomController) UpdateRoom(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	in, err := roomInput(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	room, err := c.roomService.UpdateRoom(ctx.Request.Context(), id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary Delete a room and its occupants
// @Tags chambres
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Chambre introuvable"
// @Router /chambres/{id} [delete]
func (c *RoomController) DeleteRoom(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.roomService.DeleteRoom(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx)
}

// AddOccupant godoc
// @Summary Add an occupant
// @Tags chambres
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param photo formData file false "Photo"
// @Success 201 {object} models.Occupant
// @Failure 400 {object} dto.ErrorResponse "Nom requis"
// @Failure 404 {object} dto.ErrorResponse "Chambre introuvable"
// @Failure 409 {object} dto.ErrorResponse "Chambre complète."
// @Router /chambres/{id}/occupants [post]
func (c *RoomController) AddOccupant(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.OccupantRequest
	if err := bindRequest(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	o, err := c.roomService.AddOccupant(ctx.Request.Context(), id, &req, formFile(ctx, "photo"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, o)
}

// RemoveOccupant godoc
// @Summary Remove an occupant
// @Tags chambres
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param oid path int true "Occupant ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Occupant introuvable"
// @Router /chambres/{id}/occupants/{oid} [delete]
func (c *RoomController) RemoveOccupant(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	oid, err := helpers.ParseID(ctx, "oid")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.roomService.RemoveOccupant(ctx.Request.Context(), id, oid); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Retiré"})
}
