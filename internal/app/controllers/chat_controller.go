package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/sse"
)

// ChatController handles chat messages and the live stream
type ChatController struct {
	chatService services.ChatService
	hub         *sse.Hub
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService, hub *sse.Hub, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
		logger:      logger,
	}
}

func optionalID(in dto.Payload, keys ...string) *int64 {
	n, ok := in.Int(keys...)
	if !ok || n <= 0 {
		return nil
	}
	id := int64(n)
	return &id
}

// Channels godoc
// @Summary List chat channels
// @Tags chat
// @Produce json
// @Success 200 {object} dto.ChannelsResponse
// @Router /chat/channels [get]
func (c *ChatController) Channels(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ChannelsResponse{Channels: enums.Channels})
}

// Stream godoc
// @Summary Live channel events
// @Description Server-sent events: "ready" on connect, message frames, "ping" heartbeats.
// @Tags chat
// @Produce text/event-stream
// @Param channel query string true "intra or encadreurs"
// @Param token query string false "JWT for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} dto.ErrorResponse "Paramètre 'channel' invalide."
// @Router /chat/stream [get]
func (c *ChatController) Stream(ctx *gin.Context) {
	sub, err := c.hub.Subscribe(ctx.Query("channel"))
	if err != nil {
		if errors.Is(err, sse.ErrInvalidChannel) {
			middleware.BadRequest(ctx, "Paramètre 'channel' invalide.")
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}
	// Blocks until the client goes away
	c.logger.Debug().Str("channel", sub.Channel()).Msg("Chat stream opened")
	sse.Serve(ctx, c.hub, sub)
	c.logger.Debug().Str("channel", sub.Channel()).Msg("Chat stream closed")
}

// ListMessages godoc
// @Summary List channel messages
// @Description Latest non-deleted messages in ascending order.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param channel query string true "Channel"
// @Param limit query int false "1..200" default(50)
// @Param afterId query int false "Only messages after this id"
// @Param search query string false "Text or author"
// @Success 200 {object} dto.ListResponse[models.ChatMessage]
// @Failure 400 {object} dto.ErrorResponse "Paramètre 'channel' invalide."
// @Router /chat/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	q := dto.ChatListQuery{
		Channel: ctx.Query("channel"),
		Limit:   helpers.QueryInt(ctx, "limit", 0),
		AfterID: int64(helpers.QueryInt(ctx, "afterId", 0)),
		Search:  ctx.Query("search"),
	}
	items, total, err := c.chatService.ListMessages(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, total)
}

// GetMessage godoc
// @Summary Get a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} models.ChatMessage
// @Failure 404 {object} dto.ErrorResponse "Introuvable"
// @Router /chat/messages/{id} [get]
func (c *ChatController) GetMessage(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	m, err := c.chatService.GetMessage(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, m)
}

// CreateMessage godoc
// @Summary Post a message
// @Description Multipart with up to 10 "files", or JSON. Publishes message:new on the channel.
// @Tags chat
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param files formData file false "Attachments"
// @Success 201 {object} dto.ItemResponse
// @Failure 400 {object} dto.ErrorResponse "Message vide."
// @Router /chat/messages [post]
func (c *ChatController) CreateMessage(ctx *gin.Context) {
	in, err := readPayload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	// Accept both camelCase and snake_case keys
	input := dto.ChatMessageInput{
		Channel:    in.String("channel"),
		AuthorName: in.String("authorName", "author_name"),
		AuthorID:   optionalID(in, "authorId", "author_id"),
		Text:       in.String("text"),
		ReplyToID:  optionalID(in, "replyToId", "reply_to_id"),
	}
	m, err := c.chatService.CreateMessage(ctx.Request.Context(), currentActor(ctx), input, formFiles(ctx, "files"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ItemResponse{Item: m})
}

// UpdateMessage godoc
// @Summary Edit a message
// @Description New files are appended unless replaceAttachments=true. Publishes message:update.
// @Tags chat
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param files formData file false "Attachments"
// @Success 200 {object} dto.ItemMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Message supprimé."
// @Failure 404 {object} dto.ErrorResponse "Introuvable"
// @Router /chat/messages/{id} [put]
func (c *ChatController) UpdateMessage(ctx *gin.Context) {
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
	// Absent text keeps the current one
	input := dto.ChatUpdateInput{ReplaceAttachments: in.Bool("replaceAttachments", "replace_attachments")}
	if in.Has("text") {
		text := in.String("text")
		input.Text = &text
	}
	m, err := c.chatService.UpdateMessage(ctx.Request.Context(), id, input, formFiles(ctx, "files"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ItemMessageResponse{Message: "Mise à jour effectuée", Item: m})
}

// DeleteMessage godoc
// @Summary Soft delete a message
// @Description Clears attachments and removes their files. Publishes message:delete.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} dto.ErrorResponse "Déjà supprimé."
// @Failure 404 {object} dto.ErrorResponse "Introuvable"
// @Router /chat/messages/{id} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	affected, err := c.chatService.DeleteMessage(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.DeleteResponse{Message: "Supprimé", AffectedRows: affected})
}
