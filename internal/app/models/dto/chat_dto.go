package dto

import (
	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
)

// ChatMessageInput carries the fields of a new message.
type ChatMessageInput struct {
	Channel    string
	AuthorName string
	AuthorID   *int64
	Text       string
	ReplyToID  *int64
}

// ChatUpdateInput edits a message. A nil Text leaves it untouched.
type ChatUpdateInput struct {
	Text               *string
	ReplaceAttachments bool
}

// ChatListQuery filters a channel listing.
type ChatListQuery struct {
	Channel string `form:"channel"`
	Limit   int    `form:"limit"`
	AfterID int64  `form:"afterId"`
	Search  string `form:"search"`
}

// ChatFrame is the payload of a stream frame.
type ChatFrame struct {
	Type enums.ChatEvent     `json:"type"`
	Item *models.ChatMessage `json:"item,omitempty"`
	ID   int64               `json:"id,omitempty"`
}

// ChannelsResponse lists the chat channels.
type ChannelsResponse struct {
	Channels []enums.Channel `json:"channels"`
}
