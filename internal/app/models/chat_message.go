package models

import "time"

// Attachment is one file attached to a chat message, stored as JSONB.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type" example:"image"`
	URL  string `json:"url" example:"/uploads/chat/1718000000000_photo.jpg"`
}

// ChatMessage is never hard-deleted; DeletedAt marks a soft delete.
type ChatMessage struct {
	ID          int64        `json:"id" db:"id"`
	Channel     string       `json:"channel" db:"channel"`
	AuthorID    *int64       `json:"author_id" db:"author_id"`
	AuthorName  string       `json:"author_name" db:"author_name"`
	Text        *string      `json:"text" db:"text"`
	ReplyToID   *int64       `json:"reply_to_id" db:"reply_to_id"`
	Attachments []Attachment `json:"attachments" db:"attachments"`
	EditedAt    *time.Time   `json:"edited_at" db:"edited_at"`
	DeletedAt   *time.Time   `json:"deleted_at" db:"deleted_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// AttachmentPaths returns the public paths of every attachment.
func (m *ChatMessage) AttachmentPaths() []string {
	paths := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		if a.URL != "" {
			paths = append(paths, a.URL)
		}
	}
	return paths
}
