package dto

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"Supprimé"`
}

// ItemMessageResponse acknowledges a write and returns the row.
type ItemMessageResponse struct {
	Message string `json:"message" example:"Mise à jour effectuée"`
	Item    any    `json:"item"`
}

// OKResponse is used by the medical and offer handlers.
type OKResponse struct {
	OK   bool `json:"ok" example:"true"`
	Item any  `json:"item,omitempty"`
}

// ItemResponse wraps a single row.
type ItemResponse struct {
	Item any `json:"item"`
}

// ListResponse is the shared list envelope.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// NewListResponse builds a list envelope, never with a null items array.
func NewListResponse[T any](items []T, total int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: total}
}

// DeleteResponse reports a soft delete.
type DeleteResponse struct {
	Message      string `json:"message" example:"Supprimé"`
	AffectedRows int64  `json:"affectedRows" example:"1"`
}
