package dto

import "github.com/bmvt/backend/internal/app/models/dto/enums"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string          `json:"message" example:"Introuvable"`
	Detail  any             `json:"detail,omitempty"`
	Code    enums.ErrorCode `json:"code,omitempty" example:"RES_001"`
}

// NewErrorResponse creates an error body with a code.
func NewErrorResponse(code enums.ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Message: message, Code: code}
}

// WithDetail attaches debugging detail; callers omit it in production.
func (e *ErrorResponse) WithDetail(detail any) *ErrorResponse {
	e.Detail = detail
	return e
}
