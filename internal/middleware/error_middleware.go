package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/dberrors"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    enums.ErrorCode
	message string
}

var errorMappings = []errorMapping{
	{helpers.ErrInvalidID, http.StatusBadRequest, enums.ErrorCodeValidationFailed, "id invalide"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, enums.ErrorCodeValidationFailed, "Requête invalide"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, enums.ErrorCodeInvalidCredentials, "Identifiants invalides"},
	{apperrors.ErrTokenMissing, http.StatusUnauthorized, enums.ErrorCodeTokenNotFound, "Token manquant"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, enums.ErrorCodeInvalidToken, "Token invalide ou expiré"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, enums.ErrorCodeUnauthorized, "Non authentifié"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, enums.ErrorCodeForbidden, "Accès refusé."},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, enums.ErrorCodeResourceNotFound, "Introuvable"},
	{db.ErrNotFound, http.StatusNotFound, enums.ErrorCodeResourceNotFound, "Introuvable"},
	{apperrors.ErrConflict, http.StatusConflict, enums.ErrorCodeConflict, "Conflit"},
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, enums.ErrorCodeTooManyRequests, "Trop de tentatives, réessayez plus tard."},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if msg, ok := apperrors.Message(err); ok {
				message = msg
			}
			c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(m.code, message))
			return
		}
	}

	// Values the schema rejects (too long, out of range, malformed) are client errors.
	if dberrors.IsInvalidInput(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse(enums.ErrorCodeValidationFailed, "Valeur invalide ou trop longue."))
		return
	}

	code := enums.ErrorCodeInternalServer
	var dbErr *db.DatabaseError
	if errors.As(err, &dbErr) {
		code = enums.ErrorCodeDatabaseError
	}
	logger.Ctx(c.Request.Context()).Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")

	resp := dto.NewErrorResponse(code, "Erreur serveur")
	if gin.Mode() != gin.ReleaseMode {
		resp = resp.WithDetail(err.Error())
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

// BadRequest writes a 400 with a literal message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(enums.ErrorCodeValidationFailed, message))
}
