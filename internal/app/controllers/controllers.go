// Package controllers handles HTTP request handling
package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/apperrors"
)

var errInvalidJSON = apperrors.NewBadRequestError("JSON invalide")

func isMultipart(ctx *gin.Context) bool {
	return ctx.ContentType() == binding.MIMEMultipartPOSTForm
}

// readPayload decodes a JSON object or the fields of a multipart form.
// An empty body yields an empty payload.
func readPayload(ctx *gin.Context) (dto.Payload, error) {
	if isMultipart(ctx) {
		form, err := ctx.MultipartForm()
		if err != nil {
			return nil, apperrors.NewBadRequestError("Formulaire invalide")
		}
		return dto.PayloadFromForm(form.Value), nil
	}
	if ctx.ContentType() == binding.MIMEPOSTForm {
		if err := ctx.Request.ParseForm(); err != nil {
			return nil, apperrors.NewBadRequestError("Formulaire invalide")
		}
		return dto.PayloadFromForm(ctx.Request.PostForm), nil
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return nil, errInvalidJSON
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return dto.Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p dto.Payload
	if err := dec.Decode(&p); err != nil || p == nil {
		return nil, errInvalidJSON
	}
	return p, nil
}

// bindJSON decodes the body into obj, mapping syntax errors to a 400.
func bindJSON(ctx *gin.Context, obj any) error {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}
	return nil
}

// formFile returns the uploaded file under field, or nil.
func formFile(ctx *gin.Context, field string) *multipart.FileHeader {
	if !isMultipart(ctx) {
		return nil
	}
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func formFiles(ctx *gin.Context, field string) []*multipart.FileHeader {
	if !isMultipart(ctx) {
		return nil
	}
	form, err := ctx.MultipartForm()
	if err != nil || form.File == nil {
		return nil
	}
	return form.File[field]
}

// currentActor returns the authenticated caller, or nil on public routes.
func currentActor(ctx *gin.Context) *services.Actor {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return nil
	}
	role, _ := middleware.CurrentRole(ctx)
	return &services.Actor{ID: id, Role: role}
}

// requestBaseURL is the configured public URL, or scheme://host of the request.
func requestBaseURL(ctx *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := ctx.Request.Host
	if fwd := ctx.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

func respondList[T any](ctx *gin.Context, items []T, total int64) {
	ctx.JSON(http.StatusOK, dto.NewListResponse(items, total))
}

func respondDeleted(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Supprimé"})
}

func respondItems[T any](ctx *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

// bindRequest binds multipart fields by form tag, or a JSON body.
func bindRequest(ctx *gin.Context, obj any) error {
	if isMultipart(ctx) {
		if err := ctx.ShouldBind(obj); err != nil {
			return apperrors.NewBadRequestError("Formulaire invalide")
		}
		return nil
	}
	return bindJSON(ctx, obj)
}
