package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/pkg/filestorage"
)

// UploadController streams stored files back when they do not live on
// the local disk.
type UploadController struct {
	reader filestorage.ObjectReader
	logger zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(reader filestorage.ObjectReader, logger zerolog.Logger) *UploadController {
	return &UploadController{reader: reader, logger: logger}
}

// Serve answers GET /uploads/*path.
func (c *UploadController) Serve(ctx *gin.Context) {
	publicPath := "/uploads" + ctx.Param("path")
	body, contentType, err := c.reader.Open(ctx.Request.Context(), publicPath)
	if err != nil {
		if !errors.Is(err, filestorage.ErrNotFound) {
			c.logger.Error().Err(err).Str("path", publicPath).Msg("Failed to open stored file")
		}
		ctx.String(http.StatusNotFound, "Not found")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", contentType)
	if _, err := io.Copy(ctx.Writer, body); err != nil {
		c.logger.Warn().Err(err).Str("path", publicPath).Msg("Stored file stream interrupted")
	}
}
