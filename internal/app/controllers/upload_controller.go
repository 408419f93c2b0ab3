package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/middleware"
	"github.com/selimk/learnhub/internal/pkg/auth"
	"github.com/selimk/learnhub/internal/pkg/filestorage"
)

// maxUploadBytes caps a single direct upload at 2 GiB
const maxUploadBytes = 2 << 30

// UploadController receives the direct PUT of a signed upload
type UploadController struct {
	signer  *auth.UploadSigner
	storage filestorage.Storage
	logger  zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(signer *auth.UploadSigner, storage filestorage.Storage, logger zerolog.Logger) *UploadController {
	return &UploadController{
		signer:  signer,
		storage: storage,
		logger:  logger,
	}
}

// Upload stores the request body under the path bound to the upload token
// @Summary Upload file bytes
// @Description Accepts the direct PUT of a signed upload. The token authorizes exactly one path and content type and expires quickly; the session cookie is not required.
// @Tags uploads
// @Accept octet-stream
// @Produce json
// @Param token query string true "Signed upload token"
// @Success 200 {object} dto.APIResponse "File stored"
// @Failure 400 {object} dto.ErrorResponse "Content type does not match the token"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /uploads [put]
func (c *UploadController) Upload(ctx *gin.Context) {
	claims, err := c.signer.Verify(ctx.Query("token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if contentType := ctx.ContentType(); contentType != "" && contentType != claims.ContentType {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Content type does not match the signed upload").
			WithField("Content-Type")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	body := http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadBytes)
	written, err := c.storage.Save(claims.FilePath, body)
	if err != nil {
		c.logger.Error().Err(err).Str("filePath", claims.FilePath).Msg("Failed to store upload")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUploadFailed, "Failed to store upload")
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
		return
	}

	c.logger.Info().
		Str("filePath", claims.FilePath).
		Int64("bytes", written).
		Int64("userID", claims.UserID).
		Msg("Upload stored")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{
		"filePath": claims.FilePath,
		"size":     written,
	}))
}
