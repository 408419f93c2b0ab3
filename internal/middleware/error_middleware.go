package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	pkgauth "github.com/selimk/learnhub/internal/pkg/auth"
)

// HandleAPIError converts service errors into the standard error envelope.
// Every error a handler surfaces goes through here, so no mutation ever
// reports partial success and no failure leaks as an unhandled 500 with a
// raw message.
func HandleAPIError(c *gin.Context, err error) {
	// Surface the service-provided message verbatim when present
	message := err.Error()

	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrCourseNotFound,
		apperrors.ErrLessonNotFound,
		apperrors.ErrEnrollmentNotFound,
		apperrors.ErrApplicationNotFound,
		apperrors.ErrCourseNotPublished):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)))

	case apperrors.Is(err, apperrors.ErrPermissionDenied,
		apperrors.ErrNotOwner,
		apperrors.ErrEnrollmentRequired):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, message)))

	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, message)))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")))

	case errors.Is(err, apperrors.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, message)))

	case errors.Is(err, apperrors.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, message)))

	case errors.Is(err, apperrors.ErrTerminalStatus):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeTerminalStatus, message)))

	case errors.Is(err, apperrors.ErrIllegalTransition):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeIllegalTransition, message)))

	case apperrors.Is(err, apperrors.ErrConflict,
		apperrors.ErrDuplicateEnrollment,
		apperrors.ErrApplicationPending,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message)))

	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest,
		apperrors.ErrInvalidEmail,
		apperrors.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)))

	case apperrors.Is(err, apperrors.ErrInvalidOTP, apperrors.ErrOTPAlreadyUsed):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidOTP, message)))

	case apperrors.Is(err, apperrors.ErrInvalidUploadToken,
		pkgauth.ErrUploadTokenInvalid,
		pkgauth.ErrUploadTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUploadFailed, message)))

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
