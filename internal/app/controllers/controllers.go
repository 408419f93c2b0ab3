package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/middleware"
)

// actorFromContext rebuilds the acting user from the resolved principal.
// Returns false and writes the error response when no principal is present,
// which only happens on routes mounted without the fine access check.
func actorFromContext(ctx *gin.Context) (*models.User, bool) {
	principal, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(errorDetail, middleware.LoginPath))
		return nil, false
	}
	return &models.User{
		ID:    principal.ID,
		Name:  principal.Name,
		Email: principal.Email,
		Role:  principal.Role,
	}, true
}

// parsePositiveInt parses a positive integer id value
func parsePositiveInt(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// idParam parses a numeric path parameter. Returns false and writes the
// error response when the value is not a positive integer.
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := parsePositiveInt(ctx.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid id parameter").WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
