package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/app/services"
	"github.com/selimk/learnhub/internal/app/workflow"
	"github.com/selimk/learnhub/internal/middleware"
	"github.com/selimk/learnhub/internal/pkg/helpers"
)

// AdminController handles instructor application review and account management
type AdminController struct {
	applicationService services.ApplicationService
	userService        services.UserService
	logger             zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(applicationService services.ApplicationService, userService services.UserService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		applicationService: applicationService,
		userService:        userService,
		logger:             logger,
	}
}

// ListApplications lists instructor applications
// @Summary List instructor applications
// @Description Returns instructor applications, optionally filtered by status.
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {object} dto.APIResponse "Applications"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Security SessionCookie
// @Router /admin/instructor-applications [get]
func (c *AdminController) ListApplications(ctx *gin.Context) {
	var status *models.ApplicationStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.ApplicationStatus(raw)
		if !s.IsValid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter").WithField("status")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		status = &s
	}

	applications, err := c.applicationService.List(ctx, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(applications))
}

// ApproveApplication approves an instructor application
// @Summary Approve an instructor application
// @Description Approves the application and promotes the applicant to the instructor role. Repeating the same decision is a no-op.
// @Tags admin
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse "Application approved"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application already settled the other way"
// @Security SessionCookie
// @Router /admin/instructor-applications/{id}/approve [post]
func (c *AdminController) ApproveApplication(ctx *gin.Context) {
	c.decideApplication(ctx, workflow.ActionApprove)
}

// RejectApplication rejects an instructor application
// @Summary Reject an instructor application
// @Tags admin
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse "Application rejected"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application already settled the other way"
// @Security SessionCookie
// @Router /admin/instructor-applications/{id}/reject [post]
func (c *AdminController) RejectApplication(ctx *gin.Context) {
	c.decideApplication(ctx, workflow.ActionReject)
}

func (c *AdminController) decideApplication(ctx *gin.Context, action workflow.Action) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	application, err := c.applicationService.Decide(ctx, id, action, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(application))
}

// ListUsers lists all accounts
// @Summary List all users
// @Description Returns a page of accounts, optionally filtered by role.
// @Tags admin
// @Produce json
// @Param role query string false "Filter by role" Enums(user, instructor, admin)
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Users"
// @Security SessionCookie
// @Router /admin/allusers [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	var role *models.Role
	if raw := ctx.Query("role"); raw != "" {
		r := models.Role(raw)
		if !r.IsValid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid role filter").WithField("role")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		role = &r
	}

	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := c.userService.List(ctx, role, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PagedResponse{
		Items:      users,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}

// BlockInstructor disables an account
// @Summary Block an account
// @Description Disables the account and revokes its sessions. Blocked users fail session resolution on their next request.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "Account blocked"
// @Failure 403 {object} dto.ErrorResponse "Cannot block an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Security SessionCookie
// @Router /admin/instructors/{id}/block [post]
func (c *AdminController) BlockInstructor(ctx *gin.Context) {
	c.setActive(ctx, false, "Account blocked")
}

// UnblockInstructor re-enables an account
// @Summary Unblock an account
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "Account unblocked"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Security SessionCookie
// @Router /admin/instructors/{id}/unblock [post]
func (c *AdminController) UnblockInstructor(ctx *gin.Context) {
	c.setActive(ctx, true, "Account unblocked")
}

func (c *AdminController) setActive(ctx *gin.Context, active bool, message string) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.SetActive(ctx, id, active, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// DeleteUser removes an account
// @Summary Delete an account
// @Description Removes the account along with its sessions. Admin accounts cannot be deleted.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "Account deleted"
// @Failure 403 {object} dto.ErrorResponse "Cannot delete an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Security SessionCookie
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx, id, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Account deleted"))
}
