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
)

// EnrollmentController handles enrollment review on the instructor side
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService, logger zerolog.Logger) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// ListEnrollments lists enrollments across the instructor's courses
// @Summary List enrollments to review
// @Description Returns enrollments across all of the caller's courses, optionally narrowed to one course.
// @Tags instructor
// @Produce json
// @Param courseId query int false "Narrow to one course"
// @Success 200 {object} dto.APIResponse "Enrollments"
// @Security SessionCookie
// @Router /instructor/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var courseID *int64
	if raw := ctx.Query("courseId"); raw != "" {
		id, ok := queryID(ctx, "courseId", raw)
		if !ok {
			return
		}
		courseID = &id
	}

	enrollments, err := c.enrollmentService.ListForInstructor(ctx, actor.ID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollments))
}

// ApproveEnrollment approves a pending enrollment
// @Summary Approve an enrollment
// @Description Approves the request, granting the learner access to the course's lessons. Repeating the same decision is a no-op.
// @Tags instructor
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse "Enrollment approved"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment already settled the other way"
// @Security SessionCookie
// @Router /instructor/enrollments/{id}/approve [post]
func (c *EnrollmentController) ApproveEnrollment(ctx *gin.Context) {
	c.decide(ctx, workflow.ActionApprove)
}

// RejectEnrollment rejects a pending enrollment
// @Summary Reject an enrollment
// @Tags instructor
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse "Enrollment rejected"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment already settled the other way"
// @Security SessionCookie
// @Router /instructor/enrollments/{id}/reject [post]
func (c *EnrollmentController) RejectEnrollment(ctx *gin.Context) {
	c.decide(ctx, workflow.ActionReject)
}

// RevokeEnrollment revokes an approved enrollment
// @Summary Revoke an approved enrollment
// @Description Withdraws a previously granted access. Only approved enrollments can be revoked.
// @Tags instructor
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse "Enrollment revoked"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment is not approved"
// @Security SessionCookie
// @Router /instructor/enrollments/{id}/revoke [post]
func (c *EnrollmentController) RevokeEnrollment(ctx *gin.Context) {
	c.decide(ctx, workflow.ActionRevoke)
}

func (c *EnrollmentController) decide(ctx *gin.Context, action workflow.Action) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Decide(ctx, id, action, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment))
}

// AcceptAll approves every pending enrollment
// @Summary Approve all pending enrollments
// @Description Approves every pending enrollment across the caller's courses. Best effort per record; failures are reported, not rolled back.
// @Tags instructor
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.BulkTransitionResponse} "Bulk outcome"
// @Security SessionCookie
// @Router /instructor/enrollments/accept-all [post]
func (c *EnrollmentController) AcceptAll(ctx *gin.Context) {
	c.decideAll(ctx, workflow.ActionApprove)
}

// RejectAll rejects every pending enrollment
// @Summary Reject all pending enrollments
// @Tags instructor
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.BulkTransitionResponse} "Bulk outcome"
// @Security SessionCookie
// @Router /instructor/enrollments/reject-all [post]
func (c *EnrollmentController) RejectAll(ctx *gin.Context) {
	c.decideAll(ctx, workflow.ActionReject)
}

func (c *EnrollmentController) decideAll(ctx *gin.Context, action workflow.Action) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	result, err := c.enrollmentService.DecideAll(ctx, action, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if result.Failed > 0 {
		c.logger.Warn().
			Int("failed", result.Failed).
			Int64("actorID", actor.ID).
			Str("action", string(action)).
			Msg("Bulk enrollment decision completed with failures")
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// queryID parses a numeric query parameter. Returns false and writes the
// error response when the value is not a positive integer.
func queryID(ctx *gin.Context, name, raw string) (int64, bool) {
	var id int64
	var err error
	if id, err = parsePositiveInt(raw); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter").WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// enrollmentStatusQuery parses an optional status filter
func enrollmentStatusQuery(ctx *gin.Context) (*models.EnrollmentStatus, bool) {
	raw := ctx.Query("status")
	if raw == "" {
		return nil, true
	}
	s := models.EnrollmentStatus(raw)
	if !s.IsValid() {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter").WithField("status")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &s, true
}
