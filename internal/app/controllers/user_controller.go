package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/app/services"
	"github.com/selimk/learnhub/internal/middleware"
)

// UserController handles the learner-facing course catalog and enrollments
type UserController struct {
	courseService      services.CourseService
	enrollmentService  services.EnrollmentService
	lessonService      services.LessonService
	applicationService services.ApplicationService
	userService        services.UserService
	logger             zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(
	courseService services.CourseService,
	enrollmentService services.EnrollmentService,
	lessonService services.LessonService,
	applicationService services.ApplicationService,
	userService services.UserService,
	logger zerolog.Logger,
) *UserController {
	return &UserController{
		courseService:      courseService,
		enrollmentService:  enrollmentService,
		lessonService:      lessonService,
		applicationService: applicationService,
		userService:        userService,
		logger:             logger,
	}
}

// ListCourses lists the published course catalog
// @Summary Browse the course catalog
// @Description Returns all published courses. Draft courses are never listed here.
// @Tags user
// @Produce json
// @Success 200 {object} dto.APIResponse "Published courses"
// @Security SessionCookie
// @Router /user/courses [get]
func (c *UserController) ListCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListPublished(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// Enroll requests enrollment in a published course
// @Summary Request enrollment
// @Description Files a pending enrollment request. An open or approved request for the same course is rejected as a duplicate.
// @Tags user
// @Produce json
// @Param id path int true "Course ID"
// @Success 201 {object} dto.APIResponse "Enrollment requested"
// @Failure 404 {object} dto.ErrorResponse "Course not found or not published"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled or requested"
// @Security SessionCookie
// @Router /user/courses/{id}/enroll [post]
func (c *UserController) Enroll(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx, actor.ID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(enrollment))
}

// ListEnrollments lists the caller's own enrollments
// @Summary List own enrollments
// @Description Returns the caller's enrollment requests and their statuses, optionally filtered by status.
// @Tags user
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, rejected, revoked)
// @Success 200 {object} dto.APIResponse "Enrollments"
// @Security SessionCookie
// @Router /user/enrollments [get]
func (c *UserController) ListEnrollments(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	status, ok := enrollmentStatusQuery(ctx)
	if !ok {
		return
	}

	enrollments, err := c.enrollmentService.ListForUser(ctx, actor.ID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollments))
}

// ListApprovedEnrollments lists the caller's approved enrollments
// @Summary List approved enrollments
// @Description Returns only the enrollments that currently grant course access.
// @Tags user
// @Produce json
// @Success 200 {object} dto.APIResponse "Approved enrollments"
// @Security SessionCookie
// @Router /user/enrollments/approved [get]
func (c *UserController) ListApprovedEnrollments(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	approved := models.EnrollmentApproved
	enrollments, err := c.enrollmentService.ListForUser(ctx, actor.ID, &approved)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollments))
}

// ListLessons lists the lessons of a course the caller can access
// @Summary View course lessons
// @Description Returns the lessons in order. Requires an approved enrollment unless the caller owns the course.
// @Tags user
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Lessons in order"
// @Failure 403 {object} dto.ErrorResponse "No approved enrollment"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /user/courses/{id}/lessons [get]
func (c *UserController) ListLessons(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	lessons, err := c.lessonService.List(ctx, id, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(lessons))
}

// ApplyInstructor submits an instructor application
// @Summary Apply to become an instructor
// @Description Files an application for admin review. Only one open application is allowed at a time.
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.ApplyInstructorRequest true "Application details"
// @Success 201 {object} dto.APIResponse "Application filed"
// @Failure 409 {object} dto.ErrorResponse "Open application exists or already an instructor"
// @Security SessionCookie
// @Router /user/apply-instructor [post]
func (c *UserController) ApplyInstructor(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req dto.ApplyInstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	application, err := c.applicationService.Apply(ctx, actor.ID, req.Bio, req.Expertise)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(application))
}

// Me returns the caller's account
// @Summary Get own account
// @Tags user
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UserData} "Account"
// @Security SessionCookie
// @Router /user/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	user, err := c.userService.Get(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.UserData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}))
}
