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

// CourseController handles instructor course and lesson management
type CourseController struct {
	courseService services.CourseService
	lessonService services.LessonService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService, lessonService services.LessonService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		lessonService: lessonService,
		logger:        logger,
	}
}

// ListCourses lists the instructor's own courses
// @Summary List own courses
// @Tags instructor
// @Produce json
// @Success 200 {object} dto.APIResponse "Courses"
// @Security SessionCookie
// @Router /instructor/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.ListOwned(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// CreateCourse creates a new draft course
// @Summary Create a course
// @Description Creates a new course in draft status, owned by the caller.
// @Tags instructor
// @Accept json
// @Produce json
// @Param request body dto.CreateCourseRequest true "Course details"
// @Success 201 {object} dto.APIResponse "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Security SessionCookie
// @Router /instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	course, err := c.courseService.Create(ctx, actor.ID, req.Title, req.Description)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course))
}

// GetCourse returns one of the instructor's courses
// @Summary Get an own course
// @Tags instructor
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Course"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.GetOwned(ctx, id, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// UpdateCourse edits a course's title and description
// @Summary Update a course
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "New course details"
// @Success 200 {object} dto.APIResponse "Course updated"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	course, err := c.courseService.Update(ctx, id, actor, req.Title, req.Description)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// DeleteCourse removes a course
// @Summary Delete a course
// @Description Removes the course together with its lessons and enrollments.
// @Tags instructor
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Course deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx, id, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Course deleted"))
}

// PublishCourse makes a course visible in the catalog
// @Summary Publish a course
// @Description Moves the course to published. Publishing an already published course is a no-op.
// @Tags instructor
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Course published"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id}/publish [post]
func (c *CourseController) PublishCourse(ctx *gin.Context) {
	c.setPublication(ctx, workflow.ActionPublish)
}

// UnpublishCourse withdraws a course from the catalog
// @Summary Unpublish a course
// @Description Moves the course back to draft. Existing enrollments keep their status.
// @Tags instructor
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Course unpublished"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id}/unpublish [post]
func (c *CourseController) UnpublishCourse(ctx *gin.Context) {
	c.setPublication(ctx, workflow.ActionUnpublish)
}

func (c *CourseController) setPublication(ctx *gin.Context, action workflow.Action) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.SetPublication(ctx, id, action, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// ListLessons lists the lessons of an own course in order
// @Summary List lessons of an own course
// @Tags instructor
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Lessons in order"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security SessionCookie
// @Router /instructor/courses/{id}/lessons [get]
func (c *CourseController) ListLessons(ctx *gin.Context) {
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

// CreateLesson appends a lesson to a course
// @Summary Create a lesson
// @Description Appends a lesson at the end of the course's ordering.
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.CreateLessonRequest true "Lesson details"
// @Success 201 {object} dto.APIResponse "Lesson created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Security SessionCookie
// @Router /instructor/courses/{id}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	lesson, err := c.lessonService.Create(ctx, id, actor, req.Title, models.LessonType(req.Type), req.ContentURL)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(lesson))
}

// DeleteLesson removes a lesson
// @Summary Delete a lesson
// @Description Removes the lesson and shifts the following lessons up so the ordering stays gapless.
// @Tags instructor
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} dto.APIResponse "Lesson deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Lesson not found"
// @Security SessionCookie
// @Router /instructor/lessons/{id} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.lessonService.Delete(ctx, id, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Lesson deleted"))
}

// SignUpload issues a signed upload URL for lesson content
// @Summary Request a signed upload URL
// @Description Returns a short-lived URL for a direct PUT of the file bytes, plus the file path to bind to a lesson afterwards.
// @Tags instructor
// @Accept json
// @Produce json
// @Param request body dto.SignUploadRequest true "File name and content type"
// @Success 200 {object} dto.APIResponse{data=dto.SignUploadResponse} "Signed URL"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Security SessionCookie
// @Router /instructor/uploads/sign [post]
func (c *CourseController) SignUpload(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req dto.SignUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.lessonService.SignUpload(ctx, actor, req.FileName, req.ContentType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// UpdateLessonURL binds an uploaded file to a lesson
// @Summary Set a lesson's content URL
// @Description Persists the file path returned by the sign step as the lesson's content URL.
// @Tags instructor
// @Accept json
// @Produce json
// @Param request body dto.UpdateLessonURLRequest true "Lesson id and file path"
// @Success 200 {object} dto.APIResponse "Lesson updated"
// @Failure 403 {object} dto.ErrorResponse "Not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Lesson not found"
// @Security SessionCookie
// @Router /instructor/lessons/update-url [post]
func (c *CourseController) UpdateLessonURL(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req dto.UpdateLessonURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	lesson, err := c.lessonService.UpdateContentURL(ctx, req.LessonID, actor, req.FilePath)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(lesson))
}
