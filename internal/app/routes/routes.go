// Package routes wires the HTTP surface to the controllers
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/selimk/learnhub/internal/app/controllers"
	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/middleware"
)

// SetupRouter configures all application routes.
//
// The /admin, /instructor and /user groups carry two access layers: a cheap
// credential-presence check that answers with the role-appropriate login
// redirect, and a per-request session resolution that enforces roles against
// the account's current state.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	adminController *controllers.AdminController,
	courseController *controllers.CourseController,
	enrollmentController *controllers.EnrollmentController,
	userController *controllers.UserController,
	uploadController *controllers.UploadController,
	gate *middleware.AccessGate,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/verify-otp", authController.VerifyOTP)
		auth.POST("/resend-otp", authController.ResendOTP)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/logout", authController.Logout)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/verify-forgot-password", authController.VerifyForgotPassword)
		auth.POST("/change-forgot-password", authController.ChangeForgotPassword)

		// Session-backed auth routes
		authSession := auth.Group("")
		authSession.Use(gate.RequireRoles(models.RoleUser, models.RoleInstructor, models.RoleAdmin))
		{
			authSession.GET("/status", authController.Status)
			authSession.POST("/change-password", authController.ChangePassword)
		}
	}

	// --- Signed upload target (authorized by the upload token, not a session) ---
	v1.PUT("/uploads", uploadController.Upload)

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(gate.RequireCredential(middleware.AdminLoginPath))
	admin.Use(gate.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/instructor-applications", adminController.ListApplications)
		admin.POST("/instructor-applications/:id/approve", adminController.ApproveApplication)
		admin.POST("/instructor-applications/:id/reject", adminController.RejectApplication)

		admin.GET("/users", adminController.ListUsers)
		admin.POST("/instructors/:id/block", adminController.BlockInstructor)
		admin.POST("/instructors/:id/unblock", adminController.UnblockInstructor)
		admin.DELETE("/users/:id", adminController.DeleteUser)
	}

	// --- Instructor routes ---
	instructor := v1.Group("/instructor")
	instructor.Use(gate.RequireCredential(middleware.LoginPath))
	instructor.Use(gate.RequireRoles(models.RoleInstructor, models.RoleAdmin))
	{
		courses := instructor.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.POST("", courseController.CreateCourse)
			courses.GET("/:id", courseController.GetCourse)
			courses.PUT("/:id", courseController.UpdateCourse)
			courses.DELETE("/:id", courseController.DeleteCourse)
			courses.POST("/:id/publish", courseController.PublishCourse)
			courses.POST("/:id/unpublish", courseController.UnpublishCourse)
			courses.GET("/:id/lessons", courseController.ListLessons)
			courses.POST("/:id/lessons", courseController.CreateLesson)
		}

		enrollments := instructor.Group("/enrollments")
		{
			enrollments.GET("", enrollmentController.ListEnrollments)
			enrollments.POST("/accept-all", enrollmentController.AcceptAll)
			enrollments.POST("/reject-all", enrollmentController.RejectAll)
			// Both decision spellings are accepted; clients use them interchangeably
			enrollments.POST("/:id/accept", enrollmentController.ApproveEnrollment)
			enrollments.POST("/:id/approve", enrollmentController.ApproveEnrollment)
			enrollments.POST("/:id/reject", enrollmentController.RejectEnrollment)
			enrollments.POST("/:id/revoke", enrollmentController.RevokeEnrollment)
		}

		instructor.DELETE("/lessons/:id", courseController.DeleteLesson)
		instructor.POST("/lessons/update-url", courseController.UpdateLessonURL)
		instructor.POST("/uploads/sign", courseController.SignUpload)
	}

	// --- Learner routes (any authenticated role) ---
	user := v1.Group("/user")
	user.Use(gate.RequireCredential(middleware.LoginPath))
	user.Use(gate.RequireRoles(models.RoleUser, models.RoleInstructor, models.RoleAdmin))
	{
		user.GET("/courses", userController.ListCourses)
		user.POST("/courses/:id/enroll", userController.Enroll)
		user.GET("/courses/:id/lessons", userController.ListLessons)
		user.GET("/enrollments", userController.ListEnrollments)
		user.GET("/enrollments/approved", userController.ListApprovedEnrollments)
		user.POST("/apply-instructor", userController.ApplyInstructor)
		user.GET("/me", userController.Me)
	}
}
