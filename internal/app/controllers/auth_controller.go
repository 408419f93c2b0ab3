// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/app/services"
	"github.com/selimk/learnhub/internal/middleware"
)

// CookieConfig defines how the session cookie is written
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a new learner account. A verification code is emailed; the account cannot log in until it is verified.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.UserData} "Registration initiated. Check email for the verification code."
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	user, err := c.authService.Register(ctx, req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.UserData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}))
}

// VerifyOTP handles email verification
// @Summary Verify a registration code
// @Description Consumes the emailed verification code and activates the account for login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and verification code"
// @Success 200 {object} dto.APIResponse "Email verified"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired code"
// @Router /auth/verify-otp [post]
func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Email verified"))
}

// ResendOTP handles verification code resends
// @Summary Resend the registration code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendOTPRequest true "Email address"
// @Success 200 {object} dto.APIResponse "Code sent if the address exists"
// @Router /auth/resend-otp [post]
func (c *AuthController) ResendOTP(ctx *gin.Context) {
	var req dto.ResendOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ResendOTP(ctx, req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Verification code sent"))
}

// Login handles user login
// @Summary Log in
// @Description Verifies credentials and opens a session. The session id is set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.UserData} "Logged in"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or unverified email"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	user, session, err := c.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.SetCookie(c.cookie.Name, session.ID, c.cookie.MaxAge, "/", "", c.cookie.Secure, true)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.UserData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}))
}

// Logout handles user logout
// @Summary Log out
// @Description Destroys the current session and clears the session cookie. Succeeds even without a valid session.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	sessionID, _ := ctx.Cookie(c.cookie.Name)
	if err := c.authService.Logout(ctx, sessionID); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to destroy session on logout")
	}

	ctx.SetCookie(c.cookie.Name, "", -1, "/", "", c.cookie.Secure, true)
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Logged out"))
}

// Status reports the authenticated user
// @Summary Authentication status
// @Description Returns the current user when the session is valid. The role reflects the account's current state, not the state at login.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse "Authenticated"
// @Failure 401 {object} dto.ErrorResponse "No valid session"
// @Router /auth/status [get]
func (c *AuthController) Status(ctx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(errorDetail, middleware.LoginPath))
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthStatusResponse{
		Success: true,
		User: &dto.UserData{
			ID:    principal.ID,
			Name:  principal.Name,
			Email: principal.Email,
			Role:  string(principal.Role),
		},
	})
}

// ForgotPassword starts the password reset flow
// @Summary Request a password reset code
// @Description Emails a reset code. The response is the same whether or not the address exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.APIResponse "Code sent if the address exists"
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ForgotPassword(ctx, req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Password reset code sent"))
}

// VerifyForgotPassword checks a password reset code
// @Summary Verify a password reset code
// @Description Checks the code without consuming it so the client can show the new-password form.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyForgotPasswordRequest true "Email and reset code"
// @Success 200 {object} dto.APIResponse "Code is valid"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired code"
// @Router /auth/verify-forgot-password [post]
func (c *AuthController) VerifyForgotPassword(ctx *gin.Context) {
	var req dto.VerifyForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.VerifyForgotPassword(ctx, req.Email, req.OTP); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Code is valid"))
}

// ChangeForgotPassword completes the password reset flow
// @Summary Reset the password with a code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ChangeForgotPasswordRequest true "Email, reset code and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid code or password"
// @Router /auth/change-forgot-password [post]
func (c *AuthController) ChangeForgotPassword(ctx *gin.Context) {
	var req dto.ChangeForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ChangeForgotPassword(ctx, req.Email, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Password changed"))
}

// ChangePassword changes the password of the logged-in user
// @Summary Change the current password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 401 {object} dto.ErrorResponse "Wrong current password"
// @Security SessionCookie
// @Router /auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(errorDetail, middleware.LoginPath))
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ChangePassword(ctx, principal.ID, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Password changed"))
}
