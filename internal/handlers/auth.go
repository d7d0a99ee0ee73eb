package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/middleware"
	"github.com/yukikurage/taskhub-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	cookies     cookieJar
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg config.AuthConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookieJar{cfg: cfg},
		logger:      logger,
	}
}

// Register creates a user and logs them in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email     string `json:"email" binding:"required,email,max=254"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name" binding:"max=150"`
		LastName  string `json:"last_name" binding:"max=150"`
	}

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusCreated, result)
}

// Login authenticates a user by email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, result)
}

// Logout revokes whatever tokens the request carries and clears the
// cookies. It always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	type LogoutRequest struct {
		Refresh string `json:"refresh"`
	}

	var req LogoutRequest
	// A missing or malformed body is not an error here.
	_ = c.ShouldBindJSON(&req)

	refresh := req.Refresh
	if refresh == "" {
		refresh = h.cookies.refreshFromCookie(c)
	}

	principal, _ := middleware.GetPrincipal(c)
	h.authService.Logout(c.Request.Context(), services.LogoutInput{
		RefreshToken: refresh,
		Principal:    principal,
	})

	h.cookies.clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// RefreshToken exchanges a refresh token from the body or cookie for a new
// access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		Refresh string `json:"refresh"`
	}

	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)

	raw := req.Refresh
	if raw == "" {
		raw = h.cookies.refreshFromCookie(c)
	}

	result, err := h.authService.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.cookies.setAccess(c, result.Access)
	if result.Refresh != "" {
		h.cookies.setRefresh(c, result.Refresh)
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Access:  result.Access,
		Refresh: result.Refresh,
	})
}

// ChangePassword replaces the current user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), services.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile applies a partial update to the authenticated user.
// Identity fields (id, username, date_joined, last_login) are read-only.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	type UpdateProfileRequest struct {
		Email     *string              `json:"email" binding:"omitempty,email,max=254"`
		FirstName *string              `json:"first_name" binding:"omitempty,max=150"`
		LastName  *string              `json:"last_name" binding:"omitempty,max=150"`
		Avatar    dto.Optional[string] `json:"avatar"`
		Phone     dto.Optional[string] `json:"phone"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar.Value,
		AvatarSet: req.Avatar.Set,
		Phone:     req.Phone.Value,
		PhoneSet:  req.Phone.Set,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, result *services.AuthResult) {
	h.cookies.setAccess(c, result.Tokens.Access)
	h.cookies.setRefresh(c, result.Tokens.Refresh)

	c.JSON(status, dto.AuthResponse{
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
		User:    dto.ToUserDTO(*result.User),
	})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrInvalidRefreshToken):
		h.logger.Info("Token refresh rejected", slog.Any("error", err))
		apierrors.Unauthorized(c, "Token is invalid or expired")
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, apierrors.FieldErrors(verr.Fields))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.ValidationFailed(c, apierrors.FieldErrors{
			apierrors.NonFieldErrorsKey: {"Unable to log in with provided credentials."},
		})
	case errors.Is(err, services.ErrAccountDisabled):
		apierrors.ValidationFailed(c, apierrors.FieldErrors{
			apierrors.NonFieldErrorsKey: {"User account is disabled."},
		})
	case errors.Is(err, services.ErrUsernameUnavailable):
		apierrors.Conflict(c, "Could not allocate a unique username, please try again")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		h.logger.Error("Auth request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		apierrors.InternalError(c, "")
	}
}
