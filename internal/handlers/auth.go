package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hirelane/api/internal/google"
	"hirelane/api/internal/models"
	"hirelane/api/internal/service"
)

type userResponse struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	EmailVerified bool     `json:"emailVerified"`
	Roles         []string `json:"roles"`
	HasPassword   bool     `json:"hasPassword"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		EmailVerified: user.EmailVerified,
		Roles:         user.RoleNames(),
		HasPassword:   user.PasswordHash != nil,
	}
}

// respondError maps service sentinels onto HTTP statuses. Messages stay
// generic where the distinction would reveal account existence.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	if cooldown, ok := service.AsCooldown(err); ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "cooldown",
			"retryAfterSeconds": int(cooldown.Remaining.Seconds()),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrInvalidCurrentPassword),
		errors.Is(err, google.ErrInvalidAccessToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAccountDeactivated),
		errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoAccountFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailAlreadyRegistered),
		errors.Is(err, service.ErrAlreadyLinked),
		errors.Is(err, service.ErrProviderIdentityTaken),
		errors.Is(err, service.ErrAlreadyHasCredentials):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoLocalCredentials),
		errors.Is(err, service.ErrSameAsCurrentPassword),
		errors.Is(err, service.ErrRequiresInvitationAcceptance),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrJobClosed),
		errors.Is(err, service.ErrUnsupportedResume):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h HandlerSet) sendAuthResponse(c *gin.Context, user models.User, session service.Session) {
	http.SetCookie(c.Writer, session.Cookie)
	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  toUserResponse(user),
	})
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    toUserResponse(user),
		"message": "check your email to verify your account",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result.User, result.Session)
}

func (h HandlerSet) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessions.ClearCookie())
	c.Status(http.StatusNoContent)
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result.User, result.Session)
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, an email has been sent"})
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, an email has been sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h HandlerSet) MagicLinkRequest(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.MagicLinkRequest(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sign-in link sent"})
}

func (h HandlerSet) MagicLinkVerify(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.MagicLinkVerify(c.Request.Context(), req.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result.User, result.Session)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type googleSignInRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

func (h HandlerSet) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.FetchProfile(c.Request.Context(), req.AccessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.linkService.SignIn(c.Request.Context(), profile)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.LinkRequired != nil {
		c.JSON(http.StatusConflict, gin.H{
			"linkRequired": gin.H{
				"token":             result.LinkRequired.Token,
				"email":             result.LinkRequired.Email,
				"displayName":       result.LinkRequired.DisplayName,
				"providerAccountId": result.LinkRequired.ProviderAccountID,
			},
		})
		return
	}

	http.SetCookie(c.Writer, result.Session.Cookie)
	c.JSON(http.StatusOK, gin.H{
		"token":     result.Session.Token,
		"user":      toUserResponse(result.User),
		"isNewUser": result.IsNewUser,
	})
}

type confirmLinkRequest struct {
	Token       string `json:"token" binding:"required"`
	Password    string `json:"password" binding:"required"`
	AccessToken string `json:"accessToken" binding:"required"`
}

// GoogleConfirmLink closes the collision loop: the link token proves the
// email flow, the password proves account ownership, and a fresh profile
// fetch proves the provider identity being attached.
func (h HandlerSet) GoogleConfirmLink(c *gin.Context) {
	var req confirmLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := h.linkService.ConfirmLink(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	profile, err := h.profiles.FetchProfile(c.Request.Context(), req.AccessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.linkService.CompleteLink(c.Request.Context(), email, profile.SubjectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result.User, result.Session)
}

func (h HandlerSet) VerifyInvitation(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	info, err := h.authService.VerifyInvitation(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":           info.Email,
		"role":            info.Role,
		"permissionLevel": info.PermissionLevel,
	})
}

type acceptInvitationRequest struct {
	Token     string `json:"token" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.AcceptInvitation(c.Request.Context(), req.Token, req.FirstName, req.LastName, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result.User, result.Session)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
		return models.User{}, false
	}
	return user, true
}
