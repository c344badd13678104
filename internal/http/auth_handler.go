package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/internal/domain"
	"coursehub/internal/service"
)

// AuthHandler expone el flujo de signup, verificacion y sesion.
type AuthHandler struct {
	responder
	auth   *service.AuthService
	users  *service.UserService
	cookie RefreshCookie
}

func NewAuthHandler(
	logger *zap.Logger,
	auth *service.AuthService,
	users *service.UserService,
	cookie RefreshCookie,
	exposeDetails bool,
) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger, exposeDetails: exposeDetails},
		auth:      auth,
		users:     users,
		cookie:    cookie.withDefaults(),
	}
}

func sessionBody(user domain.User, tokens service.TokenPair) gin.H {
	return gin.H{
		"user":            user.Public(),
		"accessToken":     tokens.AccessToken,
		"accessExpiresAt": tokens.AccessExpiresAt,
	}
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "signup", err)
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.fail(c, "signup", err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"message":              "account created, check your email for the verification code",
		"email":                user.Email,
		"requiresVerification": true,
	})
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "verify otp", err)
		return
	}

	res, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.fail(c, "verify otp", err)
		return
	}

	h.cookie.set(c, res.Tokens.RefreshToken)
	respondSuccess(c, http.StatusOK, sessionBody(res.User, res.Tokens))
}

// ResendOTP maneja POST /auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "resend otp", err)
		return
	}

	if err := h.auth.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "resend otp", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": service.MsgResendAccepted})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "login", err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrVerificationRequired) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":               "error",
			"code":                 CodeEmailNotVerified,
			"message":              service.MsgVerificationRequired,
			"requiresVerification": true,
			"email":                res.User.Email,
		})
		return
	}
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	h.cookie.set(c, res.Tokens.RefreshToken)
	respondSuccess(c, http.StatusOK, sessionBody(res.User, res.Tokens))
}

// Refresh maneja POST /auth/refresh. El refresh token solo se lee de la cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.cookie.read(c)
	if token == "" {
		respondError(c, http.StatusUnauthorized, CodeRefreshInvalid, service.ErrRefreshInvalid.Error())
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) || errors.Is(err, service.ErrSessionRevoked) {
			h.cookie.clear(c)
		}
		h.fail(c, "refresh", err)
		return
	}

	h.cookie.set(c, res.Tokens.RefreshToken)
	respondSuccess(c, http.StatusOK, gin.H{
		"accessToken":     res.Tokens.AccessToken,
		"accessExpiresAt": res.Tokens.AccessExpiresAt,
	})
}

// Logout maneja POST /auth/logout; responde 200 siempre.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), h.cookie.read(c), bearerToken(c))
	h.cookie.clear(c)
	respondSuccess(c, http.StatusOK, gin.H{"message": "logged out"})
}

// ForgotPassword maneja POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "forgot password", err)
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "forgot password", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": service.MsgResetAccepted})
}

// ResetPassword maneja POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "reset password", err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.fail(c, "reset password", err)
		return
	}
	h.cookie.clear(c)
	respondSuccess(c, http.StatusOK, gin.H{"message": "password updated, please log in again"})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authentication required")
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), claims.UserID())
	if err != nil {
		h.fail(c, "me", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user.Public()})
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
