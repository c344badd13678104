package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/internal/service"
)

// UserHandler mantiene dependencias para endpoints de la cuenta autenticada.
type UserHandler struct {
	responder
	users  *service.UserService
	auth   *service.AuthService
	cookie RefreshCookie
}

func NewUserHandler(
	logger *zap.Logger,
	users *service.UserService,
	auth *service.AuthService,
	cookie RefreshCookie,
	exposeDetails bool,
) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger, exposeDetails: exposeDetails},
		users:     users,
		auth:      auth,
		cookie:    cookie.withDefaults(),
	}
}

// UpdateMe maneja PATCH /users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authentication required")
		return
	}

	var req struct {
		FullName string `json:"fullName" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalidRequest(c, "update profile", err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), claims.UserID(), req.FullName)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user.Public()})
}

// DeleteMe maneja DELETE /users/me y cierra la sesion en curso.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authentication required")
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), claims.UserID()); err != nil {
		h.fail(c, "delete account", err)
		return
	}
	if h.auth != nil {
		h.auth.Logout(c.Request.Context(), "", bearerToken(c))
	}
	h.cookie.clear(c)
	respondSuccess(c, http.StatusOK, gin.H{"message": "account deleted"})
}
