package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"coursehub/internal/service"
)

// HealthChecker lo cumple *pgxpool.Pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps agrupa lo que necesita el router.
type RouterDeps struct {
	Logger          *zap.Logger
	Auth            *AuthHandler
	Users           *UserHandler
	Tokens          AccessTokenVerifier
	RateLimiter     service.RateLimiter
	RateLimitWindow time.Duration
	Health          HealthChecker
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Middlewares basicos: request id, logging, recovery y JSON content-type.
	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		recoveryMiddleware(logger),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", healthHandler(deps.Health))

	requireAuth := JWTAuthMiddleware(deps.Tokens)

	auth := r.Group("/auth", rateLimitMiddleware(deps.RateLimiter, deps.RateLimitWindow))
	auth.POST("/signup", deps.Auth.Signup)
	auth.POST("/verify-otp", deps.Auth.VerifyOTP)
	auth.POST("/resend-otp", deps.Auth.ResendOTP)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/refresh", deps.Auth.Refresh)
	auth.POST("/logout", deps.Auth.Logout)
	auth.POST("/forgot-password", deps.Auth.ForgotPassword)
	auth.POST("/reset-password", deps.Auth.ResetPassword)
	auth.GET("/me", requireAuth, deps.Auth.Me)

	users := r.Group("/users", requireAuth)
	users.PATCH("/me", deps.Users.UpdateMe)
	users.DELETE("/me", deps.Users.DeleteMe)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}

// NewHandler envuelve el router con CORS; el frontend envia la cookie de
// refresh, por eso se permiten credenciales.
func NewHandler(router http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				respondError(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unavailable")
				return
			}
		}
		respondSuccess(c, http.StatusOK, gin.H{"message": "ok"})
	}
}
