package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/config"
	"coursehub/internal/db"
	"coursehub/internal/email"
	apihttp "coursehub/internal/http"
	"coursehub/internal/repository"
	"coursehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	} else {
		logger.Warn("smtp not configured, verification emails will fail")
	}

	keyNormalizer := service.IPKeyNormalizer(cfg.RateLimitIPv6PrefixBits)
	rateLimiter := service.NewMemoryRateLimiter(cfg.RateLimitWindow(), cfg.RateLimitMax, keyNormalizer)
	denylist := service.NewMemoryTokenDenylist()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory limiter and denylist", zap.Error(err))
		} else {
			rateLimiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimitWindow(), cfg.RateLimitMax, service.RedisRateLimiterOptions{
				Prefix:    cfg.RateLimitKeyPrefix,
				Timeout:   cfg.RateLimitRedisTimeout(),
				Normalize: keyNormalizer,
				Logger:    logger,
			})
			denylist = service.NewRedisTokenDenylist(redisClient)
		}
		cancel()
	}

	tokenSvc := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
	authSvc := service.NewAuthService(logger, userRepo, emailSender, tokenSvc, denylist, service.AuthPolicy{
		OTPTTL:         cfg.OTPTTL(),
		MaxOTPAttempts: cfg.OTPMaxAttempts,
		ResendCooldown: cfg.ResendCooldown(),
	})
	userSvc := service.NewUserService(logger, userRepo)

	cookie := apihttp.RefreshCookie{
		Name:   cfg.RefreshCookieName,
		Path:   cfg.RefreshCookiePath,
		Domain: cfg.RefreshCookieDomain,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.RefreshTTL(),
	}
	exposeDetails := !cfg.IsProduction()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:          logger,
		Auth:            apihttp.NewAuthHandler(logger, authSvc, userSvc, cookie, exposeDetails),
		Users:           apihttp.NewUserHandler(logger, userSvc, authSvc, cookie, exposeDetails),
		Tokens:          authSvc,
		RateLimiter:     rateLimiter,
		RateLimitWindow: cfg.RateLimitWindow(),
		Health:          pool,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           apihttp.NewHandler(router, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
