package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/internal/service"
)

// Codigos legibles por maquina incluidos en las respuestas de error.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeOTPInvalid         = "OTP_INVALID"
	CodeOTPExpired         = "OTP_EXPIRED"
	CodeOTPNotRequested    = "OTP_NOT_REQUESTED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeResendCooldown     = "RESEND_COOLDOWN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeResetCodeInvalid   = "RESET_CODE_INVALID"
	CodeRefreshInvalid     = "REFRESH_INVALID"
	CodeSessionRevoked     = "SESSION_REVOKED"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeEmailUnavailable   = "EMAIL_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

type apiError struct {
	status     int
	message    string
	code       string
	retryAfter int
	remaining  *int
}

func writeError(c *gin.Context, e apiError, details string) {
	body := gin.H{
		"status":  "error",
		"message": e.message,
	}
	if e.code != "" {
		body["code"] = e.code
	}
	if e.retryAfter > 0 {
		body["retryAfter"] = e.retryAfter
		c.Header("Retry-After", strconv.Itoa(e.retryAfter))
	}
	if e.remaining != nil {
		body["remainingAttempts"] = *e.remaining
	}
	if details != "" {
		body["details"] = details
	}
	c.AbortWithStatusJSON(e.status, body)
}

func respondError(c *gin.Context, status int, code, message string) {
	writeError(c, apiError{status: status, code: code, message: message}, "")
}

func respondSuccess(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["status"] = "success"
	c.JSON(status, body)
}

// responder traduce errores de servicio al sobre comun. Solo fuera de
// produccion agrega el detalle interno.
type responder struct {
	logger        *zap.Logger
	exposeDetails bool
}

func (r responder) fail(c *gin.Context, op string, err error) {
	mapped, known := mapServiceError(err)
	if !known {
		r.logger.Error(op+" failed",
			zap.Error(err),
			zap.String("request_id", requestIDFrom(c)),
		)
	}
	details := ""
	if r.exposeDetails {
		details = err.Error()
	}
	writeError(c, mapped, details)
}

func (r responder) invalidRequest(c *gin.Context, op string, err error) {
	r.logger.Warn("invalid "+op+" request", zap.Error(err))
	details := ""
	if r.exposeDetails {
		details = err.Error()
	}
	writeError(c, apiError{status: http.StatusBadRequest, code: CodeValidation, message: "invalid request"}, details)
}

func mapServiceError(err error) (apiError, bool) {
	var attemptsErr *service.AttemptsError
	if errors.As(err, &attemptsErr) {
		remaining := attemptsErr.Remaining
		return apiError{status: http.StatusBadRequest, code: CodeOTPInvalid, message: attemptsErr.Error(), remaining: &remaining}, true
	}
	var cooldownErr *service.CooldownError
	if errors.As(err, &cooldownErr) {
		return apiError{
			status:     http.StatusTooManyRequests,
			code:       CodeResendCooldown,
			message:    service.ErrResendCooldown.Error(),
			retryAfter: cooldownErr.RetryAfterSeconds(),
		}, true
	}

	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidFullName),
		errors.Is(err, service.ErrInvalidOTPFormat),
		errors.Is(err, service.ErrInvalidRole):
		return apiError{status: http.StatusBadRequest, code: CodeValidation, message: err.Error()}, true
	case errors.Is(err, service.ErrDuplicateAccount):
		return apiError{status: http.StatusConflict, code: CodeDuplicateAccount, message: err.Error()}, true
	case errors.Is(err, service.ErrAccountNotFound):
		return apiError{status: http.StatusNotFound, code: CodeAccountNotFound, message: err.Error()}, true
	case errors.Is(err, service.ErrAlreadyVerified):
		return apiError{status: http.StatusBadRequest, code: CodeAlreadyVerified, message: err.Error()}, true
	case errors.Is(err, service.ErrTooManyAttempts):
		return apiError{status: http.StatusTooManyRequests, code: CodeTooManyAttempts, message: err.Error()}, true
	case errors.Is(err, service.ErrOTPExpired):
		return apiError{status: http.StatusBadRequest, code: CodeOTPExpired, message: err.Error()}, true
	case errors.Is(err, service.ErrOTPNotRequested):
		return apiError{status: http.StatusBadRequest, code: CodeOTPNotRequested, message: err.Error()}, true
	case errors.Is(err, service.ErrOTPInvalid):
		return apiError{status: http.StatusBadRequest, code: CodeOTPInvalid, message: err.Error()}, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{status: http.StatusUnauthorized, code: CodeInvalidCredentials, message: service.MsgInvalidCredentials}, true
	case errors.Is(err, service.ErrVerificationRequired):
		return apiError{status: http.StatusForbidden, code: CodeEmailNotVerified, message: service.MsgVerificationRequired}, true
	case errors.Is(err, service.ErrResetCodeInvalid):
		return apiError{status: http.StatusBadRequest, code: CodeResetCodeInvalid, message: service.MsgResetCodeInvalid}, true
	case errors.Is(err, service.ErrRefreshInvalid):
		return apiError{status: http.StatusUnauthorized, code: CodeRefreshInvalid, message: err.Error()}, true
	case errors.Is(err, service.ErrSessionRevoked):
		return apiError{status: http.StatusUnauthorized, code: CodeSessionRevoked, message: err.Error()}, true
	case errors.Is(err, service.ErrEmailSendFailure):
		return apiError{status: http.StatusServiceUnavailable, code: CodeEmailUnavailable, message: "email delivery unavailable"}, true
	}
	return apiError{status: http.StatusInternalServerError, code: CodeInternal, message: "internal server error"}, false
}
