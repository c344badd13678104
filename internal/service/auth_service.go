package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coursehub/internal/domain"
	"coursehub/internal/email"
	"coursehub/internal/repository"
)

// Mensajes compartidos entre causas distintas para no revelar si una
// cuenta existe. Los tests comparan contra estas constantes.
const (
	MsgInvalidCredentials   = "invalid email or password"
	MsgResendAccepted       = "if the account exists and is pending verification, a new code has been sent"
	MsgResetAccepted        = "if the account exists, a password reset code has been sent"
	MsgVerificationRequired = "email not verified, a new verification code has been sent"
	MsgResetCodeInvalid     = "invalid or expired reset code"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
	maxFullNameLength = 100
)

var (
	ErrInvalidEmail         = errors.New("invalid email")
	ErrInvalidPassword      = errors.New("password must be between 8 and 72 characters")
	ErrInvalidFullName      = errors.New("full name is too long")
	ErrInvalidOTPFormat     = errors.New("otp must be a 6 digit code")
	ErrDuplicateAccount     = errors.New("an account with this email already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrOTPNotRequested      = errors.New("no verification code has been requested")
	ErrOTPExpired           = errors.New("verification code expired")
	ErrOTPInvalid           = errors.New("invalid verification code")
	ErrTooManyAttempts      = errors.New("too many failed attempts, request a new code")
	ErrResendCooldown       = errors.New("please wait before requesting a new code")
	ErrInvalidCredentials   = errors.New(MsgInvalidCredentials)
	ErrVerificationRequired = errors.New(MsgVerificationRequired)
	ErrResetCodeInvalid     = errors.New(MsgResetCodeInvalid)
	ErrRefreshInvalid       = errors.New("refresh token invalid or expired")
	ErrSessionRevoked       = errors.New("session revoked, please log in again")
	ErrEmailSendFailure     = errors.New("email send failed")
)

// AttemptsError reporta un codigo incorrecto junto con los intentos restantes.
type AttemptsError struct {
	Remaining int
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("%s, %d attempts remaining", ErrOTPInvalid.Error(), e.Remaining)
}

func (e *AttemptsError) Unwrap() error {
	return ErrOTPInvalid
}

// CooldownError indica cuanto falta para poder reenviar un codigo.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s (%ds)", ErrResendCooldown.Error(), e.RetryAfterSeconds())
}

func (e *CooldownError) Unwrap() error {
	return ErrResendCooldown
}

func (e *CooldownError) RetryAfterSeconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// AuthPolicy agrupa los limites temporales y de intentos del flujo.
type AuthPolicy struct {
	OTPTTL         time.Duration
	MaxOTPAttempts int
	ResendCooldown time.Duration
}

func DefaultAuthPolicy() AuthPolicy {
	return AuthPolicy{
		OTPTTL:         30 * time.Minute,
		MaxOTPAttempts: 5,
		ResendCooldown: 60 * time.Second,
	}
}

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult es la cuenta resultante y, cuando hay sesion, su par de tokens.
type AuthResult struct {
	User   domain.User
	Tokens TokenPair
}

// AuthService orquesta signup, verificacion OTP, login, refresh y logout.
type AuthService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	emailSender  email.Sender
	tokens       *TokenService
	denylist     TokenDenylist
	policy       AuthPolicy
	passwordCost int
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	emailSender email.Sender,
	tokens *TokenService,
	denylist TokenDenylist,
	policy AuthPolicy,
) *AuthService {
	defaults := DefaultAuthPolicy()
	if policy.OTPTTL <= 0 {
		policy.OTPTTL = defaults.OTPTTL
	}
	if policy.MaxOTPAttempts <= 0 {
		policy.MaxOTPAttempts = defaults.MaxOTPAttempts
	}
	if policy.ResendCooldown < 0 {
		policy.ResendCooldown = defaults.ResendCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if denylist == nil {
		denylist = NewMemoryTokenDenylist()
	}
	return &AuthService{
		logger:       logger,
		users:        users,
		emailSender:  emailSender,
		tokens:       tokens,
		denylist:     denylist,
		policy:       policy,
		passwordCost: bcrypt.DefaultCost,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj usado para expiraciones y cooldowns.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *AuthService) WithPasswordCost(cost int) *AuthService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.passwordCost = cost
	}
	return s
}

func (s *AuthService) Policy() AuthPolicy {
	return s.policy
}

// Signup crea la cuenta pendiente de verificacion y envia el primer codigo.
// Sobre una cuenta aun no verificada actua como reenvio implicito y
// reemplaza la contrasena.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	emailAddr, err := validateEmail(input.Email)
	if err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return domain.User{}, err
	}
	fullName := strings.TrimSpace(input.FullName)
	if len(fullName) > maxFullNameLength {
		return domain.User{}, ErrInvalidFullName
	}

	existing, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return s.restartPendingSignup(ctx, existing, input.Password, fullName)
	case !errors.Is(err, repository.ErrNotFound):
		return domain.User{}, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}
	code, otp, err := s.newOTP()
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	user := domain.User{
		ID:            uuid.NewString(),
		Email:         emailAddr,
		FullName:      fullName,
		Role:          domain.RoleStudent,
		PasswordHash:  passwordHash,
		OTPHash:       otp.Hash,
		OTPExpiresAt:  &otp.ExpiresAt,
		OTPLastSentAt: &otp.SentAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, err
	}

	if err := s.emailSender.SendVerificationOTP(ctx, emailAddr, code, otp.ExpiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("user_id", user.ID))
		return user, ErrEmailSendFailure
	}
	s.logger.Info("account created", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) restartPendingSignup(ctx context.Context, existing domain.User, password, fullName string) (domain.User, error) {
	if existing.IsEmailVerified {
		return domain.User{}, ErrDuplicateAccount
	}
	if err := s.checkCooldown(existing); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	code, otp, err := s.newOTP()
	if err != nil {
		return domain.User{}, err
	}
	ok, err := s.users.ResetPendingSignup(ctx, existing.ID, passwordHash, fullName, otp, s.cooldownCutoff())
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		current, err := s.otpWriteConflict(ctx, existing.ID)
		if err != nil {
			return domain.User{}, err
		}
		if current.IsEmailVerified {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, s.lostCooldownRace(current)
	}

	existing.PasswordHash = passwordHash
	existing.FullName = fullName
	applyOTP(&existing, otp)

	if err := s.emailSender.SendVerificationOTP(ctx, existing.Email, code, otp.ExpiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("user_id", existing.ID))
		return existing, ErrEmailSendFailure
	}
	s.logger.Info("pending signup restarted", zap.String("user_id", existing.ID))
	return existing, nil
}

// VerifyOTP confirma el email y abre la sesion en la misma operacion.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, code string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return AuthResult{}, ErrInvalidEmail
	}
	if !IsValidOTPFormat(code) {
		return AuthResult{}, ErrInvalidOTPFormat
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrAccountNotFound
		}
		return AuthResult{}, err
	}
	if user.IsEmailVerified {
		return AuthResult{}, ErrAlreadyVerified
	}
	if err := s.checkOTP(ctx, user, code); err != nil {
		return AuthResult{}, err
	}

	verified := user
	verified.IsEmailVerified = true
	pair, err := s.tokens.IssuePair(verified)
	if err != nil {
		return AuthResult{}, err
	}
	ok, err := s.users.MarkEmailVerified(ctx, user.ID, user.OTPHash, s.policy.MaxOTPAttempts, HashToken(pair.RefreshToken), s.now())
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, ErrOTPInvalid
	}

	clearOTP(&verified)
	verified.RefreshTokenHash = HashToken(pair.RefreshToken)
	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return AuthResult{User: verified, Tokens: pair}, nil
}

// ResendOTP responde igual exista o no la cuenta; solo el cooldown se reporta.
func (s *AuthService) ResendOTP(ctx context.Context, emailAddr string) error {
	emailAddr, err := validateEmail(emailAddr)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsEmailVerified {
		return nil
	}
	if err := s.checkCooldown(user); err != nil {
		return err
	}

	code, otp, err := s.newOTP()
	if err != nil {
		return err
	}
	ok, err := s.users.StoreOTP(ctx, user.ID, otp, s.cooldownCutoff())
	if err != nil {
		return err
	}
	if !ok {
		return s.resendConflict(ctx, user.ID)
	}
	if err := s.emailSender.SendVerificationOTP(ctx, user.Email, code, otp.ExpiresAt); err != nil {
		s.logger.Warn("resend verification otp failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	return nil
}

// Login no distingue cuenta inexistente de contrasena incorrecta.
// Con una cuenta sin verificar emite un codigo nuevo y devuelve
// ErrVerificationRequired junto con la cuenta, sin abrir sesion.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnPasswordCheck(password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		code, otp, err := s.newOTP()
		if err != nil {
			return AuthResult{}, err
		}
		ok, err := s.users.StoreOTP(ctx, user.ID, otp, otp.SentAt)
		if err != nil {
			return AuthResult{}, err
		}
		if !ok {
			// otro envio concurrente ya dejo un codigo vigente
			return AuthResult{User: user}, ErrVerificationRequired
		}
		applyOTP(&user, otp)
		if err := s.emailSender.SendVerificationOTP(ctx, user.Email, code, otp.ExpiresAt); err != nil {
			s.logger.Warn("login verification otp failed", zap.Error(err), zap.String("user_id", user.ID))
		}
		return AuthResult{User: user}, ErrVerificationRequired
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, HashToken(pair.RefreshToken)); err != nil {
		return AuthResult{}, err
	}
	user.RefreshTokenHash = HashToken(pair.RefreshToken)
	s.logger.Info("login", zap.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: pair}, nil
}

// Refresh rota el refresh token. Un token valido que no coincide con el
// hash guardado se trata como reuso y revoca la sesion completa.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return AuthResult{}, ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrRefreshInvalid
		}
		return AuthResult{}, err
	}
	if user.RefreshTokenHash == "" {
		return AuthResult{}, ErrSessionRevoked
	}

	presented := HashToken(refreshToken)
	if !constantTimeEqual(presented, user.RefreshTokenHash) {
		s.revokeSession(ctx, user.ID, "refresh token mismatch")
		return AuthResult{}, ErrSessionRevoked
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return AuthResult{}, err
	}
	newHash := HashToken(pair.RefreshToken)
	ok, err := s.users.RotateRefreshTokenHash(ctx, user.ID, presented, newHash)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		s.revokeSession(ctx, user.ID, "concurrent refresh rotation")
		return AuthResult{}, ErrSessionRevoked
	}

	user.RefreshTokenHash = newHash
	return AuthResult{User: user, Tokens: pair}, nil
}

// Logout es idempotente: nunca falla para el llamador. Si el refresh token
// decodifica se borra el hash guardado; si llega un access token valido su
// jti queda en la denylist hasta que expire.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) {
	if strings.TrimSpace(refreshToken) != "" {
		claims, err := s.tokens.VerifyRefreshToken(refreshToken)
		if (err == nil || errors.Is(err, ErrTokenExpired)) && claims.Subject != "" {
			if err := s.users.ClearRefreshTokenHash(ctx, claims.Subject); err != nil && !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("logout clear refresh token failed", zap.Error(err), zap.String("user_id", claims.Subject))
			}
		}
	}

	if strings.TrimSpace(accessToken) != "" {
		claims, err := s.tokens.VerifyAccessToken(accessToken)
		if err == nil && claims.ExpiresAt != nil {
			ttl := claims.ExpiresAt.Time.Sub(s.now())
			if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
				s.logger.Warn("logout denylist access token failed", zap.Error(err), zap.String("user_id", claims.Subject))
			}
		}
	}
}

// IsAccessTokenRevoked consulta la denylist; ante error de backend no bloquea.
func (s *AuthService) IsAccessTokenRevoked(ctx context.Context, jti string) bool {
	revoked, err := s.denylist.IsRevoked(ctx, jti)
	if err != nil {
		s.logger.Warn("denylist lookup failed", zap.Error(err))
		return false
	}
	return revoked
}

func (s *AuthService) VerifyAccessToken(token string) (AccessClaims, error) {
	return s.tokens.VerifyAccessToken(token)
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

// RequestPasswordReset envia un codigo de reset a cuentas verificadas.
// La respuesta no revela si la cuenta existe.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr, err := validateEmail(emailAddr)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsEmailVerified {
		return nil
	}
	if err := s.checkCooldown(user); err != nil {
		return err
	}

	code, otp, err := s.newOTP()
	if err != nil {
		return err
	}
	ok, err := s.users.StoreOTP(ctx, user.ID, otp, s.cooldownCutoff())
	if err != nil {
		return err
	}
	if !ok {
		return s.resendConflict(ctx, user.ID)
	}
	if err := s.emailSender.SendPasswordResetOTP(ctx, user.Email, code, otp.ExpiresAt); err != nil {
		s.logger.Warn("send password reset otp failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	return nil
}

// ResetPassword cambia la contrasena con un codigo de reset y cierra la sesion.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !IsValidOTPFormat(code) {
		return ErrInvalidOTPFormat
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetCodeInvalid
		}
		return err
	}
	if !user.IsEmailVerified {
		return ErrResetCodeInvalid
	}
	if err := s.checkOTP(ctx, user, code); err != nil {
		if errors.Is(err, ErrOTPNotRequested) {
			return ErrResetCodeInvalid
		}
		return err
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	ok, err := s.users.ResetPassword(ctx, user.ID, user.OTPHash, s.policy.MaxOTPAttempts, passwordHash, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetCodeInvalid
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// checkOTP aplica el orden fijo: tope de intentos, codigo pendiente,
// expiracion y por ultimo la comparacion. Un fallo suma un intento.
func (s *AuthService) checkOTP(ctx context.Context, user domain.User, code string) error {
	if user.OTPAttempts >= s.policy.MaxOTPAttempts {
		return ErrTooManyAttempts
	}
	if !user.HasPendingOTP() {
		return ErrOTPNotRequested
	}
	if s.now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if VerifyOTP(code, user.OTPHash) {
		return nil
	}

	attempts, ok, err := s.users.IncrementOTPAttempts(ctx, user.ID, s.policy.MaxOTPAttempts)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTooManyAttempts
	}
	remaining := s.policy.MaxOTPAttempts - attempts
	if remaining < 0 {
		remaining = 0
	}
	return &AttemptsError{Remaining: remaining}
}

func (s *AuthService) checkCooldown(user domain.User) error {
	if user.OTPLastSentAt == nil || s.policy.ResendCooldown <= 0 {
		return nil
	}
	wait := user.OTPLastSentAt.Add(s.policy.ResendCooldown).Sub(s.now())
	if wait > 0 {
		return &CooldownError{RetryAfter: wait}
	}
	return nil
}

// cooldownCutoff es el ultimo instante de envio que aun permite uno nuevo.
func (s *AuthService) cooldownCutoff() time.Time {
	if s.policy.ResendCooldown <= 0 {
		return s.now()
	}
	return s.now().Add(-s.policy.ResendCooldown)
}

// otpWriteConflict relee la cuenta despues de una escritura condicional fallida.
func (s *AuthService) otpWriteConflict(ctx context.Context, id string) (domain.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	return current, nil
}

// resendConflict resuelve un envio que perdio contra otro concurrente.
// Una cuenta borrada entretanto responde igual que una inexistente.
func (s *AuthService) resendConflict(ctx context.Context, id string) error {
	current, err := s.otpWriteConflict(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}
	return s.lostCooldownRace(current)
}

func (s *AuthService) lostCooldownRace(current domain.User) error {
	if err := s.checkCooldown(current); err != nil {
		return err
	}
	return &CooldownError{RetryAfter: s.policy.ResendCooldown}
}

func (s *AuthService) newOTP() (string, repository.OTPIssue, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", repository.OTPIssue{}, err
	}
	now := s.now()
	return code, repository.OTPIssue{
		Hash:      HashOTP(code),
		ExpiresAt: now.Add(s.policy.OTPTTL),
		SentAt:    now,
	}, nil
}

func (s *AuthService) revokeSession(ctx context.Context, userID, reason string) {
	s.logger.Warn("revoking session", zap.String("user_id", userID), zap.String("reason", reason))
	if err := s.users.ClearRefreshTokenHash(ctx, userID); err != nil {
		s.logger.Error("clear refresh token failed", zap.Error(err), zap.String("user_id", userID))
	}
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// burnPasswordCheck iguala el costo de un login contra una cuenta inexistente.
func (s *AuthService) burnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("coursehub-timing-equalizer"), s.passwordCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func applyOTP(user *domain.User, otp repository.OTPIssue) {
	expiresAt, sentAt := otp.ExpiresAt, otp.SentAt
	user.OTPHash = otp.Hash
	user.OTPExpiresAt = &expiresAt
	user.OTPLastSentAt = &sentAt
	user.OTPAttempts = 0
}

func clearOTP(user *domain.User) {
	user.OTPHash = ""
	user.OTPExpiresAt = nil
	user.OTPLastSentAt = nil
	user.OTPAttempts = 0
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(raw string) (string, error) {
	emailAddr := normalizeEmail(raw)
	if emailAddr == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(emailAddr)
	if err != nil || addr.Address != emailAddr {
		return "", ErrInvalidEmail
	}
	return emailAddr, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
