package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coursehub/internal/domain"
)

type authFixture struct {
	clock  *fakeClock
	repo   *mockUserRepo
	sender *mockEmailSender
	tokens *TokenService
	svc    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := newFakeClock()
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	tokens := newTestTokenService(clock)
	svc := NewAuthService(zap.NewNop(), repo, sender, tokens, NewMemoryTokenDenylist(), DefaultAuthPolicy()).
		WithClock(clock.Now).
		WithPasswordCost(bcrypt.MinCost)
	return &authFixture{clock: clock, repo: repo, sender: sender, tokens: tokens, svc: svc}
}

func (f *authFixture) signup(t *testing.T, email string) string {
	t.Helper()
	if _, err := f.svc.Signup(context.Background(), SignupInput{Email: email, Password: "correct-horse"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return f.sender.last().code
}

func (f *authFixture) verifiedSession(t *testing.T, email string) AuthResult {
	t.Helper()
	code := f.signup(t, email)
	res, err := f.svc.VerifyOTP(context.Background(), email, code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	return res
}

func (f *authFixture) stored(t *testing.T, email string) domain.User {
	t.Helper()
	user, err := f.repo.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	return user
}

func TestAuthServiceSignup_CreatesPendingAccount(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Signup(context.Background(), SignupInput{
		Email:    "  User@Example.com ",
		Password: "correct-horse",
		FullName: "Ada",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.IsEmailVerified {
		t.Fatalf("expected account to start unverified")
	}
	if user.Role != domain.RoleStudent {
		t.Fatalf("expected student role, got %s", user.Role)
	}

	sent := f.sender.last()
	if sent.to != "user@example.com" || sent.kind != "verify" {
		t.Fatalf("expected verification email to user@example.com, got %+v", sent)
	}
	if !IsValidOTPFormat(sent.code) {
		t.Fatalf("expected 6 digit code, got %q", sent.code)
	}
	if want := f.clock.Now().Add(30 * time.Minute); !sent.expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, sent.expiresAt)
	}

	stored := f.stored(t, "user@example.com")
	if stored.OTPHash == "" || stored.OTPHash == sent.code {
		t.Fatalf("expected hashed otp, got %q", stored.OTPHash)
	}
	if stored.OTPAttempts != 0 {
		t.Fatalf("expected zero attempts, got %d", stored.OTPAttempts)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")); err != nil {
		t.Fatalf("expected bcrypt password hash, got %v", err)
	}
}

func TestAuthServiceSignup_ValidatesInput(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name  string
		input SignupInput
		want  error
	}{
		{"empty email", SignupInput{Email: "", Password: "correct-horse"}, ErrInvalidEmail},
		{"malformed email", SignupInput{Email: "not-an-email", Password: "correct-horse"}, ErrInvalidEmail},
		{"display name form", SignupInput{Email: "Ada <ada@example.com>", Password: "correct-horse"}, ErrInvalidEmail},
		{"short password", SignupInput{Email: "user@example.com", Password: "short"}, ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Signup(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("expected no emails for invalid input")
	}
}

func TestAuthServiceSignup_DuplicateVerifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedSession(t, "user@example.com")

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "another-pass"})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestAuthServiceSignup_RetryOnPendingAccount(t *testing.T) {
	f := newAuthFixture(t)
	first := f.signup(t, "user@example.com")

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "new-password"})
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError within cooldown, got %v", err)
	}

	f.clock.Advance(61 * time.Second)
	if _, err := f.svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "new-password"}); err != nil {
		t.Fatalf("expected retry signup to succeed, got %v", err)
	}
	second := f.sender.last().code

	stored := f.stored(t, "user@example.com")
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")); err != nil {
		t.Fatalf("expected password overwritten, got %v", err)
	}
	if first != second && VerifyOTP(first, stored.OTPHash) {
		t.Fatalf("expected previous code to be replaced")
	}
}

func TestAuthServiceSignup_EmailSendFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.sender.err = errors.New("smtp down")

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "correct-horse"})
	if !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
	if f.stored(t, "user@example.com").IsEmailVerified {
		t.Fatalf("expected pending account to persist")
	}
}

func TestAuthServiceVerifyOTP_Success(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")

	res, err := f.svc.VerifyOTP(context.Background(), "user@example.com", code)
	if err != nil {
		t.Fatalf("expected verify success, got %v", err)
	}
	if !res.User.IsEmailVerified {
		t.Fatalf("expected verified user")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}

	claims, err := f.tokens.VerifyAccessToken(res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("expected valid access token, got %v", err)
	}
	if claims.UserID() != res.User.ID || !claims.EmailVerified {
		t.Fatalf("unexpected claims %+v", claims)
	}

	stored := f.stored(t, "user@example.com")
	if stored.HasPendingOTP() || stored.OTPAttempts != 0 {
		t.Fatalf("expected otp cleared after verification")
	}
	if stored.RefreshTokenHash != HashToken(res.Tokens.RefreshToken) {
		t.Fatalf("expected refresh hash persisted")
	}
}

func TestAuthServiceVerifyOTP_WrongCodeReportsRemaining(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")

	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", otherCode(code))
	var attemptsErr *AttemptsError
	if !errors.As(err, &attemptsErr) {
		t.Fatalf("expected AttemptsError, got %v", err)
	}
	if attemptsErr.Remaining != 4 {
		t.Fatalf("expected 4 remaining attempts, got %d", attemptsErr.Remaining)
	}
	if !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected AttemptsError to unwrap to ErrOTPInvalid")
	}
}

func TestAuthServiceVerifyOTP_LockoutBeatsCorrectCode(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")

	for i := 0; i < 5; i++ {
		_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", otherCode(code))
		if !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("attempt %d: expected ErrOTPInvalid, got %v", i+1, err)
		}
	}

	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", code)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts with correct code, got %v", err)
	}

	f.clock.Advance(time.Hour)
	_, err = f.svc.VerifyOTP(context.Background(), "user@example.com", code)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected lockout to win over expiry, got %v", err)
	}
}

func TestAuthServiceVerifyOTP_Expired(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")

	f.clock.Advance(30*time.Minute + time.Second)
	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", code)
	if !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestAuthServiceVerifyOTP_StateErrors(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedSession(t, "done@example.com")

	if _, err := f.svc.VerifyOTP(context.Background(), "nobody@example.com", "123456"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := f.svc.VerifyOTP(context.Background(), "done@example.com", "123456"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if _, err := f.svc.VerifyOTP(context.Background(), "done@example.com", "12ab"); !errors.Is(err, ErrInvalidOTPFormat) {
		t.Fatalf("expected ErrInvalidOTPFormat, got %v", err)
	}
}

func TestAuthServiceResendOTP_Cooldown(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")
	if _, err := f.svc.VerifyOTP(context.Background(), "user@example.com", otherCode(code)); err == nil {
		t.Fatalf("expected failed attempt")
	}

	f.clock.Advance(20 * time.Second)
	err := f.svc.ResendOTP(context.Background(), "user@example.com")
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.RetryAfterSeconds() != 40 {
		t.Fatalf("expected 40 seconds remaining, got %d", cooldown.RetryAfterSeconds())
	}

	f.clock.Advance(40 * time.Second)
	if err := f.svc.ResendOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("expected resend success, got %v", err)
	}
	stored := f.stored(t, "user@example.com")
	if stored.OTPAttempts != 0 {
		t.Fatalf("expected attempts reset, got %d", stored.OTPAttempts)
	}
	if !VerifyOTP(f.sender.last().code, stored.OTPHash) {
		t.Fatalf("expected stored hash to match resent code")
	}
}

func TestAuthServiceResendOTP_DoesNotRevealAccounts(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedSession(t, "done@example.com")
	sentBefore := len(f.sender.sent)

	if err := f.svc.ResendOTP(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected generic success for unknown account, got %v", err)
	}
	if err := f.svc.ResendOTP(context.Background(), "done@example.com"); err != nil {
		t.Fatalf("expected generic success for verified account, got %v", err)
	}
	if len(f.sender.sent) != sentBefore {
		t.Fatalf("expected no emails sent")
	}
}

func TestAuthServiceLogin_IndistinguishableFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedSession(t, "user@example.com")

	_, wrongPassword := f.svc.Login(context.Background(), "user@example.com", "wrong-password")
	_, unknown := f.svc.Login(context.Background(), "nobody@example.com", "wrong-password")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v and %v", wrongPassword, unknown)
	}
	if wrongPassword.Error() != unknown.Error() || unknown.Error() != MsgInvalidCredentials {
		t.Fatalf("expected identical messages, got %q and %q", wrongPassword.Error(), unknown.Error())
	}
}

func TestAuthServiceLogin_UnverifiedIssuesFreshOTP(t *testing.T) {
	f := newAuthFixture(t)
	oldCode := f.signup(t, "user@example.com")
	if _, err := f.svc.VerifyOTP(context.Background(), "user@example.com", otherCode(oldCode)); err == nil {
		t.Fatalf("expected failed attempt")
	}

	res, err := f.svc.Login(context.Background(), "user@example.com", "correct-horse")
	if !errors.Is(err, ErrVerificationRequired) {
		t.Fatalf("expected ErrVerificationRequired, got %v", err)
	}
	if res.Tokens.AccessToken != "" {
		t.Fatalf("expected no access token for unverified account")
	}

	newCode := f.sender.last().code
	stored := f.stored(t, "user@example.com")
	if stored.OTPAttempts != 0 {
		t.Fatalf("expected attempts reset, got %d", stored.OTPAttempts)
	}
	if !VerifyOTP(newCode, stored.OTPHash) {
		t.Fatalf("expected stored hash to match new code")
	}
	if oldCode != newCode && VerifyOTP(oldCode, stored.OTPHash) {
		t.Fatalf("expected old code invalidated")
	}
}

func TestAuthServiceLogin_VerifiedReplacesSession(t *testing.T) {
	f := newAuthFixture(t)
	first := f.verifiedSession(t, "user@example.com")

	second, err := f.svc.Login(context.Background(), "user@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("expected login success, got %v", err)
	}
	if second.Tokens.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if got := f.stored(t, "user@example.com").RefreshTokenHash; got != HashToken(second.Tokens.RefreshToken) {
		t.Fatalf("expected newest refresh hash stored")
	}

	if _, err := f.svc.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected previous session revoked, got %v", err)
	}
}

func TestAuthServiceRefresh_RotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")

	rotated, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("expected refresh success, got %v", err)
	}
	if rotated.Tokens.RefreshToken == session.Tokens.RefreshToken {
		t.Fatalf("expected rotated refresh token")
	}
	again, err := f.svc.Refresh(context.Background(), rotated.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("expected newest token to refresh, got %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	if !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked on reuse, got %v", err)
	}
	if f.stored(t, "user@example.com").RefreshTokenHash != "" {
		t.Fatalf("expected stored hash cleared after reuse")
	}
	if _, err := f.svc.Refresh(context.Background(), again.Tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected newest token revoked too, got %v", err)
	}
}

func TestAuthServiceRefresh_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")

	if _, err := f.svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), session.Tokens.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected access token rejected as refresh, got %v", err)
	}

	f.clock.Advance(7*24*time.Hour + time.Second)
	if _, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected expired refresh rejected, got %v", err)
	}
}

func TestAuthServiceRefresh_ConcurrentRotationRevokes(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")
	userID := session.User.ID

	f.repo.onRotate = func() {
		f.repo.onRotate = nil
		_ = f.repo.SetRefreshTokenHash(context.Background(), userID, "written-by-other-device")
	}

	_, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	if !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked on lost race, got %v", err)
	}
	if f.stored(t, "user@example.com").RefreshTokenHash != "" {
		t.Fatalf("expected stored hash cleared")
	}
}

func TestAuthServiceLogout_IsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")

	f.svc.Logout(context.Background(), session.Tokens.RefreshToken, session.Tokens.AccessToken)
	f.svc.Logout(context.Background(), session.Tokens.RefreshToken, session.Tokens.AccessToken)
	f.svc.Logout(context.Background(), "", "")
	f.svc.Logout(context.Background(), "garbage", "garbage")

	if f.stored(t, "user@example.com").RefreshTokenHash != "" {
		t.Fatalf("expected refresh hash cleared")
	}
	if _, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected refresh after logout to fail, got %v", err)
	}

	claims, err := f.tokens.VerifyAccessToken(session.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("expected access token still well formed, got %v", err)
	}
	if !f.svc.IsAccessTokenRevoked(context.Background(), claims.ID) {
		t.Fatalf("expected access token jti on the denylist")
	}
}

func TestAuthServiceLogout_ExpiredRefreshStillClears(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")

	f.clock.Advance(8 * 24 * time.Hour)
	f.svc.Logout(context.Background(), session.Tokens.RefreshToken, "")

	if f.stored(t, "user@example.com").RefreshTokenHash != "" {
		t.Fatalf("expected refresh hash cleared with expired token")
	}
}

func TestAuthServicePasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	session := f.verifiedSession(t, "user@example.com")

	f.clock.Advance(2 * time.Minute)
	if err := f.svc.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("expected reset request success, got %v", err)
	}
	sent := f.sender.last()
	if sent.kind != "reset" {
		t.Fatalf("expected reset email, got %+v", sent)
	}

	err := f.svc.ResetPassword(context.Background(), "user@example.com", otherCode(sent.code), "brand-new-pass")
	var attemptsErr *AttemptsError
	if !errors.As(err, &attemptsErr) {
		t.Fatalf("expected AttemptsError for wrong reset code, got %v", err)
	}

	if err := f.svc.ResetPassword(context.Background(), "user@example.com", sent.code, "brand-new-pass"); err != nil {
		t.Fatalf("expected reset success, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "user@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "user@example.com", "brand-new-pass"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected session from before reset revoked, got %v", err)
	}

	if err := f.svc.ResetPassword(context.Background(), "user@example.com", sent.code, "another-pass"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected used code rejected, got %v", err)
	}
}

func TestAuthServicePasswordReset_UnknownAccountIsGeneric(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected generic success, got %v", err)
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("expected no email for unknown account")
	}
	if err := f.svc.ResetPassword(context.Background(), "nobody@example.com", "123456", "brand-new-pass"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid, got %v", err)
	}
}

// otherCode devuelve un codigo de 6 digitos distinto del dado.
func otherCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestAuthServiceCheckOTP_StaleReadsStopAtCeiling(t *testing.T) {
	f := newAuthFixture(t)
	code := f.signup(t, "user@example.com")
	// todas las lecturas ocurren antes de cualquier incremento
	snapshot := f.stored(t, "user@example.com")

	var invalid, locked int
	for i := 0; i < 20; i++ {
		err := f.svc.checkOTP(context.Background(), snapshot, otherCode(code))
		switch {
		case errors.Is(err, ErrTooManyAttempts):
			locked++
		case errors.Is(err, ErrOTPInvalid):
			invalid++
		default:
			t.Fatalf("guess %d: unexpected error %v", i+1, err)
		}
	}
	if invalid != 5 || locked != 15 {
		t.Fatalf("expected 5 counted guesses and 15 lockouts, got %d and %d", invalid, locked)
	}
	if got := f.stored(t, "user@example.com").OTPAttempts; got != 5 {
		t.Fatalf("expected attempts capped at 5, got %d", got)
	}

	_, err := f.svc.VerifyOTP(context.Background(), "user@example.com", code)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected lockout after capped attempts, got %v", err)
	}
}

// landConcurrentSend simula otro envio que escribe justo antes que el nuestro.
func landConcurrentSend(f *authFixture, email string) {
	f.repo.onOTPWrite = func() {
		f.repo.onOTPWrite = nil
		id := f.repo.usersByEmail[email]
		user := f.repo.usersByID[id]
		sentAt := f.clock.Now()
		user.OTPLastSentAt = &sentAt
		f.repo.usersByID[id] = user
	}
}

func TestAuthServiceResendOTP_ConcurrentSendHitsCooldown(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "user@example.com")
	f.clock.Advance(61 * time.Second)
	before := f.stored(t, "user@example.com")
	sent := len(f.sender.sent)

	landConcurrentSend(f, "user@example.com")
	err := f.svc.ResendOTP(context.Background(), "user@example.com")

	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.RetryAfterSeconds() != 60 {
		t.Fatalf("expected full cooldown, got %d", cooldown.RetryAfterSeconds())
	}
	if len(f.sender.sent) != sent {
		t.Fatalf("expected no extra email, got %d", len(f.sender.sent)-sent)
	}
	if f.stored(t, "user@example.com").OTPHash != before.OTPHash {
		t.Fatalf("expected stored code untouched")
	}
}

func TestAuthServiceSignup_ConcurrentRetryHitsCooldown(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "user@example.com")
	f.clock.Advance(61 * time.Second)
	sent := len(f.sender.sent)

	landConcurrentSend(f, "user@example.com")
	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "new-password"})

	if !errors.Is(err, ErrResendCooldown) {
		t.Fatalf("expected ErrResendCooldown, got %v", err)
	}
	if len(f.sender.sent) != sent {
		t.Fatalf("expected no extra email")
	}
	stored := f.stored(t, "user@example.com")
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")); err != nil {
		t.Fatalf("expected original password kept, got %v", err)
	}
}
