package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"coursehub/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

const uniqueViolation = "23505"

// OTPIssue describe un codigo recien emitido tal como se persiste.
type OTPIssue struct {
	Hash      string
	ExpiresAt time.Time
	SentAt    time.Time
}

// UserRepository define el contrato de persistencia para cuentas.
// Las transiciones que leen y escriben el mismo campo se expresan como
// una unica sentencia para que la atomicidad por fila de Postgres baste.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ResetPendingSignup(ctx context.Context, id, passwordHash, fullName string, otp OTPIssue, sentBefore time.Time) (bool, error)
	StoreOTP(ctx context.Context, id string, otp OTPIssue, sentBefore time.Time) (bool, error)
	IncrementOTPAttempts(ctx context.Context, id string, maxAttempts int) (int, bool, error)
	MarkEmailVerified(ctx context.Context, id, otpHash string, maxAttempts int, refreshHash string, now time.Time) (bool, error)
	ResetPassword(ctx context.Context, id, otpHash string, maxAttempts int, passwordHash string, now time.Time) (bool, error)
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
	ClearRefreshTokenHash(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id, fullName string) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

// DBTX es el subconjunto de pgx que usa el repositorio; lo cumplen
// *pgxpool.Pool y pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgUserRepository implementa UserRepository usando pgx.
type PgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `
	id, email, full_name, role, password_hash, is_email_verified,
	COALESCE(otp_hash, ''), otp_expires_at, otp_attempts, otp_last_sent_at,
	COALESCE(refresh_token_hash, ''), created_at, updated_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, full_name, role, password_hash, is_email_verified,
			otp_hash, otp_expires_at, otp_attempts, otp_last_sent_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		string(user.Role),
		user.PasswordHash,
		user.IsEmailVerified,
		user.OTPHash,
		user.OTPExpiresAt,
		user.OTPAttempts,
		user.OTPLastSentAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&role,
		&u.PasswordHash,
		&u.IsEmailVerified,
		&u.OTPHash,
		&u.OTPExpiresAt,
		&u.OTPAttempts,
		&u.OTPLastSentAt,
		&u.RefreshTokenHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// ResetPendingSignup sobrescribe credenciales de una cuenta aun sin verificar.
// No escribe si el ultimo envio es posterior a sentBefore.
func (r *PgUserRepository) ResetPendingSignup(ctx context.Context, id, passwordHash, fullName string, otp OTPIssue, sentBefore time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET password_hash = $2,
			full_name = $3,
			otp_hash = $4,
			otp_expires_at = $5,
			otp_last_sent_at = $6,
			otp_attempts = 0,
			updated_at = $6
		WHERE id = $1
			AND is_email_verified = FALSE
			AND (otp_last_sent_at IS NULL OR otp_last_sent_at <= $7)
	`
	tag, err := r.db.Exec(ctx, query, id, passwordHash, fullName, otp.Hash, otp.ExpiresAt, otp.SentAt, sentBefore)
	if err != nil {
		return false, fmt.Errorf("reset pending signup: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// StoreOTP reemplaza el codigo pendiente. Devuelve false si otro envio
// posterior a sentBefore gano la carrera o la cuenta ya no existe.
func (r *PgUserRepository) StoreOTP(ctx context.Context, id string, otp OTPIssue, sentBefore time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET otp_hash = $2,
			otp_expires_at = $3,
			otp_last_sent_at = $4,
			otp_attempts = 0,
			updated_at = $4
		WHERE id = $1
			AND (otp_last_sent_at IS NULL OR otp_last_sent_at <= $5)
	`
	tag, err := r.db.Exec(ctx, query, id, otp.Hash, otp.ExpiresAt, otp.SentAt, sentBefore)
	if err != nil {
		return false, fmt.Errorf("store otp: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementOTPAttempts suma un intento fallido mientras quede margen bajo
// maxAttempts y devuelve el total resultante. false indica tope alcanzado.
func (r *PgUserRepository) IncrementOTPAttempts(ctx context.Context, id string, maxAttempts int) (int, bool, error) {
	const query = `
		UPDATE users
		SET otp_attempts = otp_attempts + 1,
			updated_at = NOW()
		WHERE id = $1 AND otp_attempts < $2
		RETURNING otp_attempts
	`
	var attempts int
	err := r.db.QueryRow(ctx, query, id, maxAttempts).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment otp attempts: %w", err)
	}
	return attempts, true, nil
}

// MarkEmailVerified verifica la cuenta y abre la sesion en una sola escritura.
// Devuelve false si el codigo cambio, se agotaron los intentos o expiro
// entre la lectura y la escritura.
func (r *PgUserRepository) MarkEmailVerified(ctx context.Context, id, otpHash string, maxAttempts int, refreshHash string, now time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET is_email_verified = TRUE,
			otp_hash = NULL,
			otp_expires_at = NULL,
			otp_attempts = 0,
			otp_last_sent_at = NULL,
			refresh_token_hash = $4,
			updated_at = $5
		WHERE id = $1
			AND is_email_verified = FALSE
			AND otp_hash = $2
			AND otp_attempts < $3
			AND otp_expires_at > $5
	`
	tag, err := r.db.Exec(ctx, query, id, otpHash, maxAttempts, refreshHash, now)
	if err != nil {
		return false, fmt.Errorf("mark email verified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResetPassword cambia la contrasena, cierra el ciclo OTP y revoca la sesion.
func (r *PgUserRepository) ResetPassword(ctx context.Context, id, otpHash string, maxAttempts int, passwordHash string, now time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET password_hash = $4,
			otp_hash = NULL,
			otp_expires_at = NULL,
			otp_attempts = 0,
			otp_last_sent_at = NULL,
			refresh_token_hash = NULL,
			updated_at = $5
		WHERE id = $1
			AND otp_hash = $2
			AND otp_attempts < $3
			AND otp_expires_at > $5
	`
	tag, err := r.db.Exec(ctx, query, id, otpHash, maxAttempts, passwordHash, now)
	if err != nil {
		return false, fmt.Errorf("reset password: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgUserRepository) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	const query = `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "set refresh token", query, id, hash)
}

// RotateRefreshTokenHash reemplaza el hash solo si sigue siendo oldHash.
func (r *PgUserRepository) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	const query = `
		UPDATE users
		SET refresh_token_hash = $3,
			updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2
	`
	tag, err := r.db.Exec(ctx, query, id, oldHash, newHash)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgUserRepository) ClearRefreshTokenHash(ctx context.Context, id string) error {
	const query = `UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "clear refresh token", query, id)
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id, fullName string) error {
	const query = `UPDATE users SET full_name = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update profile", query, id, fullName)
}

func (r *PgUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update role", query, id, string(role))
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
