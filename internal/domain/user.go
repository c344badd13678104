package domain

import (
	"strings"
	"time"
)

// Role identifica el tipo de cuenta dentro del marketplace.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normaliza un rol recibido desde texto libre.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// User es la cuenta persistida: credenciales, estado de verificacion y sesion.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName,omitempty"`
	Role             Role       `json:"role"`
	PasswordHash     string     `json:"-"`
	IsEmailVerified  bool       `json:"isEmailVerified"`
	OTPHash          string     `json:"-"`
	OTPExpiresAt     *time.Time `json:"-"`
	OTPAttempts      int        `json:"-"`
	OTPLastSentAt    *time.Time `json:"-"`
	RefreshTokenHash string     `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PublicUser es la vista expuesta en las respuestas HTTP.
type PublicUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName,omitempty"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

// HasPendingOTP indica si hay un ciclo de verificacion o reset abierto.
func (u User) HasPendingOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}
