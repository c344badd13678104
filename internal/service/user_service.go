package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"coursehub/internal/domain"
	"coursehub/internal/repository"
)

var ErrInvalidRole = errors.New("invalid role")

// UserService coordina las operaciones sobre cuentas ya autenticadas y las
// tareas administrativas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if len(fullName) > maxFullNameLength {
		return domain.User{}, ErrInvalidFullName
	}
	if err := s.users.UpdateProfile(ctx, userID, fullName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	return s.GetProfile(ctx, userID)
}

// DeleteAccount borra la cuenta; los access tokens vivos expiran solos.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// SetRole cambia el rol por email. El rol nuevo aplica desde el proximo
// access token emitido.
func (s *UserService) SetRole(ctx context.Context, emailAddr, rawRole string) (domain.User, error) {
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return domain.User{}, ErrInvalidRole
	}
	user, err := s.GetByEmail(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	user.Role = role
	s.logger.Info("role updated", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// RevokeSessions invalida el refresh token vigente de la cuenta.
func (s *UserService) RevokeSessions(ctx context.Context, emailAddr string) error {
	user, err := s.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if err := s.users.ClearRefreshTokenHash(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	s.logger.Info("sessions revoked", zap.String("user_id", user.ID))
	return nil
}

func (s *UserService) DeleteByEmail(ctx context.Context, emailAddr string) error {
	user, err := s.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	return s.DeleteAccount(ctx, user.ID)
}
