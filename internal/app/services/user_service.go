package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/auth"
	"github.com/bmvt/backend/internal/pkg/dberrors"
	"github.com/bmvt/backend/internal/pkg/validation"
)

// UserService manages accounts.
type UserService interface {
	ListUsers(ctx context.Context, search string) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	ChangePassword(ctx context.Context, actor Actor, id int64, req *dto.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, id int64) error
}

type userServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{users: users, logger: logger}
}

func (s *userServiceImpl) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	return s.users.List(ctx, search)
}

func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return user, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	user, err := newAccount(ctx, s.users, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("User created")
	return user, nil
}

// UpdateUser replaces name, email and role, and the password when given.
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := enums.RoleType(strings.TrimSpace(req.Role))

	if name == "" {
		return nil, apperrors.NewBadRequestError("Le nom est obligatoire")
	}
	if !validation.IsEmail(email) {
		return nil, apperrors.NewBadRequestError(msgInvalidEmail)
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequestError(msgInvalidRole)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	if email != strings.ToLower(user.Email) {
		exists, err := s.users.EmailExists(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflictError("Email déjà utilisé")
		}
	}

	user.Name, user.Email, user.Role = name, email, role
	user.PasswordHash = ""
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < validation.PasswordMinLength {
			return nil, apperrors.NewBadRequestError(msgPasswordTooShort)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.UserConstraintEmail) {
			return nil, apperrors.NewConflictError("Email déjà utilisé")
		}
		return nil, notFound(err, msgUserNotFound)
	}
	return user, nil
}

// ChangePassword lets managers reset any password; other callers change
// only their own and must prove the old one.
func (s *userServiceImpl) ChangePassword(ctx context.Context, actor Actor, id int64, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < validation.PasswordMinLength {
		return apperrors.NewBadRequestError("Nouveau mot de passe invalide (min 8 caractères).")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return notFound(err, msgUserNotFound)
	}

	manager := actor.Role.CanManageUsers()
	if !manager && actor.ID != user.ID {
		return apperrors.NewForbiddenError("Accès refusé.")
	}
	if !manager {
		if req.OldPassword == "" || user.PasswordHash == "" {
			return apperrors.NewBadRequestError("Ancien mot de passe requis.")
		}
		if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
			return apperrors.NewBadRequestError("Ancien mot de passe incorrect.")
		}
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return notFound(err, msgUserNotFound)
	}
	s.logger.Info().Int64("userID", id).Int64("by", actor.ID).Msg("Password changed")
	return nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, msgUserNotFound)
	}
	return nil
}
