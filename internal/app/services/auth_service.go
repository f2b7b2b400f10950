package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/auth"
	"github.com/bmvt/backend/internal/pkg/dberrors"
	"github.com/bmvt/backend/internal/pkg/validation"
)

// User-facing messages shared by the auth and user services.
const (
	msgUserNotFound     = "Utilisateur introuvable"
	msgInvalidEmail     = "Email invalide"
	msgInvalidRole      = "Rôle invalide"
	msgPasswordTooShort = "Mot de passe trop court (min 8 caractères)."
)

// UserStore is the persistence needed by the auth and user services.
type UserStore interface {
	List(ctx context.Context, search string) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// AuthService handles registration, login and the current identity.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	TokenTTL() time.Duration
}

type authServiceImpl struct {
	users      UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{users: users, jwtService: jwtService, logger: logger}
}

// newAccount validates a registration and hashes its password.
func newAccount(ctx context.Context, users UserStore, req *dto.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError("Champs requis manquants")
	}
	if !validation.IsEmail(email) {
		return nil, apperrors.NewBadRequestError(msgInvalidEmail)
	}

	role := enums.RoleAgent
	if r := strings.TrimSpace(req.Role); r != "" {
		role = enums.RoleType(r)
		if !role.Valid() {
			return nil, apperrors.NewBadRequestError(msgInvalidRole)
		}
	}
	if len(req.Password) < validation.PasswordMinLength {
		return nil, apperrors.NewBadRequestError(msgPasswordTooShort)
	}

	exists, err := users.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Un compte existe déjà avec cet email")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Role: role, PasswordHash: hash}
	if err := users.Create(ctx, user); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.UserConstraintEmail) {
			return nil, apperrors.NewConflictError("Un compte existe déjà avec cet email")
		}
		return nil, err
	}
	return user, nil
}

// Register creates an account and signs a token for it.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := newAccount(ctx, s.users, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return s.respond(user)
}

// Login checks credentials and records the login time.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError("Email et mot de passe requis")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, invalidCredentials()
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return s.respond(user)
}

func invalidCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Identifiants invalides")
}

func (s *authServiceImpl) respond(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: dto.NewUserSummary(user), Token: token}, nil
}

// Me returns the authenticated user.
func (s *authServiceImpl) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return user, nil
}

// TokenTTL is the lifetime of issued tokens, used for the cookie.
func (s *authServiceImpl) TokenTTL() time.Duration {
	return s.jwtService.TokenTTL()
}
