package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// UserConstraintEmail is the unique index on LOWER(email).
const UserConstraintEmail = "users_email_key"

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db db.Executor
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(ex db.Executor) *UserRepository {
	return &UserRepository{db: ex}
}

func userListQuery(search string) squirrel.SelectBuilder {
	q := psql.Select("*").From("users")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(ilikeAny(helpers.Contains(s), "name", "email", "role"))
	}
	return q.OrderBy("created_at DESC", "id DESC")
}

// List returns users matching search on name, email or role, newest first.
func (r *UserRepository) List(ctx context.Context, search string) ([]models.User, error) {
	users, err := db.SelectBuilt[models.User](ctx, r.db, userListQuery(search))
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := db.GetBuilt[models.User](ctx, r.db, psql.Select("*").From("users").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := psql.Select("*").From("users").Where("LOWER(email) = LOWER(?)", email)
	user, err := db.GetBuilt[models.User](ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already used by another account.
// excludeID may be 0.
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := psql.Select("COUNT(*)").From("users").Where("LOWER(email) = LOWER(?)", email)
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	n, err := db.Count(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return n > 0, nil
}

// Create inserts a user and fills the generated columns.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	q := psql.Insert("users").
		Columns("name", "email", "role", "password_hash").
		Values(user.Name, user.Email, user.Role, user.PasswordHash).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.User](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	*user = *created
	return nil
}

// Update writes name, email and role, plus the password hash when set.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	q := psql.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("role", user.Role).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING *")
	if user.PasswordHash != "" {
		q = q.Set("password_hash", user.PasswordHash)
	}

	updated, err := db.GetBuilt[models.User](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	*user = *updated
	return nil
}

// UpdatePassword replaces the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	q := psql.Update("users").
		Set("password_hash", hash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	res, err := db.ExecuteBuilt(ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	q := psql.Update("users").Set("last_login_at", squirrel.Expr("NOW()")).Where(squirrel.Eq{"id": id})
	if _, err := db.ExecuteBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// Delete removes a user, returning db.ErrNotFound when absent.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.ExecuteBuilt(ctx, r.db, psql.Delete("users").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
