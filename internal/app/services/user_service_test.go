package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/auth"
)

func TestUpdateUser(t *testing.T) {
	users := newMemoryUsers()
	awa := users.seed(t, "Awa", "awa@bmvt.sn", "motdepasse", enums.RoleAgent)
	users.seed(t, "Moussa", "moussa@bmvt.sn", "motdepasse", enums.RoleAgent)
	svc := NewUserService(users, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, awa.ID, &dto.UpdateUserRequest{Email: "awa@bmvt.sn", Role: "Agent"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Le nom est obligatoire")

	_, err = svc.UpdateUser(ctx, awa.ID, &dto.UpdateUserRequest{Name: "Awa", Email: "awa@bmvt.sn", Role: "Roi"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Rôle invalide")

	_, err = svc.UpdateUser(ctx, awa.ID, &dto.UpdateUserRequest{Name: "Awa", Email: "Moussa@bmvt.sn", Role: "Agent"})
	requireAppError(t, err, apperrors.ErrConflict, "Email déjà utilisé")

	_, err = svc.UpdateUser(ctx, awa.ID, &dto.UpdateUserRequest{Name: "Awa", Email: "awa@bmvt.sn", Role: "Agent", Password: strPtr("court")})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Mot de passe trop court (min 8 caractères).")

	_, err = svc.UpdateUser(ctx, 404, &dto.UpdateUserRequest{Name: "X", Email: "x@bmvt.sn", Role: "Agent"})
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Utilisateur introuvable")

	updated, err := svc.UpdateUser(ctx, awa.ID, &dto.UpdateUserRequest{Name: "Awa Diop", Email: "awa.diop@bmvt.sn", Role: "Superviseur"})
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", updated.Name)
	assert.Equal(t, enums.RoleSuperviseur, updated.Role)

	stored, err := users.GetByID(ctx, awa.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "motdepasse"), "password kept when not given")
}

func TestChangePassword(t *testing.T) {
	users := newMemoryUsers()
	admin := users.seed(t, "Admin", "admin@bmvt.sn", "motdepasse", enums.RoleAdmin)
	awa := users.seed(t, "Awa", "awa@bmvt.sn", "motdepasse", enums.RoleAgent)
	moussa := users.seed(t, "Moussa", "moussa@bmvt.sn", "motdepasse", enums.RoleAgent)
	svc := NewUserService(users, zerolog.Nop())
	ctx := context.Background()
	self := Actor{ID: awa.ID, Role: enums.RoleAgent}

	err := svc.ChangePassword(ctx, self, awa.ID, &dto.ChangePasswordRequest{NewPassword: "court"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Nouveau mot de passe invalide (min 8 caractères).")

	err = svc.ChangePassword(ctx, self, moussa.ID, &dto.ChangePasswordRequest{OldPassword: "motdepasse", NewPassword: "nouveaumdp"})
	requireAppError(t, err, apperrors.ErrPermissionDenied, "Accès refusé.")

	err = svc.ChangePassword(ctx, self, awa.ID, &dto.ChangePasswordRequest{NewPassword: "nouveaumdp"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Ancien mot de passe requis.")

	err = svc.ChangePassword(ctx, self, awa.ID, &dto.ChangePasswordRequest{OldPassword: "faux-mdp", NewPassword: "nouveaumdp"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Ancien mot de passe incorrect.")

	require.NoError(t, svc.ChangePassword(ctx, self, awa.ID, &dto.ChangePasswordRequest{OldPassword: "motdepasse", NewPassword: "nouveaumdp"}))
	stored, _ := users.GetByID(ctx, awa.ID)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "nouveaumdp"))

	// Managers reset any password without the old one.
	require.NoError(t, svc.ChangePassword(ctx, Actor{ID: admin.ID, Role: enums.RoleAdmin}, moussa.ID, &dto.ChangePasswordRequest{NewPassword: "reinitialise"}))
	stored, _ = users.GetByID(ctx, moussa.ID)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "reinitialise"))
}

func TestDeleteUserMissing(t *testing.T) {
	svc := NewUserService(newMemoryUsers(), zerolog.Nop())
	err := svc.DeleteUser(context.Background(), 12)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Utilisateur introuvable")
}
