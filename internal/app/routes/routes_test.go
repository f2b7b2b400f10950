package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/controllers"
	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/middleware"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listOnlyUsers struct {
	users []models.User
}

func (s *listOnlyUsers) ListUsers(context.Context, string) ([]models.User, error) {
	return s.users, nil
}

func (s *listOnlyUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("Utilisateur introuvable")
}

func (s *listOnlyUsers) CreateUser(context.Context, *dto.RegisterRequest) (*models.User, error) {
	return nil, apperrors.ErrBadRequest
}

func (s *listOnlyUsers) UpdateUser(context.Context, int64, *dto.UpdateUserRequest) (*models.User, error) {
	return nil, apperrors.ErrBadRequest
}

func (s *listOnlyUsers) ChangePassword(context.Context, services.Actor, int64, *dto.ChangePasswordRequest) error {
	return nil
}

func (s *listOnlyUsers) DeleteUser(context.Context, int64) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", TokenExp: time.Hour, TokenIssuer: "bmvt"})
	users := &listOnlyUsers{users: []models.User{
		{ID: 1, Name: "Admin", Email: "admin@bmvt.local", Role: enums.RoleAdmin},
		{ID: 2, Name: "Agent", Email: "agent@bmvt.local", Role: enums.RoleAgent},
	}}

	r := gin.New()
	SetupRouter(r, Controllers{User: controllers.NewUserController(users)},
		middleware.NewAuthMiddleware(jwtSvc, "token"), nil)
	r.NoRoute(middleware.NotFound())
	return r, jwtSvc
}

func bearer(t *testing.T, jwtSvc *auth.JWTService, id int64, role enums.RoleType) string {
	t.Helper()
	token, err := jwtSvc.GenerateToken(&models.User{ID: id, Email: "u@bmvt.local", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUsersRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token manquant")
}

func TestUsersListForAgent(t *testing.T) {
	r, jwtSvc := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/api/users", bearer(t, jwtSvc, 2, enums.RoleAgent))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []map[string]any `json:"items"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Total)
	assert.Len(t, body.Items, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUsersCreateRequiresAdmin(t *testing.T) {
	r, jwtSvc := newTestRouter(t)

	rec := serve(r, http.MethodPost, "/api/users", bearer(t, jwtSvc, 2, enums.RoleAgent))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Accès refusé : rôle non autorisé")

	rec = serve(r, http.MethodDelete, "/api/users/2", bearer(t, jwtSvc, 3, enums.RoleSuperviseur))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersGetByIDInvalid(t *testing.T) {
	r, jwtSvc := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/api/users/abc", bearer(t, jwtSvc, 1, enums.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodGet, "/api/users/99", bearer(t, jwtSvc, 1, enums.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Utilisateur introuvable")
}

func TestUnknownRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route introuvable")

	rec = serve(r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Not found"))
}
