package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", TokenExp: time.Hour})
	m := NewAuthMiddleware(jwtSvc, "token")

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(enums.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/guarded", m.RoleRequired(enums.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtSvc
}

func TestJWTAuthMissingToken(t *testing.T) {
	r, _ := newAuthRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token manquant", decodeMessage(t, rec))
}

func TestJWTAuthInvalidToken(t *testing.T) {
	r, _ := newAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token invalide ou expiré", decodeMessage(t, rec))
}

func TestJWTAuthTokenSources(t *testing.T) {
	r, jwtSvc := newAuthRouter(t)
	token, err := jwtSvc.GenerateToken(&models.User{ID: 7, Email: "a@b.sn", Role: enums.RoleAgent})
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) },
		"header": func(r *http.Request) { r.Header.Set("x-access-token", token) },
		"query":  func(r *http.Request) { r.URL.RawQuery = "token=" + token },
	}
	for name, apply := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			apply(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":7,"role":"Agent"}`, rec.Body.String())
		})
	}
}

func TestRoleRequired(t *testing.T) {
	r, jwtSvc := newAuthRouter(t)
	agent, _ := jwtSvc.GenerateToken(&models.User{ID: 1, Email: "a@b.sn", Role: enums.RoleAgent})
	admin, _ := jwtSvc.GenerateToken(&models.User{ID: 2, Email: "c@d.sn", Role: enums.RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+agent)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Accès refusé : rôle non autorisé", decodeMessage(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Non authentifié", decodeMessage(t, rec))
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperrors.NewBadRequestError("Champs requis manquants"), 400, "Champs requis manquants"},
		{apperrors.NewResourceNotFoundError("Vol introuvable"), 404, "Vol introuvable"},
		{db.ErrNotFound, 404, "Introuvable"},
		{apperrors.NewConflictError("Siège 12A déjà attribué."), 409, "Siège 12A déjà attribué."},
		{apperrors.NewForbiddenError("Accès refusé."), 403, "Accès refusé."},
		{apperrors.NewUnauthorizedError("Identifiants invalides"), 401, "Identifiants invalides"},
		{errors.New("boom"), 500, "Erreur serveur"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)
		HandleAPIError(c, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.message)
		assert.Equal(t, tc.message, decodeMessage(t, rec))
	}
}

func TestHandleAPIErrorRejectedValues(t *testing.T) {
	for _, code := range []string{"22001", "22003", "22P02", "23514"} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/paiements", nil)
		HandleAPIError(c, &db.DatabaseError{Op: "execute", Err: &pgconn.PgError{Code: code}})

		assert.Equal(t, http.StatusBadRequest, rec.Code, code)
		assert.Equal(t, "Valeur invalide ou trop longue.", decodeMessage(t, rec))
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/paiements", nil)
	HandleAPIError(c, &db.DatabaseError{Op: "execute", Err: &pgconn.PgError{Code: "57014"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleAPIErrorDetailOutsideRelease(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)
	HandleAPIError(c, errors.New("connection refused"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "connection refused", body["detail"])
}

func TestNotFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFound())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route introuvable", decodeMessage(t, rec))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Erreur serveur", decodeMessage(t, rec))
}

func TestOriginAllowed(t *testing.T) {
	origins := []string{"http://localhost:5173", "https://*.vercel.app"}
	assert.True(t, OriginAllowed(origins, "http://localhost:5173"))
	assert.True(t, OriginAllowed(origins, "https://bmvt-front.vercel.app"))
	assert.False(t, OriginAllowed(origins, "https://evil.example.com"))
	assert.False(t, OriginAllowed(origins, "http://bmvt.vercel.app"))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://*.vercel.app"}))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/x", nil)
	req.Header.Set("Origin", "https://app.vercel.app")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.vercel.app", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}
