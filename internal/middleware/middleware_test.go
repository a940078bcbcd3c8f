package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *identity.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c).String(), "role": GetUserRole(c)})
	})
	r.GET("/admin", AuthMiddleware(tokens), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := identity.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)
	userID := uuid.New()

	token, err := tokens.Generate(userID, model.RoleCustomer)
	require.NoError(t, err)

	w := do(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["id"])
	assert.Equal(t, model.RoleCustomer, body["role"])

	w = do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var errBody apperror.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "Unauthorized", errBody.Message)

	other := identity.NewTokenManager("other", time.Hour)
	forged, err := other.Generate(userID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", forged).Code)
}

func TestAdminOnly(t *testing.T) {
	tokens := identity.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)

	customer, err := tokens.Generate(uuid.New(), model.RoleCustomer)
	require.NoError(t, err)
	admin, err := tokens.Generate(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", customer).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", admin).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, "/ok", "")
	assert.Contains(t, logs.String(), `"level":"INFO"`)
	assert.Contains(t, logs.String(), `"path":"/ok"`)

	logs.Reset()
	do(r, "/missing", "")
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), `"status":404`)
}
