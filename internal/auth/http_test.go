package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/domain"
)

type mapDirectory struct {
	users map[string]domain.User
	err   error
}

func (d mapDirectory) Lookup(_ context.Context, userID string) (domain.User, error) {
	if d.err != nil {
		return domain.User{}, d.err
	}
	user, ok := d.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func newRouter(dir Directory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(dir))
	router.GET("/whoami", func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"signedIn": ok, "userId": p.UserID, "role": p.Role})
	})
	return router
}

func TestMiddleware(t *testing.T) {
	dir := mapDirectory{users: map[string]domain.User{
		"u1": {ID: "u1", Role: domain.RoleStudent},
	}}

	t.Run("known user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(HeaderUserID, "u1")
		newRouter(dir).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"signedIn":true,"userId":"u1","role":"student"}`, rr.Body.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter(dir).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"signedIn":false,"userId":"","role":""}`, rr.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(HeaderUserID, "ghost")
		newRouter(dir).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("directory failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(HeaderUserID, "u1")
		newRouter(mapDirectory{err: errors.New("db down")}).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
