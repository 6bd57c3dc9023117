package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessions() *Sessions {
	return NewSessions(&config.SessionConfig{
		Key:        []byte("0123456789abcdef0123456789abcdef"),
		CookieName: "test-session",
	})
}

func TestRequireUserWithoutSession(t *testing.T) {
	auth := &Auth{Sessions: testSessions()}

	called := false
	handler := auth.RequireUser(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/order", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler must not run without a session")
	assert.Contains(t, rec.Body.String(), "error")
}

func TestRequireAdminWithoutSession(t *testing.T) {
	auth := &Auth{Sessions: testSessions()}

	called := false
	handler := auth.RequireAdmin(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestCartOwnerMintsAnonymousSession(t *testing.T) {
	sessions := testSessions()

	rec := httptest.NewRecorder()
	owner, err := sessions.cartOwner(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.NoError(t, err)

	require.NotNil(t, owner.SessionID)
	assert.Nil(t, owner.UserID)
	assert.NotEmpty(t, *owner.SessionID)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"), "anonymous session must be persisted")
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
