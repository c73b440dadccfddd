package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type roleMap map[string]models.Role

func (m roleMap) Role(_ context.Context, email string) (models.Role, error) {
	if email == "broken@x.com" {
		return "", errors.New("store down")
	}
	if r, ok := m[email]; ok {
		return r, nil
	}
	return models.RoleDonor, nil
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("secret")

	tok, err := v.Sign("a@x.com", time.Hour)
	require.NoError(t, err)
	email, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	expired, err := v.Sign("a@x.com", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	other, err := NewJWTVerifier("other").Sign("a@x.com", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify("garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Email: "a@x.com"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_RequiresEmail(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func newAuthRouter(v Verifier, roles RoleLookup, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(v, roles)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString(KeyEmail), "role": c.GetString(KeyRole)})
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	v := NewJWTVerifier("secret")
	r := newAuthRouter(v, roleMap{"admin@x.com": models.RoleAdmin})

	tok, err := v.Sign("admin@x.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
		body   string
	}{
		{name: "no header", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + tok, want: http.StatusOK, body: `{"email":"admin@x.com","role":"admin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_RoleLookupFailure(t *testing.T) {
	v := NewJWTVerifier("secret")
	r := newAuthRouter(v, roleMap{})

	tok, err := v.Sign("broken@x.com", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRole(t *testing.T) {
	v := NewJWTVerifier("secret")
	r := newAuthRouter(v, roleMap{"admin@x.com": models.RoleAdmin}, RequireRole(models.RoleAdmin))

	for email, want := range map[string]int{"admin@x.com": http.StatusOK, "donor@x.com": http.StatusForbidden} {
		tok, err := v.Sign(email, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, email)
	}
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}
