package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

// Keys set on the gin context by AuthMiddleware.
const (
	KeyEmail = "email"
	KeyRole  = "role"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier turns a bearer token into the caller's verified email.
type Verifier interface {
	Verify(token string) (string, error)
}

// RoleLookup resolves the stored role of a verified caller.
type RoleLookup interface {
	Role(ctx context.Context, email string) (models.Role, error)
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Sign issues a token for email. The frontend's identity provider normally
// does this; it is kept for tooling and tests.
func (v *JWTVerifier) Sign(email string, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		email = strings.TrimSpace(c.Subject)
	}
	if email == "" {
		return "", fmt.Errorf("%w: token has no email", ErrUnauthorized)
	}
	return email, nil
}

// AuthMiddleware requires a valid bearer token and stores the caller's email
// and role on the context. Roles come from the user store, not the token.
func AuthMiddleware(verifier Verifier, roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		email, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := models.RoleDonor
		if roles != nil {
			role, err = roles.Role(c.Request.Context(), email)
			if err != nil {
				slog.Error("role lookup failed", "email", email, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not resolve role"})
				return
			}
		}

		c.Set(KeyEmail, email)
		c.Set(KeyRole, string(role))
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(KeyRole)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
