package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"procurement/internal/identity"
	"procurement/pkg/apperr"
	"procurement/pkg/problem"
)

const identityKey = "identity"

// Authenticator validates externally issued bearer tokens and attaches
// the resolved caller identity to the request context. The signing
// secret is injected explicitly; nothing is read from the environment.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, err := a.resolve(c)
		if err != nil || !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Optional resolves the caller when a token is present and lets
// anonymous requests through. An invalid token is still rejected.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, err := a.resolve(c)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if ok {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

// RequireRole allows the request through when the caller holds any of
// the given roles. Must run after Require.
func (a *Authenticator) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Caller(c)
		for _, role := range roles {
			if id.HasRole(role) {
				c.Next()
				return
			}
		}
		problem.AbortError(c, apperr.UserNotAllowed.New("Access denied", http.StatusForbidden))
	}
}

// resolve returns (identity, tokenPresent, error). A missing token is
// not an error; a malformed or invalid one is.
func (a *Authenticator) resolve(c *gin.Context) (identity.Identity, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return identity.Identity{}, false, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return identity.Identity{}, false, jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, false, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, false, jwt.ErrTokenInvalidClaims
	}

	return identity.FromClaims(claims), true, nil
}

// Caller returns the resolved identity, anonymous when absent.
func Caller(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(identity.Identity); ok {
			return id
		}
	}
	return identity.Identity{}
}

// TraceID assigns a trace id to every request for problem responses
// and log correlation.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(problem.TraceIDKey, uuid.NewString())
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("trace_id", problem.TraceID(c)),
		)
	}
}
