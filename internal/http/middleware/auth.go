package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/launchbase/accountd/internal/token"
)

const claimsKey = "tokenClaims"

// TokenVerifier validates a bearer token string.
type TokenVerifier interface {
	VerifyToken(raw string) (*token.Claims, error)
}

// Auth guards routes behind bearer token verification.
type Auth struct {
	Verifier TokenVerifier
}

// RequireToken rejects requests without a valid, unexpired bearer token and
// attaches the decoded claims for downstream handlers.
func (m *Auth) RequireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortUnauthorized(c, "Authorization header required")
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		abortUnauthorized(c, "Bearer token required")
		return
	}

	claims, err := m.Verifier.VerifyToken(parts[1])
	if err != nil {
		abortUnauthorized(c, "Invalid or expired token")
		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

// GetClaims exposes verified token claims to handlers.
func GetClaims(c *gin.Context) (*token.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "msg": msg})
}
