package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "X-Admin-Key"

// RequireAdminKey gates the administrative API behind a shared key. When no
// key is configured the admin surface is disabled entirely rather than left
// open.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "msg": "Not found"})
			return
		}
		presented := c.GetHeader(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Invalid admin key"})
			return
		}
		c.Next()
	}
}
