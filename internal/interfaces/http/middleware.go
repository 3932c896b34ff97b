package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the client's API key
const APIKeyHeader = "x-api-key"

const errInvalidCredentials = "Could not validate credentials"

// APIKeyAuth rejects requests whose x-api-key does not match key. An empty
// key rejects everything.
func APIKeyAuth(key string) gin.HandlerFunc {
	expected := []byte(key)

	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(APIKeyHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   errInvalidCredentials,
			})
			return
		}
		c.Next()
	}
}

// corsMiddleware allows browser clients on other origins to call the API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+APIKeyHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
