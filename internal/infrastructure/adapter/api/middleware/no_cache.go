package middleware

import "github.com/gin-gonic/gin"

// NoCache marks every response as uncacheable
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Expires", "0")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
