package middleware

import "github.com/gin-gonic/gin"

// abort stops the chain with a REST error body.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"data":    gin.H{"status": status},
	})
}
