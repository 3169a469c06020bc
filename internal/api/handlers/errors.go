package handlers

import "github.com/gin-gonic/gin"

// respondError writes the REST error body used by every route.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
		"data":    gin.H{"status": status},
	})
}

// pagination reads page and limit query parameters, clamped to sane values.
func pagination(c *gin.Context) (page, limit, offset int) {
	page = queryInt(c, "page", 1)
	limit = queryInt(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}
