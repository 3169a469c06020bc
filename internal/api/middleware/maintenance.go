package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"extmedia/internal/maintenance"

	"github.com/gin-gonic/gin"
)

// Maintenance answers 503 while the site-wide marker is active.
func Maintenance(lock *maintenance.Lock) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lock.Active() {
			c.Next()
			return
		}

		retry := maintenance.Window
		if since, ok := lock.Since(); ok {
			retry = time.Until(since.Add(maintenance.Window))
		}
		seconds := int(math.Ceil(retry.Seconds()))
		if seconds < 1 {
			seconds = 1
		}

		c.Header("Retry-After", strconv.Itoa(seconds))
		abort(c, http.StatusServiceUnavailable, "maintenance", "Briefly unavailable for scheduled maintenance. Check back in a minute.")
	}
}
