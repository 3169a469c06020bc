package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"extmedia/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 REST error and logs the route it came from. A panic
// caused by the client dropping the connection is not logged and gets no body.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok && brokenConnection(err) {
			c.Abort()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		if gin.IsDebugging() {
			logger.Error("[Recovery] panic in %s %s:\n%s\n%v\n%s",
				c.Request.Method, route, dumpRequest(c.Request), recovered, string(debug.Stack()))
		} else {
			logger.Error("[Recovery] panic in %s %s from %s: %v", c.Request.Method, route, c.ClientIP(), recovered)
		}
		abort(c, http.StatusInternalServerError, "internal_error", "The server encountered an unexpected error.")
	})
}

func brokenConnection(err error) bool {
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}

// dumpRequest renders the request head with credentials masked.
func dumpRequest(r *http.Request) string {
	clone := r.Clone(r.Context())
	if clone.Header.Get("Authorization") != "" {
		clone.Header.Set("Authorization", "[redacted]")
	}
	dump, _ := httputil.DumpRequest(clone, false)
	return string(dump)
}
