package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UnsupportedBrowserPath = "/thefutureishere"

// markers identify Internet Explorer user agents.
var markers = []string{"MSIE ", "Trident/"}

func unsupported(userAgent string) bool {
	for _, m := range markers {
		if strings.Contains(userAgent, m) {
			return true
		}
	}
	return false
}

// UnsupportedBrowser sends old browsers to the notice page. Health checks
// and static assets pass through.
func UnsupportedBrowser() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == UnsupportedBrowserPath || path == "/health" || path == "/healthz" || strings.HasPrefix(path, "/static/") {
			c.Next()
			return
		}
		if unsupported(c.GetHeader("User-Agent")) {
			c.Redirect(http.StatusFound, UnsupportedBrowserPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
