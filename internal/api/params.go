package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/middleware"
)

// pathID parses the :id segment. Anything that is not a positive integer
// cannot name a row, so callers answer 404.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// absoluteURL resolves a site-relative media URL against the request host.
func absoluteURL(c *gin.Context, u string) string {
	if u == "" || !strings.HasPrefix(u, "/") {
		return u
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + u
}
