package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/gin-gonic/gin"
)

// Only API calls are tracked. Page loads, docs and health checks are noise.
const trackedPrefix = "/api/"

// PosthogMiddleware reports successful authenticated API calls to PostHog. The
// event is named after the route template, e.g. "POST api/blogs" for
// POST /api/blogs, so ids in paths do not explode the event namespace.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || !strings.HasPrefix(c.Request.URL.Path, trackedPrefix) {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest || c.FullPath() == "" {
			return
		}
		principal, ok := GetPrincipalFromContext(c)
		if !ok || principal.UserID() == "" {
			return
		}

		props := map[string]any{
			"status_code":  c.Writer.Status(),
			"session_kind": string(principal.Session.Kind()),
		}
		if kind := contentKindFromRoute(c.FullPath()); kind != "" {
			props["content_kind"] = kind
		}
		if id := c.Param("id"); id != "" {
			props["content_id"] = id
		}
		posthogClient.Enqueue(principal.UserID(), c.Request.Method+" "+strings.TrimPrefix(c.FullPath(), "/"), props)
	}
}

// contentKindFromRoute maps /api/blogs/... and /api/posts/... to their kind.
func contentKindFromRoute(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/blogs"):
		return "blog"
	case strings.HasPrefix(route, "/api/posts"):
		return "post"
	}
	return ""
}

// PosthogEvent sends a custom event on behalf of the authenticated caller.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if !posthogClient.IsInitialized() {
		return
	}
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["path"] = c.Request.URL.Path
	posthogClient.Enqueue(userID, eventName, properties)
}
