package middleware

import (
	"net/http"
	"net/url"
	"strings"

	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RouteClass is how the gatekeeper treats a path prefix.
type RouteClass int

const (
	// RoutePassThrough is not checked.
	RoutePassThrough RouteClass = iota
	// RoutePublicOnly redirects authenticated users away (login, signup).
	RoutePublicOnly
	// RouteProtectedPage redirects unauthenticated users to the login page.
	RouteProtectedPage
	// RouteProtectedAPI answers unauthenticated requests with JSON 401.
	RouteProtectedAPI
)

// GateRule binds a path prefix to a route class.
type GateRule struct {
	Prefix string
	Class  RouteClass
}

// GatekeeperConfig configures the edge gate.
type GatekeeperConfig struct {
	Rules         []GateRule
	LoginPath     string
	DashboardPath string
	Cookies       CookieNames
}

// DefaultGateRules are the route classes served by this application.
func DefaultGateRules() []GateRule {
	return []GateRule{
		{Prefix: "/login", Class: RoutePublicOnly},
		{Prefix: "/signup", Class: RoutePublicOnly},
		{Prefix: "/dashboard", Class: RouteProtectedPage},
		{Prefix: "/api/auth/me", Class: RouteProtectedAPI},
		{Prefix: "/api/auth/profile", Class: RouteProtectedAPI},
		{Prefix: "/api/auth/change-password", Class: RouteProtectedAPI},
		{Prefix: "/api/auth/dashboard", Class: RouteProtectedAPI},
		{Prefix: "/api/auth/uploads", Class: RouteProtectedAPI},
	}
}

// Classify returns the class of the longest matching prefix. A prefix matches the
// path itself or any path below it.
func (cfg GatekeeperConfig) Classify(path string) RouteClass {
	class, best := RoutePassThrough, -1
	for _, r := range cfg.Rules {
		if len(r.Prefix) <= best {
			continue
		}
		if path == r.Prefix || strings.HasPrefix(path, strings.TrimSuffix(r.Prefix, "/")+"/") {
			class, best = r.Class, len(r.Prefix)
		}
	}
	return class
}

// Gatekeeper runs before routing and enforces the route classes with the same
// authenticator the handlers use, so OAuth sessions and manual tokens are
// treated alike. The resolved principal is left on the request for handlers.
func Gatekeeper(auth portssvc.AuthenticatorSvc, cfg GatekeeperConfig) gin.HandlerFunc {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.DashboardPath == "" {
		cfg.DashboardPath = "/dashboard"
	}
	return func(c *gin.Context) {
		class := cfg.Classify(c.Request.URL.Path)
		if class == RoutePassThrough {
			c.Next()
			return
		}

		_, err := resolvePrincipal(c, auth, cfg.Cookies)
		switch class {
		case RoutePublicOnly:
			if err == nil {
				c.Redirect(http.StatusFound, cfg.DashboardPath)
				c.Abort()
				return
			}
		case RouteProtectedPage:
			if err != nil {
				q := url.Values{}
				q.Set("error", AuthFailureReason(err))
				q.Set("next", c.Request.URL.RequestURI())
				GetLoggerFromCtx(c.Request.Context()).Info("Redirecting unauthenticated page request to login")
				c.Redirect(http.StatusFound, cfg.LoginPath+"?"+q.Encode())
				c.Abort()
				return
			}
		case RouteProtectedAPI:
			if err != nil {
				abortUnauthenticated(c, err)
				return
			}
		}
		c.Next()
	}
}
