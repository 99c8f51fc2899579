package handlers

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed pages/*.html
var pageFiles embed.FS

// registerPageRoutes serves the HTML shells. Access rules for these paths are
// enforced by the gatekeeper before routing.
func registerPageRoutes(r *gin.Engine) {
	r.GET("/login", servePage("pages/login.html"))
	r.GET("/signup", servePage("pages/signup.html"))
	r.GET("/dashboard", servePage("pages/dashboard.html"))
}

func servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := pageFiles.ReadFile(name)
		if err != nil {
			c.String(http.StatusNotFound, "page not found")
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	}
}
