package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/inkpress/cmd/docs"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the optional collaborators of the HTTP layer. A nil field
// disables the corresponding feature.
type Dependencies struct {
	// AuthLimiter throttles the credential endpoints (signup, login, password reset).
	AuthLimiter *limiter.Limiter
	Posthog     *utils.PosthogClientWrapper
	// HealthCheck, when set, is run by GET /health. It pings the database when ENABLE_DB_CHECK is on.
	HealthCheck func(ctx context.Context) error
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// Engine level middleware registered before this call (logging, recovery, CORS) runs first.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps Dependencies,
) {
	names := cookieNames(cfg)

	// The gatekeeper must be installed before any route so it sees every request.
	r.Use(middleware.Gatekeeper(services.Authenticator, middleware.GatekeeperConfig{
		Rules:   middleware.DefaultGateRules(),
		Cookies: names,
	}))
	r.Use(middleware.PosthogMiddleware(deps.Posthog))

	r.GET("/health", healthHandler(deps.HealthCheck))

	registerPageRoutes(r)
	setupAPIRoutes(r, cfg, services, deps)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIRoutes configures the /api group and delegates to specific entity route registrations.
func setupAPIRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps Dependencies,
) {
	names := cookieNames(cfg)
	requireAuth := middleware.AuthMiddleware(services.Authenticator, names)
	optionalAuth := middleware.OptionalAuthMiddleware(services.Authenticator, names)
	limited := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		limited = middleware.RateLimit(deps.AuthLimiter)
	}
	cookies := newCookieManager(cfg)

	api := r.Group("/api")

	auth := api.Group("/auth")
	registerAuthRoutes(auth, services.Auth, cookies, requireAuth, optionalAuth, limited)
	registerGoogleOAuthRoutes(auth, services.GoogleOAuth, cookies)

	account := auth.Group("", requireAuth)
	registerUserRoutes(account, services.User)
	registerDashboardRoutes(account, services.Dashboard)
	registerUploadRoutes(account, services.Upload)

	registerContentRoutes(api.Group("/blogs"), domain.KindBlog, services.Content, deps.Posthog, requireAuth, optionalAuth)
	registerContentRoutes(api.Group("/posts"), domain.KindPost, services.Content, deps.Posthog, requireAuth, optionalAuth)
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				middleware.GetLoggerFromCtx(ctx).Error("Health check failed", slog.String("error", err.Error()))
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
