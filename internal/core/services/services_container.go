package services

import (
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/platform/config"
)

// Infrastructure carries the optional adapters the services use. Nil members
// disable the corresponding feature.
type Infrastructure struct {
	Revocations portsrepo.TokenRevocationStore
	Mailer      portssvc.Mailer
	Searcher    portssvc.ContentSearcher
	Storage     portssvc.ObjectStorage
	Verifier    portssvc.IdentityVerifier
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, infra Infrastructure) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.Authenticator = NewAuthenticator(container.Token, repos.UserRepo, repos.OAuthSessionRepo, infra.Revocations)
	container.Auth = NewAuthService(cfg, repos.UserRepo, repos.OAuthSessionRepo, infra.Revocations, container.Token, infra.Mailer)

	verifier := infra.Verifier
	if verifier == nil {
		verifier = NewGoogleIDTokenVerifier(cfg.GoogleClientID)
	}
	container.GoogleOAuth = NewGoogleOAuthService(cfg, verifier, repos.UserRepo, repos.OAuthSessionRepo)

	container.User = NewUserService(repos.UserRepo)
	container.Content = NewContentService(repos.ContentRepo, repos.UserRepo, infra.Searcher)
	container.Dashboard = NewDashboardService(repos.ContentRepo)
	container.Upload = NewUploadService(infra.Storage)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.TokenSvcFacade       = (*tokenService)(nil)
	_ portssvc.AuthenticatorSvc     = (*authenticator)(nil)
	_ portssvc.AuthSvcFacade        = (*authService)(nil)
	_ portssvc.GoogleOAuthSvcFacade = (*googleOAuthService)(nil)
	_ portssvc.UserSvcFacade        = (*userService)(nil)
	_ portssvc.ContentSvcFacade     = (*contentService)(nil)
	_ portssvc.DashboardSvc         = (*dashboardService)(nil)
	_ portssvc.UploadSvc            = (*uploadService)(nil)
)
