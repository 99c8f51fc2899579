package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both storage adapters (mongodb, pgsql) build one.
type RepositoryProvider struct {
	UserRepo         UserRepositoryFacade
	ContentRepo      ContentRepositoryFacade
	OAuthSessionRepo OAuthSessionRepository
}
