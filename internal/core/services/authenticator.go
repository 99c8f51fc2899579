package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
)

// authenticator is the one place request credentials become a user.
type authenticator struct {
	BaseService
	tokens      portssvc.TokenSvcFacade
	users       portsrepo.UserReader
	sessions    portsrepo.OAuthSessionRepository
	revocations portsrepo.TokenRevocationStore
}

// NewAuthenticator creates the shared authorizer. revocations may be nil, in which
// case logged-out tokens stay valid until they expire.
func NewAuthenticator(
	tokens portssvc.TokenSvcFacade,
	users portsrepo.UserReader,
	sessions portsrepo.OAuthSessionRepository,
	revocations portsrepo.TokenRevocationStore,
) portssvc.AuthenticatorSvc {
	return &authenticator{tokens: tokens, users: users, sessions: sessions, revocations: revocations}
}

func (a *authenticator) ResolveSession(ctx context.Context, creds portssvc.Credentials) (domain.Session, error) {
	if creds.ManualToken != "" {
		return a.resolveManual(ctx, creds.ManualToken)
	}
	if creds.OAuthSessionToken != "" {
		return a.resolveOAuth(ctx, creds.OAuthSessionToken)
	}
	return nil, apperrors.ErrUnauthorized
}

func (a *authenticator) resolveManual(ctx context.Context, token string) (domain.Session, error) {
	sess, err := a.tokens.ParseSessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if a.revocations != nil && sess.TokenID != "" {
		revoked, err := a.revocations.IsRevoked(ctx, sess.TokenID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}
	return sess, nil
}

func (a *authenticator) resolveOAuth(ctx context.Context, token string) (domain.Session, error) {
	rec, err := a.sessions.FindSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown oauth session", apperrors.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("failed to load oauth session: %w", err)
	}
	if rec.Expired(a.Now()) {
		return nil, apperrors.ErrSessionExpired
	}
	return &domain.OAuthSession{Record: *rec}, nil
}

func (a *authenticator) Authenticate(ctx context.Context, creds portssvc.Credentials) (*domain.Principal, error) {
	sess, err := a.ResolveSession(ctx, creds)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindUserByID(ctx, sess.SubjectID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.LogWarn(ctx, "Session resolved to a user that does not exist",
				slog.String("user_id", sess.SubjectID()),
				slog.String("session_kind", string(sess.Kind())))
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	if ms, ok := sess.(*domain.ManualSession); ok && ms.Version != user.SessionVersion {
		a.LogInfo(ctx, "Rejected session token issued before a password change",
			slog.String("user_id", user.UserID))
		return nil, apperrors.ErrTokenRevoked
	}

	return &domain.Principal{Session: sess, User: user}, nil
}
