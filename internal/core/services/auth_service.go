package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/SscSPs/inkpress/internal/platform/emailtmpl"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/google/uuid"
)

// authService implements signup, login and the password flows.
type authService struct {
	BaseService
	cfg         *config.Config
	users       portsrepo.UserRepositoryFacade
	sessions    portsrepo.OAuthSessionRepository
	revocations portsrepo.TokenRevocationStore
	tokens      portssvc.TokenSvcFacade
	mailer      portssvc.Mailer
}

// NewAuthService creates a new auth service. revocations and mailer may be nil.
func NewAuthService(
	cfg *config.Config,
	users portsrepo.UserRepositoryFacade,
	sessions portsrepo.OAuthSessionRepository,
	revocations portsrepo.TokenRevocationStore,
	tokens portssvc.TokenSvcFacade,
	mailer portssvc.Mailer,
) portssvc.AuthSvcFacade {
	return &authService{
		cfg:         cfg,
		users:       users,
		sessions:    sessions,
		revocations: revocations,
		tokens:      tokens,
		mailer:      mailer,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	logger := s.GetLogger(ctx).With(slog.String("email", email))

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("An account with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	var userName *string
	if name := strings.TrimSpace(req.UserName); name != "" {
		if _, err := s.users.FindUserByUsername(ctx, name); err == nil {
			return nil, apperrors.NewConflictError("This username is already taken")
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check existing username: %w", err)
		}
		userName = &name
	}

	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.Name)
	if displayName == "" {
		if userName != nil {
			displayName = *userName
		} else {
			displayName = strings.SplitN(email, "@", 2)[0]
		}
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		UserName:     userName,
		Name:         displayName,
		PasswordHash: &hash,
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("An account with this email or username already exists")
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User signed up", slog.String("user_id", user.UserID))
	s.sendEmail(ctx, emailtmpl.Welcome, emailtmpl.Data{
		Name:      user.Name,
		Email:     user.Email,
		ActionURL: s.cfg.FrontendBaseURL + "/dashboard",
	})
	return &user, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *dto.IssuedToken, error) {
	email := normalizeEmail(req.Email)
	invalid := apperrors.NewAppError(http.StatusUnauthorized, "Invalid email or password", apperrors.ErrInvalidCredentials)

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.BurnPasswordCheck(req.Password)
			return nil, nil, invalid
		}
		return nil, nil, fmt.Errorf("failed to load user for login: %w", err)
	}

	if !user.HasPassword() {
		s.LogInfo(ctx, "Password login attempted on OAuth-only account", slog.String("user_id", user.UserID))
		return nil, nil, apperrors.NewAppError(http.StatusUnauthorized,
			"This account uses Google sign-in. Sign in with Google or reset your password.",
			apperrors.ErrInvalidCredentials)
	}
	if !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, nil, invalid
	}

	token, err := s.tokens.IssueSessionToken(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, principal *domain.Principal) error {
	if principal == nil || principal.Session == nil {
		return nil
	}
	switch sess := principal.Session.(type) {
	case *domain.ManualSession:
		if s.revocations == nil || sess.TokenID == "" {
			return nil
		}
		if err := s.revocations.Revoke(ctx, sess.TokenID, sess.Expiry); err != nil {
			return fmt.Errorf("failed to revoke session token: %w", err)
		}
	case *domain.OAuthSession:
		if err := s.sessions.DeleteSession(ctx, sess.Record.SessionToken); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to delete oauth session: %w", err)
		}
	}
	s.LogInfo(ctx, "User logged out", slog.String("session_kind", string(principal.Session.Kind())))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, principal *domain.Principal, req dto.ChangePasswordRequest) error {
	if principal == nil || principal.User == nil {
		return apperrors.ErrUnauthorized
	}
	// Reload so a concurrent change is not overwritten with a stale version.
	user, err := s.users.FindUserByID(ctx, principal.User.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.HasPassword() {
		if req.CurrentPassword == "" {
			return apperrors.NewValidationError("Validation failed", map[string]string{"currentPassword": "is required"})
		}
		if !utils.CheckPasswordHash(req.CurrentPassword, *user.PasswordHash) {
			return apperrors.NewAppError(http.StatusUnauthorized, "Current password is incorrect", apperrors.ErrInvalidCredentials)
		}
		if req.CurrentPassword == req.NewPassword {
			return apperrors.NewValidationError("Validation failed", map[string]string{"newPassword": "must differ from the current password"})
		}
	}

	if err := s.setPassword(ctx, user, "newPassword", req.NewPassword); err != nil {
		return err
	}
	s.LogInfo(ctx, "Password changed; existing sessions revoked", slog.String("user_id", user.UserID))
	return nil
}

// setPassword stores the new hash, bumps the session version and drops OAuth sessions.
// The write only lands if the version is still the one user was loaded with.
func (s *authService) setPassword(ctx context.Context, user *domain.User, field, password string) error {
	hash, err := hashPassword(field, password)
	if err != nil {
		return err
	}
	expected := user.SessionVersion
	user.SetPassword(hash)
	user.Touch(s.Now())
	if err := s.users.UpdatePassword(ctx, user.UserID, hash, expected, user.UpdatedAt); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentUpdate) {
			return apperrors.NewAppError(http.StatusConflict, "Password was changed by another request", err)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.sessions.DeleteSessionsForUser(ctx, user.UserID); err != nil {
		return fmt.Errorf("failed to revoke oauth sessions: %w", err)
	}
	s.sendEmail(ctx, emailtmpl.PasswordChanged, emailtmpl.Data{
		Name:  user.Name,
		Email: user.Email,
		Time:  s.Now().Format("2006-01-02 15:04 MST"),
	})
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogInfo(ctx, "Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load user for password reset: %w", err)
	}

	token, err := s.tokens.IssuePasswordResetToken(ctx, user)
	if err != nil {
		return err
	}

	resetURL, err := url.Parse(s.cfg.ResetPasswordURL)
	if err != nil {
		return fmt.Errorf("invalid reset password url: %w", err)
	}
	q := resetURL.Query()
	q.Set("token", token.Token)
	resetURL.RawQuery = q.Encode()

	s.sendEmail(ctx, emailtmpl.PasswordReset, emailtmpl.Data{
		Name:      user.Name,
		Email:     user.Email,
		ActionURL: resetURL.String(),
		ExpiresIn: emailtmpl.HumanDuration(s.cfg.ResetTokenExpiry),
	})
	s.LogInfo(ctx, "Password reset email queued", slog.String("user_id", user.UserID))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	userID, version, err := s.tokens.ParsePasswordResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user for password reset: %w", err)
	}
	// The version moves on every password change, so a used token no longer matches.
	if version != user.SessionVersion {
		return fmt.Errorf("%w: reset link already used", apperrors.ErrTokenRevoked)
	}

	if err := s.setPassword(ctx, user, "password", req.Password); err != nil {
		return err
	}
	s.LogInfo(ctx, "Password reset completed", slog.String("user_id", user.UserID))
	return nil
}

// sendEmail renders and hands an email to the mailer. Failures are logged, never returned.
func (s *authService) sendEmail(ctx context.Context, name string, data emailtmpl.Data) {
	if s.mailer == nil {
		return
	}
	data.AppName = s.cfg.AppName
	msg, err := emailtmpl.Message(name, data)
	if err != nil {
		s.LogError(ctx, err, "Failed to render email", slog.String("template", name))
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.LogError(ctx, err, "Failed to send email", slog.String("template", name))
	}
}

// hashPassword reports bcrypt's length limit as a field error on field.
func hashPassword(field, password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("Validation failed", map[string]string{field: "must be at most 72 bytes"})
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}
