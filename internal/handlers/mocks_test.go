package handlers_test

import (
	"context"
	"io"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock Authenticator ---
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) ResolveSession(ctx context.Context, creds portssvc.Credentials) (domain.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, creds portssvc.Credentials) (*domain.Principal, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

var _ portssvc.AuthenticatorSvc = (*MockAuthenticator)(nil)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *dto.IssuedToken, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*dto.IssuedToken), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, principal *domain.Principal) error {
	return m.Called(ctx, principal).Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, principal *domain.Principal, req dto.ChangePasswordRequest) error {
	return m.Called(ctx, principal, req).Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

// --- Mock GoogleOAuthService ---
type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockGoogleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGoogleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return m.Called(ctx, state).String(0)
}

func (m *MockGoogleOAuthService) LoginWithCode(ctx context.Context, code string) (*domain.User, *domain.OAuthSessionRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.OAuthSessionRecord), args.Error(2)
}

func (m *MockGoogleOAuthService) CompleteLogin(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, *domain.OAuthSessionRecord, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.OAuthSessionRecord), args.Error(2)
}

var _ portssvc.GoogleOAuthSvcFacade = (*MockGoogleOAuthService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock ContentService ---
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) ListContent(ctx context.Context, kind domain.ContentKind, params dto.ListContentParams, viewerID string) (*dto.ListContentResponse, error) {
	args := m.Called(ctx, kind, params, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListContentResponse), args.Error(1)
}

func (m *MockContentService) GetContent(ctx context.Context, kind domain.ContentKind, idOrSlug string, viewerID string) (*domain.Content, error) {
	args := m.Called(ctx, kind, idOrSlug, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) CreateContent(ctx context.Context, kind domain.ContentKind, req dto.CreateContentRequest, authorID string) (*domain.Content, error) {
	args := m.Called(ctx, kind, req, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) UpdateContent(ctx context.Context, kind domain.ContentKind, id string, req dto.UpdateContentRequest, userID string) (*domain.Content, error) {
	args := m.Called(ctx, kind, id, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) DeleteContent(ctx context.Context, kind domain.ContentKind, id string, userID string) error {
	return m.Called(ctx, kind, id, userID).Error(0)
}

func (m *MockContentService) RecordView(ctx context.Context, kind domain.ContentKind, id string) (int64, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.ContentSvcFacade = (*MockContentService)(nil)

// --- Mock DashboardService ---
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetStats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

var _ portssvc.DashboardSvc = (*MockDashboardService)(nil)

// --- Mock UploadService ---
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockUploadService) UploadImage(ctx context.Context, userID string, filename string, contentType string, size int64, r io.Reader) (*dto.UploadResponse, error) {
	args := m.Called(ctx, userID, filename, contentType, size, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

var _ portssvc.UploadSvc = (*MockUploadService)(nil)
