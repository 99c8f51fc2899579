package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:              "inkpress",
		JWTSecret:            "test-secret-key-that-is-long-enough",
		JWTExpiryDuration:    time.Hour,
		JWTIssuer:            "inkpress-test",
		ResetTokenExpiry:     15 * time.Minute,
		OAuthSessionDuration: 24 * time.Hour,
		FrontendBaseURL:      "http://localhost:3000",
		ResetPasswordURL:     "http://localhost:3000/reset-password",
	}
}

// --- in-memory user repository ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users       map[string]domain.User
	saves       int
	// beforeWrite runs once ahead of the next profile or password write,
	// between a service's read and its write.
	beforeWrite func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) find(match func(u domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := u
			cp.Accounts = append([]domain.OAuthAccount(nil), u.Accounts...)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.UserID == userID })
}

func (r *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.UserName != nil && *u.UserName == username })
}

func (r *fakeUserRepo) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		a, ok := u.Account(provider)
		return ok && a.ProviderUserID == providerUserID
	})
}

func (r *fakeUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}
	r.users[user.UserID] = user
	r.saves++
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user domain.User) error {
	if hook := r.takeHook(); hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.UserID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.UserName = user.UserName
	stored.Name = user.Name
	stored.Image = user.Image
	stored.EmailVerified = user.EmailVerified
	stored.Accounts = append([]domain.OAuthAccount(nil), user.Accounts...)
	stored.UpdatedAt = user.UpdatedAt
	r.users[user.UserID] = stored
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, expectedVersion int, updatedAt time.Time) error {
	if hook := r.takeHook(); hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.SessionVersion != expectedVersion {
		return apperrors.ErrConcurrentUpdate
	}
	stored.PasswordHash = &passwordHash
	stored.SessionVersion++
	stored.UpdatedAt = updatedAt
	r.users[userID] = stored
	return nil
}

// put overwrites the stored record.
func (r *fakeUserRepo) put(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}

func (r *fakeUserRepo) setBeforeWrite(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeWrite = hook
}

func (r *fakeUserRepo) takeHook() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	hook := r.beforeWrite
	r.beforeWrite = nil
	return hook
}

// --- in-memory oauth session repository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.OAuthSessionRecord
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]domain.OAuthSessionRecord{}}
}

func (r *fakeSessionRepo) SaveSession(ctx context.Context, s domain.OAuthSessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionToken] = s
	return nil
}

func (r *fakeSessionRepo) FindSessionByToken(ctx context.Context, token string) (*domain.OAuthSessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteSessionsForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, k)
		}
	}
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// --- revocation store ---

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Time{}}
}

func (r *fakeRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = until
	return nil
}

func (r *fakeRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// --- in-memory content repository ---

type fakeContentRepo struct {
	mu    sync.Mutex
	items map[string]domain.Content
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: map[string]domain.Content{}}
}

func (r *fakeContentRepo) FindContentByID(ctx context.Context, kind domain.ContentKind, id string) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.Kind != kind {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *fakeContentRepo) FindContentBySlug(ctx context.Context, kind domain.ContentKind, slug string) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Kind == kind && c.Slug == slug {
			cp := c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeContentRepo) ListContent(ctx context.Context, q portsrepo.ContentQuery) ([]domain.Content, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Content
	ids := map[string]bool{}
	for _, id := range q.IDs {
		ids[id] = true
	}
	for _, c := range r.items {
		switch {
		case c.Kind != q.Kind,
			q.AuthorID != "" && c.AuthorID != q.AuthorID,
			q.Status != "" && c.Status != q.Status,
			q.Category != "" && c.Category != q.Category,
			q.Tag != "" && !contains(c.Tags, q.Tag),
			len(q.IDs) > 0 && !ids[c.ID],
			q.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(q.Search)):
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Sort == portsrepo.SortPopular && out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))
	if q.Offset >= len(out) {
		return []domain.Content{}, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[q.Offset:end], total, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r *fakeContentRepo) SaveContent(ctx context.Context, c domain.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Kind == c.Kind && existing.Slug == c.Slug {
			return apperrors.ErrDuplicate
		}
	}
	r.items[c.ID] = c
	return nil
}

func (r *fakeContentRepo) UpdateContent(ctx context.Context, c domain.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.items[c.ID] = c
	return nil
}

func (r *fakeContentRepo) DeleteContent(ctx context.Context, kind domain.ContentKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[id]; !ok || c.Kind != kind {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeContentRepo) IncrementViews(ctx context.Context, kind domain.ContentKind, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.Kind != kind || !c.IsPublished() {
		return 0, apperrors.ErrNotFound
	}
	c.Views++
	r.items[id] = c
	return c.Views, nil
}

func (r *fakeContentRepo) AuthorStats(ctx context.Context, kind domain.ContentKind, authorID string, topN int) (*domain.KindStats, error) {
	items, _, _ := r.ListContent(ctx, portsrepo.ContentQuery{Kind: kind, AuthorID: authorID, Sort: portsrepo.SortPopular})
	stats := &domain.KindStats{Kind: kind}
	for _, c := range items {
		stats.Total++
		stats.TotalViews += c.Views
		if c.IsPublished() {
			stats.Published++
		} else {
			stats.Drafts++
		}
	}
	if len(items) > topN {
		items = items[:topN]
	}
	stats.TopByViews = items
	return stats, nil
}

// --- mocks ---

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Index(ctx context.Context, c domain.Content) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockSearcher) Remove(ctx context.Context, kind domain.ContentKind, id string) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *MockSearcher) Search(ctx context.Context, kind domain.ContentKind, query string, limit int) ([]string, error) {
	args := m.Called(ctx, kind, query, limit)
	var ids []string
	if args.Get(0) != nil {
		ids = args.Get(0).([]string)
	}
	return ids, args.Error(1)
}
