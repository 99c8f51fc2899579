package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/SscSPs/inkpress/internal/utils/pagination"
	"github.com/google/uuid"
)

// excerptLength is the rune budget of a generated excerpt.
const excerptLength = 200

// maxSearchHits bounds how many index hits feed one listing.
const maxSearchHits = 500

// contentService implements the blog and post operations. Both kinds share one
// code path; only the category policy differs.
type contentService struct {
	BaseService
	repo     portsrepo.ContentRepositoryFacade
	users    portsrepo.UserReader
	searcher portssvc.ContentSearcher
}

// NewContentService creates the content service. searcher may be nil, in which
// case `q` is matched by the repository.
func NewContentService(repo portsrepo.ContentRepositoryFacade, users portsrepo.UserReader, searcher portssvc.ContentSearcher) portssvc.ContentSvcFacade {
	return &contentService{repo: repo, users: users, searcher: searcher}
}

func kindLabel(kind domain.ContentKind) string {
	if kind == domain.KindPost {
		return "Post"
	}
	return "Blog"
}

func checkKind(kind domain.ContentKind) error {
	if !kind.Valid() {
		return apperrors.NewBadRequestError("unknown content kind: " + string(kind))
	}
	return nil
}

func (s *contentService) ListContent(ctx context.Context, kind domain.ContentKind, params dto.ListContentParams, viewerID string) (*dto.ListContentResponse, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	page := pagination.Normalize(params.Page, params.Limit)

	q := portsrepo.ContentQuery{
		Kind:   kind,
		Tag:    strings.ToLower(strings.TrimSpace(params.Tag)),
		Sort:   portsrepo.SortNewest,
		Offset: page.Offset(),
		Limit:  page.Limit,
	}
	if params.Sort == string(portsrepo.SortPopular) {
		q.Sort = portsrepo.SortPopular
	}
	if c := strings.TrimSpace(params.Category); c != "" {
		if kind == domain.KindBlog {
			c = strings.ToLower(c)
		}
		q.Category = c
	}

	if params.Mine {
		if viewerID == "" {
			return nil, apperrors.NewUnauthorizedError("Sign in to list your own items")
		}
		q.AuthorID = viewerID
		q.Status = domain.ContentStatus(params.Status)
	} else {
		q.Status = domain.StatusPublished
		if author := strings.TrimSpace(params.Author); author != "" {
			authorID, err := s.resolveAuthor(ctx, author)
			if err != nil {
				return nil, err
			}
			q.AuthorID = authorID
		}
	}

	if term := strings.TrimSpace(params.Q); term != "" {
		ids, indexed := s.searchIndex(ctx, kind, term, params.Mine)
		if indexed {
			if len(ids) == 0 {
				return &dto.ListContentResponse{Items: []dto.ContentResponse{}, Page: page.Page, Limit: page.Limit}, nil
			}
			q.IDs = ids
		} else {
			q.Search = term
		}
	}

	items, total, err := s.repo.ListContent(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	return &dto.ListContentResponse{
		Items:      dto.ToContentSummaries(items),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}, nil
}

// resolveAuthor accepts a username or a user id.
func (s *contentService) resolveAuthor(ctx context.Context, author string) (string, error) {
	if s.users == nil {
		return author, nil
	}
	user, err := s.users.FindUserByUsername(ctx, author)
	if err == nil {
		return user.UserID, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return author, nil
	}
	return "", fmt.Errorf("failed to resolve author: %w", err)
}

// searchIndex queries the external index when one is configured. Only published
// items are indexed, so listings of the caller's own items never use it. The
// second return is false when the caller should fall back to repository matching.
func (s *contentService) searchIndex(ctx context.Context, kind domain.ContentKind, term string, mine bool) ([]string, bool) {
	if s.searcher == nil || mine {
		return nil, false
	}
	ids, err := s.searcher.Search(ctx, kind, term, maxSearchHits)
	if err != nil {
		s.LogWarn(ctx, "Search index unavailable, falling back to database search", slog.String("error", err.Error()))
		return nil, false
	}
	return ids, true
}

func (s *contentService) GetContent(ctx context.Context, kind domain.ContentKind, idOrSlug string, viewerID string) (*domain.Content, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	notFound := apperrors.NewNotFoundError(kindLabel(kind) + " not found")

	var (
		c   *domain.Content
		err error
	)
	if _, perr := uuid.Parse(idOrSlug); perr == nil {
		c, err = s.repo.FindContentByID(ctx, kind, idOrSlug)
	} else {
		err = apperrors.ErrNotFound
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		c, err = s.repo.FindContentBySlug(ctx, kind, strings.ToLower(idOrSlug))
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}

	if !c.IsPublished() && c.AuthorID != viewerID {
		return nil, notFound
	}
	return c, nil
}

// applyBody recomputes the derived fields of the body.
func applyBody(c *domain.Content, body string, excerpt *string) {
	c.Body = body
	c.ReadingTime = domain.ReadingTimeMinutes(utils.WordCount(body))
	if excerpt != nil && strings.TrimSpace(*excerpt) != "" {
		c.Excerpt = strings.TrimSpace(*excerpt)
	} else {
		c.Excerpt = utils.Excerpt(body, excerptLength)
	}
}

// ensureSlugFree rejects a slug already used by another item of the same kind.
func (s *contentService) ensureSlugFree(ctx context.Context, kind domain.ContentKind, slug, selfID string) error {
	existing, err := s.repo.FindContentBySlug(ctx, kind, slug)
	if err == nil && existing.ID != selfID {
		return apperrors.NewConflictError(fmt.Sprintf("A %s with this title already exists", strings.ToLower(kindLabel(kind))))
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return nil
}

func slugFor(title string) (string, error) {
	slug := utils.Slugify(title)
	if slug == "" {
		return "", apperrors.NewValidationError("Validation failed", map[string]string{"title": "must contain letters or digits"})
	}
	return slug, nil
}

func normalizeTaxonomy(kind domain.ContentKind, category string, tags []string) (string, []string, error) {
	cat, err := domain.NormalizeCategory(kind, category)
	if err != nil {
		return "", nil, apperrors.NewValidationError("Validation failed", map[string]string{"category": err.Error()})
	}
	normTags := domain.NormalizeTags(tags)
	if len(normTags) > domain.MaxTags {
		return "", nil, apperrors.NewValidationError("Validation failed", map[string]string{"tags": fmt.Sprintf("must contain at most %d items", domain.MaxTags)})
	}
	return cat, normTags, nil
}

func (s *contentService) CreateContent(ctx context.Context, kind domain.ContentKind, req dto.CreateContentRequest, authorID string) (*domain.Content, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	slug, err := slugFor(title)
	if err != nil {
		return nil, err
	}
	category, tags, err := normalizeTaxonomy(kind, req.Category, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, kind, slug, ""); err != nil {
		return nil, err
	}

	status := domain.StatusDraft
	if req.Status != "" {
		status = domain.ContentStatus(req.Status)
	}

	now := s.Now()
	c := domain.Content{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Slug:        slug,
		CoverImage:  strings.TrimSpace(req.CoverImage),
		AuthorID:    authorID,
		Tags:        tags,
		Category:    category,
		Status:      domain.StatusDraft,
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	applyBody(&c, req.Body, &req.Excerpt)
	c.SetStatus(status, now)

	if err := s.repo.SaveContent(ctx, c); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("A %s with this title already exists", strings.ToLower(kindLabel(kind))))
		}
		return nil, fmt.Errorf("failed to save %s: %w", kind, err)
	}

	s.syncIndex(ctx, &c)
	s.LogInfo(ctx, "Content created", slog.String("content_id", c.ID), slog.String("kind", string(kind)), slog.String("status", string(c.Status)))
	return &c, nil
}

// loadOwned returns the item when userID authored it.
func (s *contentService) loadOwned(ctx context.Context, kind domain.ContentKind, id, userID string) (*domain.Content, error) {
	c, err := s.repo.FindContentByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(kindLabel(kind) + " not found")
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if c.AuthorID != userID {
		return nil, apperrors.NewForbiddenError("Only the author can modify this " + strings.ToLower(kindLabel(kind)))
	}
	return c, nil
}

func (s *contentService) UpdateContent(ctx context.Context, kind domain.ContentKind, id string, req dto.UpdateContentRequest, userID string) (*domain.Content, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	c, err := s.loadOwned(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != c.Title {
			slug, err := slugFor(title)
			if err != nil {
				return nil, err
			}
			if slug != c.Slug {
				if err := s.ensureSlugFree(ctx, kind, slug, c.ID); err != nil {
					return nil, err
				}
			}
			c.Title, c.Slug = title, slug
		}
	}

	category, tags := c.Category, c.Tags
	if req.Category != nil {
		category = *req.Category
	}
	if req.Tags != nil {
		tags = *req.Tags
	}
	if req.Category != nil || req.Tags != nil {
		if c.Category, c.Tags, err = normalizeTaxonomy(kind, category, tags); err != nil {
			return nil, err
		}
	}

	switch {
	case req.Body != nil:
		applyBody(c, *req.Body, req.Excerpt)
	case req.Excerpt != nil:
		applyBody(c, c.Body, req.Excerpt)
	}
	if req.CoverImage != nil {
		c.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.Status != nil {
		c.SetStatus(domain.ContentStatus(*req.Status), now)
	}
	c.Touch(now)

	if err := s.repo.UpdateContent(ctx, *c); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("A %s with this title already exists", strings.ToLower(kindLabel(kind))))
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(kindLabel(kind) + " not found")
		}
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}

	s.syncIndex(ctx, c)
	return c, nil
}

func (s *contentService) DeleteContent(ctx context.Context, kind domain.ContentKind, id string, userID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	c, err := s.loadOwned(ctx, kind, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteContent(ctx, kind, c.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(kindLabel(kind) + " not found")
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if s.searcher != nil {
		if err := s.searcher.Remove(ctx, kind, c.ID); err != nil {
			s.LogWarn(ctx, "Failed to remove content from search index", slog.String("content_id", c.ID), slog.String("error", err.Error()))
		}
	}
	s.LogInfo(ctx, "Content deleted", slog.String("content_id", c.ID), slog.String("kind", string(kind)))
	return nil
}

func (s *contentService) RecordView(ctx context.Context, kind domain.ContentKind, id string) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	views, err := s.repo.IncrementViews(ctx, kind, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.NewNotFoundError(kindLabel(kind) + " not found")
		}
		return 0, fmt.Errorf("failed to record view: %w", err)
	}
	return views, nil
}

// syncIndex keeps the search index in step with the item's visibility. Index
// failures are logged; the database stays the source of truth.
func (s *contentService) syncIndex(ctx context.Context, c *domain.Content) {
	if s.searcher == nil {
		return
	}
	var err error
	if c.IsPublished() {
		err = s.searcher.Index(ctx, *c)
	} else {
		err = s.searcher.Remove(ctx, c.Kind, c.ID)
	}
	if err != nil {
		s.LogWarn(ctx, "Failed to sync search index", slog.String("content_id", c.ID), slog.String("error", err.Error()))
	}
}
