package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxContentRepository struct {
	BaseRepository
}

func newPgxContentRepository(db *pgxpool.Pool) portsrepo.ContentRepositoryFacade {
	return &PgxContentRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ContentRepositoryFacade = (*PgxContentRepository)(nil)

const contentColumns = `content_id, kind, title, slug, body, excerpt, cover_image, author_id,
	tags, category, status, views, reading_time, published_at, created_at, updated_at`

// summaryColumns selects every column but blanks the body.
const summaryColumns = `content_id, kind, title, slug, '' AS body, excerpt, cover_image, author_id,
	tags, category, status, views, reading_time, published_at, created_at, updated_at`

func (r *PgxContentRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Content, error) {
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Content])
	if err != nil {
		return nil, fmt.Errorf("failed to scan content rows: %w", err)
	}
	return models.ToDomainContentSlice(ms), nil
}

func (r *PgxContentRepository) findOne(ctx context.Context, kind domain.ContentKind, column, value string) (*domain.Content, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE kind = $1 AND `+column+` = $2;`,
		string(kind), value)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", kind, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Content])
	if err != nil {
		return nil, mapFindError(fmt.Sprintf("failed to scan %s", kind), err)
	}
	c := m.ToDomain()
	return &c, nil
}

func (r *PgxContentRepository) FindContentByID(ctx context.Context, kind domain.ContentKind, id string) (*domain.Content, error) {
	return r.findOne(ctx, kind, "content_id", id)
}

func (r *PgxContentRepository) FindContentBySlug(ctx context.Context, kind domain.ContentKind, slug string) (*domain.Content, error) {
	return r.findOne(ctx, kind, "slug", slug)
}

// whereClause renders the filters of q as a WHERE expression with positional
// arguments. Each "?" in a condition consumes the next argument.
func whereClause(q portsrepo.ContentQuery) (string, []any) {
	conds := []string{"kind = $1"}
	args := []any{string(q.Kind)}
	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		conds = append(conds, cond)
	}

	if q.AuthorID != "" {
		add("author_id = ?", q.AuthorID)
	}
	if q.Status != "" {
		add("status = ?", string(q.Status))
	}
	if q.Tag != "" {
		add("? = ANY(tags)", strings.ToLower(q.Tag))
	}
	if q.Category != "" {
		add("LOWER(category) = LOWER(?)", q.Category)
	}
	if q.IDs != nil {
		add("content_id = ANY(?)", q.IDs)
	}
	if q.Search != "" {
		pattern := containsPattern(q.Search)
		add("(title ILIKE ? OR excerpt ILIKE ? OR ? = ANY(tags))", pattern, pattern, strings.ToLower(q.Search))
	}
	return strings.Join(conds, " AND "), args
}

func orderBy(s portsrepo.ContentSort) string {
	if s == portsrepo.SortPopular {
		return "views DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (r *PgxContentRepository) ListContent(ctx context.Context, q portsrepo.ContentQuery) ([]domain.Content, int64, error) {
	where, args := whereClause(q)

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM contents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count content: %w", err)
	}

	sql := `SELECT ` + contentColumns + ` FROM contents WHERE ` + where + ` ORDER BY ` + orderBy(q.Sort)
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", q.Offset)
	}
	items, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PgxContentRepository) SaveContent(ctx context.Context, content domain.Content) error {
	m := models.FromDomainContent(content)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO contents (`+contentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`, m.ID, m.Kind, m.Title, m.Slug, m.Body, m.Excerpt, m.CoverImage, m.AuthorID,
		m.Tags, m.Category, m.Status, m.Views, m.ReadingTime, m.PublishedAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return mapWriteError("failed to save content", err)
	}
	return nil
}

func (r *PgxContentRepository) UpdateContent(ctx context.Context, content domain.Content) error {
	m := models.FromDomainContent(content)
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE contents
		SET title = $1, slug = $2, body = $3, excerpt = $4, cover_image = $5, tags = $6,
			category = $7, status = $8, reading_time = $9, published_at = $10, updated_at = $11
		WHERE kind = $12 AND content_id = $13;
	`, m.Title, m.Slug, m.Body, m.Excerpt, m.CoverImage, m.Tags,
		m.Category, m.Status, m.ReadingTime, m.PublishedAt, m.UpdatedAt, m.Kind, m.ID)
	if err != nil {
		return mapWriteError("failed to update content", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s not found: %w", m.Kind, m.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxContentRepository) DeleteContent(ctx context.Context, kind domain.ContentKind, id string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM contents WHERE kind = $1 AND content_id = $2;`, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxContentRepository) IncrementViews(ctx context.Context, kind domain.ContentKind, id string) (int64, error) {
	var views int64
	err := r.Pool.QueryRow(ctx, `
		UPDATE contents SET views = views + 1
		WHERE kind = $1 AND content_id = $2 AND status = $3
		RETURNING views;
	`, string(kind), id, string(domain.StatusPublished)).Scan(&views)
	if err != nil {
		return 0, mapFindError("failed to increment views", err)
	}
	return views, nil
}

func (r *PgxContentRepository) AuthorStats(ctx context.Context, kind domain.ContentKind, authorID string, topN int) (*domain.KindStats, error) {
	stats := &domain.KindStats{Kind: kind}
	err := r.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COALESCE(SUM(views), 0)
		FROM contents
		WHERE kind = $1 AND author_id = $2;
	`, string(kind), authorID).Scan(&stats.Total, &stats.Drafts, &stats.Published, &stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s stats: %w", kind, err)
	}

	base := `SELECT ` + summaryColumns + ` FROM contents WHERE kind = $1 AND author_id = $2`
	if stats.TopByViews, err = r.query(ctx, base+` ORDER BY views DESC, created_at DESC LIMIT $3;`, string(kind), authorID, topN); err != nil {
		return nil, err
	}
	if stats.Recent, err = r.query(ctx, base+` ORDER BY updated_at DESC LIMIT $3;`, string(kind), authorID, topN); err != nil {
		return nil, err
	}
	return stats, nil
}
