package pgsql

import (
	"fmt"
	"testing"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWhereClause_KindOnly(t *testing.T) {
	where, args := whereClause(portsrepo.ContentQuery{Kind: domain.KindBlog})
	assert.Equal(t, "kind = $1", where)
	assert.Equal(t, []any{"blog"}, args)
}

func TestWhereClause_AllFilters(t *testing.T) {
	where, args := whereClause(portsrepo.ContentQuery{
		Kind:     domain.KindPost,
		AuthorID: "u1",
		Status:   domain.StatusDraft,
		Tag:      "Go",
		Category: "News",
		IDs:      []string{"a"},
		Search:   "50%_off",
	})

	assert.Equal(t, "kind = $1 AND author_id = $2 AND status = $3 AND $4 = ANY(tags) AND "+
		"LOWER(category) = LOWER($5) AND content_id = ANY($6) AND "+
		"(title ILIKE $7 OR excerpt ILIKE $8 OR $9 = ANY(tags))", where)
	assert.Equal(t, []any{
		"post", "u1", "draft", "go", "News", []string{"a"},
		`%50\%\_off%`, `%50\%\_off%`, "50%_off",
	}, args)
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderBy(portsrepo.SortNewest))
	assert.Equal(t, "views DESC, created_at DESC", orderBy(portsrepo.SortPopular))
}

func TestMapWriteError(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, mapWriteError("save", fmt.Errorf("exec: %w", dup)), apperrors.ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, mapWriteError("save", other), apperrors.ErrDuplicate)
}

func TestMapFindError(t *testing.T) {
	assert.Equal(t, apperrors.ErrNotFound, mapFindError("find", pgx.ErrNoRows))
	assert.NotErrorIs(t, mapFindError("find", assert.AnError), apperrors.ErrNotFound)
}
