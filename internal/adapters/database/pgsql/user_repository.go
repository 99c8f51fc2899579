package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `u.user_id, u.email, u.username, u.name, u.image, u.password_hash,
	u.email_verified, u.session_version, u.created_at, u.updated_at`

func (r *PgxUserRepository) findOne(ctx context.Context, op, where string, args ...any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + where
	var m models.User
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.UserID,
		&m.Email,
		&m.Username,
		&m.Name,
		&m.Image,
		&m.PasswordHash,
		&m.EmailVerified,
		&m.SessionVersion,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, mapFindError(op, err)
	}

	accounts, err := r.loadAccounts(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	m.Accounts = accounts
	return m.ToDomain(), nil
}

func (r *PgxUserRepository) loadAccounts(ctx context.Context, userID string) ([]models.AccountRecord, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT provider, provider_user_id, linked_at
		FROM user_accounts
		WHERE user_id = $1
		ORDER BY linked_at;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for user %s: %w", userID, err)
	}
	accounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AccountRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts for user %s: %w", userID, err)
	}
	return accounts, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by ID", `u.user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by email", `u.email = $1`, email)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by username", `u.username = $1`, username)
}

func (r *PgxUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by provider", `EXISTS (
		SELECT 1 FROM user_accounts a
		WHERE a.user_id = u.user_id AND a.provider = $1 AND a.provider_user_id = $2)`,
		string(provider), providerUserID)
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := models.FromDomainUser(user)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, email, username, name, image, password_hash,
			email_verified, session_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`, m.UserID, m.Email, m.Username, m.Name, m.Image, m.PasswordHash,
		m.EmailVerified, m.SessionVersion, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return mapWriteError("failed to save user", err)
	}
	if err := insertAccounts(ctx, tx, m.UserID, m.Accounts); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	m := models.FromDomainUser(user)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE users
		SET username = $1, name = $2, image = $3, email_verified = $4, updated_at = $5
		WHERE user_id = $6;
	`, m.Username, m.Name, m.Image, m.EmailVerified, m.UpdatedAt, m.UserID)
	if err != nil {
		return mapWriteError("failed to update user profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found: %w", m.UserID, apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_accounts WHERE user_id = $1;`, m.UserID); err != nil {
		return fmt.Errorf("failed to clear accounts for user %s: %w", m.UserID, err)
	}
	if err := insertAccounts(ctx, tx, m.UserID, m.Accounts); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, expectedVersion int, updatedAt time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, session_version = session_version + 1, updated_at = $2
		WHERE user_id = $3 AND session_version = $4;
	`, passwordHash, updatedAt, userID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1);`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("user %s not found: %w", userID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("session version of user %s moved past %d: %w", userID, expectedVersion, apperrors.ErrConcurrentUpdate)
}

func insertAccounts(ctx context.Context, tx pgx.Tx, userID string, accounts []models.AccountRecord) error {
	for _, a := range accounts {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_accounts (user_id, provider, provider_user_id, linked_at)
			VALUES ($1, $2, $3, $4);
		`, userID, a.Provider, a.ProviderUserID, a.LinkedAt)
		if err != nil {
			return mapWriteError("failed to link account", err)
		}
	}
	return nil
}
