package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/core/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	taken := "taken"
	hash := "h"
	require.NoError(t, repo.SaveUser(ctx, domain.User{UserID: "u1", Email: "a@example.com", Name: "A", PasswordHash: &hash}))
	require.NoError(t, repo.SaveUser(ctx, domain.User{UserID: "u2", Email: "b@example.com", UserName: &taken, PasswordHash: &hash}))
	svc := services.NewUserService(repo)

	user, err := svc.UpdateProfile(ctx, "u1", dto.UpdateProfileRequest{Name: ptr(" Ada "), UserName: ptr("ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada", user.GetUsername())

	stored, err := repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)

	_, err = svc.UpdateProfile(ctx, "u1", dto.UpdateProfileRequest{UserName: ptr("taken")})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = svc.UpdateProfile(ctx, "u1", dto.UpdateProfileRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.GetUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
