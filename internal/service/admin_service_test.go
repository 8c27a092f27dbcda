package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/launchbase/accountd/internal/repository"
	"github.com/launchbase/accountd/internal/service"
)

func newTestAdminService(t *testing.T, users repository.UserRepository) *service.AdminService {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return service.NewAdminService(users, node, zap.NewNop())
}

func TestAdminCreateListGet(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	adminService := newTestAdminService(t, repo)

	first, err := adminService.CreateUser(ctx, "First@Example.com", "secret1", true)
	require.NoError(t, err)
	require.Equal(t, "first@example.com", first.Email)
	require.True(t, first.IsActive)

	_, err = adminService.CreateUser(ctx, "second@example.com", "secret2", false)
	require.NoError(t, err)

	page, err := adminService.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	require.Equal(t, int64(2), page.Total)

	got, err := adminService.GetUser(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Email, got.Email)
}

func TestAdminCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	adminService := newTestAdminService(t, newMemoryUserRepo())

	_, err := adminService.CreateUser(ctx, "dup@example.com", "secret1", true)
	require.NoError(t, err)

	_, err = adminService.CreateUser(ctx, "dup@example.com", "secret1", true)
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "email_taken", authErr.Code)
}

func TestAdminUpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	adminService := newTestAdminService(t, repo)
	authService := newTestAuthService(t, repo)

	created, err := adminService.CreateUser(ctx, "user@example.com", "old-password", true)
	require.NoError(t, err)

	newEmail := "Renamed@Example.com"
	newPassword := "new-password"
	inactive := false
	updated, err := adminService.UpdateUser(ctx, created.ID, service.UserUpdate{
		Email:    &newEmail,
		Password: &newPassword,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "renamed@example.com", updated.Email)
	require.False(t, updated.IsActive)

	// Old credentials stop working, the new ones log in.
	_, err = authService.Login(ctx, "user@example.com", "old-password")
	require.Error(t, err)
	login, err := authService.Login(ctx, "renamed@example.com", "new-password")
	require.NoError(t, err)
	require.Equal(t, created.ID, login.User.ID)
}

func TestAdminDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	adminService := newTestAdminService(t, repo)

	created, err := adminService.CreateUser(ctx, "gone@example.com", "secret1", true)
	require.NoError(t, err)

	require.NoError(t, adminService.DeleteUser(ctx, created.ID))

	err = adminService.DeleteUser(ctx, created.ID)
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "not_found", authErr.Code)
}

func TestUserViewNeverSerializesHash(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	adminService := newTestAdminService(t, repo)

	created, err := adminService.CreateUser(ctx, "leak@example.com", "super-secret-pw", true)
	require.NoError(t, err)

	stored, err := repo.GetByEmail(ctx, "leak@example.com")
	require.NoError(t, err)

	for _, value := range []any{created, service.UserSummary{ID: created.ID, Email: created.Email}} {
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		require.NotContains(t, string(raw), stored.PasswordHash)
		require.NotContains(t, string(raw), "super-secret-pw")
		require.NotContains(t, string(raw), "password_hash")
	}
}
