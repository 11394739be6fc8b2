package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/memberdir/internal/models"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	handle, password := TestCredentials("create")
	created, err := SeedAccount(ctx, accountRepo, handle, "Create Test", password, models.RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := accountRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, handle, byID.Account)

	byHandle, err := accountRepo.GetByAccount(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byHandle.ID)
}

func TestAccountRepository_GetByAccount_NotFound(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	_, err := accountRepo.GetByAccount(ctx, "does-not-exist")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccountRepository_GetByAccount_DuplicateRowsAreAmbiguous(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	// The accounts table intentionally has no unique constraint on the
	// handle; two writers racing past the pre-check can both insert.
	handle, password := TestCredentials("dupe")
	_, err := SeedAccount(ctx, accountRepo, handle, "First", password, models.RoleUser)
	require.NoError(t, err)
	_, err = SeedAccount(ctx, accountRepo, handle, "Second", password, models.RoleUser)
	require.NoError(t, err)

	_, err = accountRepo.GetByAccount(ctx, handle)
	assert.ErrorIs(t, err, models.ErrMultipleMatches)
}

func TestAccountRepository_GetByAccountExcluding(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	handle, password := TestCredentials("excl")
	created, err := SeedAccount(ctx, accountRepo, handle, "Excluded", password, models.RoleUser)
	require.NoError(t, err)

	// Excluding the only row holding the handle finds nothing.
	_, err = accountRepo.GetByAccountExcluding(ctx, handle, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	other, err := SeedAccount(ctx, accountRepo, handle+"-other", "Other", password, models.RoleUser)
	require.NoError(t, err)

	found, err := accountRepo.GetByAccountExcluding(ctx, handle, other.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestAccountRepository_UpdateBlankHashKeepsPassword(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	handle, password := TestCredentials("upd")
	created, err := SeedAccount(ctx, accountRepo, handle, "Before", password, models.RoleUser)
	require.NoError(t, err)
	originalHash := created.PasswordHash

	created.DisplayName = "After"
	created.Role = models.RoleAdmin
	created.PasswordHash = ""
	updated, err := accountRepo.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.DisplayName)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, originalHash, updated.PasswordHash)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	// A non-blank hash on the patch rotates the credential with the same call.
	created.PasswordHash = "rotated-hash"
	updated, err = accountRepo.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "rotated-hash", updated.PasswordHash)

	require.NoError(t, accountRepo.UpdatePassword(ctx, created.ID, "new-hash"))
	refetched, err := accountRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", refetched.PasswordHash)
}

func TestAccountRepository_UpdateContact(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	handle, password := TestCredentials("contact")
	created, err := SeedAccount(ctx, accountRepo, handle, "Contact", password, models.RoleUser)
	require.NoError(t, err)

	phone := "555-0100"
	updated, err := accountRepo.UpdateContact(ctx, handle, &phone, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "555-0100", *updated.Phone)
	assert.Nil(t, updated.Address)
	assert.Equal(t, created.DisplayName, updated.DisplayName)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
}

func TestAccountRepository_Delete(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	handle, password := TestCredentials("del")
	created, err := SeedAccount(ctx, accountRepo, handle, "Doomed", password, models.RoleUser)
	require.NoError(t, err)

	require.NoError(t, accountRepo.Delete(ctx, created.ID))
	_, err = accountRepo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, accountRepo.Delete(ctx, created.ID), models.ErrNotFound)
}

func TestAccountRepository_ListOrdersByNewest(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	accountRepo, _ := InitializeRepositories(testDB.DB)

	first, password := TestCredentials("list1")
	_, err := SeedAccount(ctx, accountRepo, first, "First", password, models.RoleUser)
	require.NoError(t, err)
	second, _ := TestCredentials("list2")
	_, err = SeedAccount(ctx, accountRepo, second, "Second", password, models.RoleUser)
	require.NoError(t, err)

	all, err := accountRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].Account, "newest row lists first")
}

func TestImportRunRepository_CreateListAndSweep(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	_, runRepo := InitializeRepositories(testDB.DB)

	now := time.Now().UTC()
	old := &models.ImportRun{
		Actor:        "admin",
		TotalRows:    10,
		SuccessCount: 8,
		SkippedCount: 1,
		ErrorCount:   1,
		StartedAt:    now.Add(-60 * 24 * time.Hour),
		FinishedAt:   now.Add(-60 * 24 * time.Hour).Add(time.Minute),
	}
	_, err := runRepo.Create(ctx, old)
	require.NoError(t, err)

	fresh := &models.ImportRun{
		Actor:        "admin",
		TotalRows:    3,
		SuccessCount: 3,
		StartedAt:    now.Add(-time.Hour),
		FinishedAt:   now.Add(-time.Hour).Add(time.Second),
	}
	_, err = runRepo.Create(ctx, fresh)
	require.NoError(t, err)

	runs, err := runRepo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].TotalRows, "newest run lists first")

	deleted, err := runRepo.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, err = runRepo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].TotalRows)
}
