package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/yhlin/memberdir/internal/models"
)

// MockAccountRepository implements AccountRepository with overridable
// behavior per test.
type MockAccountRepository struct {
	GetByIDFunc               func(ctx context.Context, id string) (*models.Account, error)
	GetByAccountFunc          func(ctx context.Context, handle string) (*models.Account, error)
	GetByAccountExcludingFunc func(ctx context.Context, handle string, excludeID string) (*models.Account, error)
	ListFunc                  func(ctx context.Context) ([]*models.Account, error)
	CreateFunc                func(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateFunc                func(ctx context.Context, id string, account *models.Account) (*models.Account, error)
	UpdatePasswordFunc        func(ctx context.Context, id string, passwordHash string) error
	UpdateContactFunc         func(ctx context.Context, handle string, phone, address *string) (*models.Account, error)
	DeleteFunc                func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByAccount(ctx context.Context, handle string) (*models.Account, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, handle)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByAccountExcluding(ctx context.Context, handle string, excludeID string) (*models.Account, error) {
	if m.GetByAccountExcludingFunc != nil {
		return m.GetByAccountExcludingFunc(ctx, handle, excludeID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return account, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, id string, account *models.Account) (*models.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, account)
	}
	return account, nil
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockAccountRepository) UpdateContact(ctx context.Context, handle string, phone, address *string) (*models.Account, error) {
	if m.UpdateContactFunc != nil {
		return m.UpdateContactFunc(ctx, handle, phone, address)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockImportRunRepository implements ImportRunRepository for tests.
type MockImportRunRepository struct {
	CreateFunc          func(ctx context.Context, run *models.ImportRun) (*models.ImportRun, error)
	ListRecentFunc      func(ctx context.Context, limit int) ([]*models.ImportRun, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockImportRunRepository) Create(ctx context.Context, run *models.ImportRun) (*models.ImportRun, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	return run, nil
}

func (m *MockImportRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockImportRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
