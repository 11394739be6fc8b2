package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yhlin/memberdir/internal/directory"
	"github.com/yhlin/memberdir/internal/models"
	pkgauth "github.com/yhlin/memberdir/pkg/auth"
	"github.com/yhlin/memberdir/pkg/logger"
)

type AccountService struct {
	repo   AccountRepository
	logger *slog.Logger
}

func NewAccountService(repo AccountRepository, log *slog.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		logger: log,
	}
}

// DirectoryPage is one page of the filtered directory plus the metadata
// the listing UI needs to render its pagination bar.
type DirectoryPage struct {
	Accounts   []*models.Account
	Query      string
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int
	Window     directory.Window
}

type CreateAccountInput struct {
	Account     string
	DisplayName string
	Password    string
	Phone       *string
	Address     *string
	Role        string
}

type UpdateAccountInput struct {
	Account     string
	DisplayName string
	Password    string // blank keeps the current password
	Phone       *string
	Address     *string
	Role        string
}

// ListDirectory loads the full directory, applies the substring filter and
// returns the requested page. The store is re-read on every call so edits
// made elsewhere show up immediately.
func (s *AccountService) ListDirectory(ctx context.Context, query string, page int) (*DirectoryPage, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list accounts", "error", err)
		return nil, models.ErrInternalServer
	}

	view := directory.NewView(all, query, directory.PageSize)
	view.GoToPage(page)

	return &DirectoryPage{
		Accounts:   view.PageSlice(),
		Query:      view.Query,
		Page:       view.Page,
		PageSize:   view.PageSize,
		TotalPages: view.TotalPages(),
		TotalCount: len(view.Filtered),
		Window:     view.Window(),
	}, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByHandle returns the account behind a session, for the settings view.
func (s *AccountService) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	return s.repo.GetByAccount(ctx, handle)
}

// CreateAccount adds a directory entry on behalf of an administrator.
func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	handle := strings.TrimSpace(input.Account)
	displayName := strings.TrimSpace(input.DisplayName)
	if handle == "" || displayName == "" {
		return nil, fmt.Errorf("%w: account and name are required", models.ErrValidation)
	}
	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	role, err := normalizeRole(input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureHandleFree(ctx, handle); err != nil {
		return nil, err
	}

	passwordHash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.Account{
		Account:      handle,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         role,
	})
	if err != nil {
		s.logger.Error("failed to create account", "error", err)
		return nil, err
	}

	s.logger.Info("account created",
		"account", logger.SanitizedAccount(handle),
		"role", role,
	)
	return created, nil
}

// UpdateAccount rewrites an entry's profile fields. A blank password leaves
// the stored hash untouched; a non-blank one replaces it.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*models.Account, error) {
	handle := strings.TrimSpace(input.Account)
	displayName := strings.TrimSpace(input.DisplayName)
	if handle == "" || displayName == "" {
		return nil, fmt.Errorf("%w: account and name are required", models.ErrValidation)
	}
	role, err := normalizeRole(input.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Uniqueness check excludes the row being edited so keeping the same
	// handle is never flagged as a duplicate.
	if _, err := s.repo.GetByAccountExcluding(ctx, handle, id); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		if errors.Is(err, models.ErrMultipleMatches) {
			return nil, models.ErrConflict
		}
		s.logger.Error("account uniqueness check failed", "error", err)
		return nil, models.ErrInternalServer
	}

	existing.Account = handle
	existing.DisplayName = displayName
	existing.Phone = input.Phone
	existing.Address = input.Address
	existing.Role = role

	// The credential is validated and hashed before anything is written, so
	// a rejected password leaves the row exactly as it was. A blank hash on
	// the patch tells the store to keep the stored one.
	existing.PasswordHash = ""
	if input.Password != "" {
		if err := pkgauth.ValidatePassword(input.Password); err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
		}
		passwordHash, err := pkgauth.HashPassword(input.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, models.ErrInternalServer
		}
		existing.PasswordHash = passwordHash
	}

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		s.logger.Error("failed to update account", "error", err)
		return nil, err
	}

	s.logger.Info("account updated",
		"account", logger.SanitizedAccount(handle),
		"password_changed", input.Password != "",
	)
	return updated, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to delete account", "error", err)
		}
		return err
	}
	s.logger.Info("account deleted", "account_id", id)
	return nil
}

// UpdateContact saves the caller's own phone and address. Blank values are
// stored as NULL; no other column is touched.
func (s *AccountService) UpdateContact(ctx context.Context, handle, phone, address string) (*models.Account, error) {
	updated, err := s.repo.UpdateContact(ctx, handle, optional(phone), optional(address))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to update contact info", "error", err)
		}
		return nil, err
	}
	s.logger.Info("contact info updated", "account", logger.SanitizedAccount(handle))
	return updated, nil
}

func (s *AccountService) ensureHandleFree(ctx context.Context, handle string) error {
	if _, err := s.repo.GetByAccount(ctx, handle); err == nil {
		return models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		if errors.Is(err, models.ErrMultipleMatches) {
			return models.ErrConflict
		}
		s.logger.Error("account uniqueness check failed", "error", err)
		return models.ErrInternalServer
	}
	return nil
}

func normalizeRole(role string) (string, error) {
	switch role {
	case "":
		return models.RoleUser, nil
	case models.RoleUser, models.RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
