package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/models"
	pkgauth "github.com/yhlin/memberdir/pkg/auth"
	"github.com/yhlin/memberdir/pkg/logger"
)

const minAccountLen = 3

// AccountRepository is the persistence surface the services need.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByAccount(ctx context.Context, handle string) (*models.Account, error)
	GetByAccountExcluding(ctx context.Context, handle string, excludeID string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, id string, account *models.Account) (*models.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateContact(ctx context.Context, handle string, phone, address *string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	repo        AccountRepository
	logger      *slog.Logger
	auditLogger *logger.AuditLogger
	timingDelay *auth.TimingDelay
}

func NewAuthService(repo AccountRepository, log *slog.Logger, timingDelay *auth.TimingDelay) *AuthService {
	return &AuthService{
		repo:        repo,
		logger:      log,
		auditLogger: logger.NewAuditLogger(log),
		timingDelay: timingDelay,
	}
}

// Login verifies credentials and returns the session snapshot on success.
// All failure modes collapse into ErrUnauthorized so the response does not
// reveal whether the account exists.
func (s *AuthService) Login(ctx context.Context, handle, password, ipAddress string) (*models.SessionUser, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		s.timingDelay.Wait(false)
		return nil, models.ErrUnauthorized
	}

	account, err := s.repo.GetByAccount(ctx, handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrMultipleMatches) {
			s.auditLogger.LogAuthAttempt(logger.AuditEvent{
				EventType:     "login_failed",
				Account:       handle,
				IPAddress:     ipAddress,
				Success:       false,
				FailureReason: "account_not_found",
			})
			s.timingDelay.Wait(false)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("login lookup failed", "error", err)
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		s.auditLogger.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login_failed",
			Account:       handle,
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "invalid_password",
		})
		s.timingDelay.Wait(false)
		return nil, models.ErrUnauthorized
	}

	s.auditLogger.LogAuthAttempt(logger.AuditEvent{
		EventType: "login_success",
		Account:   handle,
		IPAddress: ipAddress,
		Success:   true,
	})
	s.timingDelay.Wait(true)

	return sessionSnapshot(account), nil
}

// Register creates a self-service account. Registering with the literal
// handle "admin" (any casing) yields the admin role; nothing else does.
func (s *AuthService) Register(ctx context.Context, handle, displayName, password, ipAddress string) (*models.SessionUser, error) {
	handle = strings.TrimSpace(handle)
	displayName = strings.TrimSpace(displayName)

	if len(handle) < minAccountLen {
		return nil, fmt.Errorf("%w: account must be at least %d characters", models.ErrValidation, minAccountLen)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}

	if _, err := s.repo.GetByAccount(ctx, handle); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		if errors.Is(err, models.ErrMultipleMatches) {
			return nil, models.ErrConflict
		}
		s.logger.Error("registration lookup failed", "error", err)
		return nil, models.ErrInternalServer
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, models.ErrInternalServer
	}

	role := models.RoleUser
	if strings.EqualFold(handle, "admin") {
		role = models.RoleAdmin
	}

	created, err := s.repo.Create(ctx, &models.Account{
		Account:      handle,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		s.logger.Error("failed to create account", "error", err)
		return nil, err
	}

	s.auditLogger.LogAuthAttempt(logger.AuditEvent{
		EventType: "registration",
		Account:   handle,
		IPAddress: ipAddress,
		Success:   true,
	})
	s.logger.Info("account registered",
		"account", logger.SanitizedAccount(handle),
		"role", role,
	)

	return sessionSnapshot(created), nil
}

func sessionSnapshot(account *models.Account) *models.SessionUser {
	return &models.SessionUser{
		Account:     account.Account,
		DisplayName: account.DisplayName,
		Role:        account.Role,
	}
}
