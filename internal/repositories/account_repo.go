package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yhlin/memberdir/internal/database"
	"github.com/yhlin/memberdir/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, account, display_name, password_hash, phone, address, role, created_at, updated_at`

// AccountRepository is the directory store: every lookup, insert, update and
// delete of member rows goes through it.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

// rowScanner interface for scanning account rows (single row or rows iteration)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAccountRow handles nullable fields and populates an Account model from a database row
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var phone, address *string

	err := scanner.Scan(
		&account.ID, &account.Account, &account.DisplayName, &account.PasswordHash,
		&phone, &address, &account.Role,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	account.Phone = phone
	account.Address = address

	return &account, nil
}

// scanAccountRows iterates through rows and scans each into Account models
func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

// GetByAccount looks up a row by its handle, exact-string comparison. The
// lookup must match at most one row: the handle carries no unique
// constraint, so a duplicate slipped in through the pre-check race surfaces
// as ErrMultipleMatches instead of silently picking one.
func (r *AccountRepository) GetByAccount(ctx context.Context, handle string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account = $1 LIMIT 2`

	rows, err := r.pool.Query(ctx, query, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	switch len(accounts) {
	case 0:
		return nil, models.ErrNotFound
	case 1:
		return accounts[0], nil
	default:
		return nil, models.ErrMultipleMatches
	}
}

// GetByAccountExcluding is the uniqueness probe for edits: it matches the
// handle exactly but ignores the row being edited.
func (r *AccountRepository) GetByAccountExcluding(ctx context.Context, handle, excludeID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account = $1 AND id != $2 LIMIT 2`

	rows, err := r.pool.Query(ctx, query, handle, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	switch len(accounts) {
	case 0:
		return nil, models.ErrNotFound
	case 1:
		return accounts[0], nil
	default:
		return nil, models.ErrMultipleMatches
	}
}

// List fetches the whole directory ordered by creation time, newest first.
// Filtering and paging happen in memory over this result; there is no
// server-side pagination on this path.
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Role == "" {
		account.Role = models.RoleUser
	}

	query := `
		INSERT INTO accounts (id, account, display_name, password_hash, phone, address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.ID, account.Account, account.DisplayName, account.PasswordHash,
		account.Phone, account.Address, account.Role,
		account.CreatedAt, account.UpdatedAt,
	))
}

// Update rewrites the editable fields of a row in one statement. A blank
// PasswordHash on the patch keeps password_hash out of the statement, so an
// edit without a new credential leaves the stored one untouched; a non-blank
// hash rotates it atomically with the profile fields.
func (r *AccountRepository) Update(ctx context.Context, id string, account *models.Account) (*models.Account, error) {
	account.UpdatedAt = time.Now()

	if account.PasswordHash != "" {
		query := `
			UPDATE accounts SET account = $1, display_name = $2, phone = $3, address = $4, role = $5, password_hash = $6, updated_at = $7
			WHERE id = $8
			RETURNING ` + accountColumns

		return scanAccountRow(r.pool.QueryRow(ctx, query,
			account.Account, account.DisplayName, account.Phone, account.Address,
			account.Role, account.PasswordHash, account.UpdatedAt, id,
		))
	}

	query := `
		UPDATE accounts SET account = $1, display_name = $2, phone = $3, address = $4, role = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.Account, account.DisplayName, account.Phone, account.Address,
		account.Role, account.UpdatedAt, id,
	))
}

// UpdatePassword rotates the stored credential hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateContact persists the self-service settings fields: phone, address
// and the update timestamp. Nothing else on the row changes.
func (r *AccountRepository) UpdateContact(ctx context.Context, handle string, phone, address *string) (*models.Account, error) {
	query := `
		UPDATE accounts SET phone = $1, address = $2, updated_at = $3
		WHERE account = $4
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, phone, address, time.Now(), handle))
}

// Delete hard-deletes a row. There is no soft delete or tombstone.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
