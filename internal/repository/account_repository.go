package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/account-rest-service/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepository is the PostgreSQL store of accounts and the only owner
// of account rows.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, address, phone_number, date_joined`

// Insert stores a new account and sets its ID and DateJoined from the
// returned row. On failure the account is left untouched.
func (r *AccountRepository) Insert(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (name, email, address, phone_number, date_joined)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date_joined
	`
	var (
		id     int64
		joined sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Email, account.Address,
		nullString(account.PhoneNumber), account.DateJoined,
	).Scan(&id, &joined)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = id
	if joined.Valid {
		account.DateJoined = joined.Time
	}
	return nil
}

// FindByID returns (nil, nil) when no account has the given id.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// ListAll returns every account in insertion order. The slice is empty, not
// nil, when there are none.
func (r *AccountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateByID writes every mutable column of an already inserted account.
func (r *AccountRepository) UpdateByID(ctx context.Context, account *models.Account) error {
	if account.ID == 0 {
		return ErrIDNotSet
	}
	query := `
		UPDATE accounts
		SET name = $2, email = $3, address = $4, phone_number = $5, date_joined = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.Address,
		nullString(account.PhoneNumber), account.DateJoined,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteByID removes the row. Deleting an id that does not exist is not an
// error.
func (r *AccountRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM accounts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		account models.Account
		phone   sql.NullString
	)
	if err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.Address,
		&phone, &account.DateJoined,
	); err != nil {
		return nil, err
	}
	if phone.Valid {
		account.PhoneNumber = &phone.String
	}
	return &account, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
