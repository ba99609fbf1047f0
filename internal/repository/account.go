package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
)

const accountEmailConstraint = "account_email_key"

type AccountRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAccountRepository(db *sql.DB, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO ccca.account (account_id, name, email, document, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.AccountID,
		account.Name,
		account.Email,
		account.Document,
		account.Password,
		account.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, accountEmailConstraint) {
			r.logger.WithField("constraint", accountEmailConstraint).Debug("Unique violation mapped to duplicated email")
			return model.ErrDuplicatedEmail
		}
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*model.Account, error) {
	query := `
		SELECT account_id, name, email, document, password, created_at
		FROM ccca.account
		WHERE account_id = $1
	`

	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT account_id, name, email, document, password, created_at
		FROM ccca.account
		WHERE email = $1
	`

	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

// scanOne maps sql.ErrNoRows to (nil, nil).
func (r *AccountRepository) scanOne(row *sql.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.AccountID,
		&account.Name,
		&account.Email,
		&account.Document,
		&account.Password,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// isUniqueViolation matches a unique_violation, on the given constraint when constraint is set.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := asPQError(err)
	if !ok || pqErr.Code.Name() != "unique_violation" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isCheckViolation(err error) bool {
	pqErr, ok := asPQError(err)
	return ok && pqErr.Code.Name() == "check_violation"
}
