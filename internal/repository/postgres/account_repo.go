package postgres

import (
	"context"
	"strings"

	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row. Uniqueness of lower(email) is enforced by an index,
// so two concurrent registrations for one email cannot both succeed.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, full_name, email, pwd_hash, salt, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.FullName, a.Email, a.PwdHash, a.Salt, a.CreatedAt)
	return mapErr(err)
}

// GetByID selects an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	const q = `
SELECT id, full_name, email, pwd_hash, salt, created_at
FROM accounts WHERE id=$1`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects an account by email, ignoring case.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `
SELECT id, full_name, email, pwd_hash, salt, created_at
FROM accounts WHERE lower(email)=lower($1)`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func scanAccount(row scanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PwdHash, &a.Salt, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}
