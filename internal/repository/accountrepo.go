// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepository is the Account Store.
type AccountRepository interface {
	// Create inserts a new account; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, a *model.Account) error
	// GetByID loads an account by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	// GetByEmail loads an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}
