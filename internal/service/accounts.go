// Package service contains the account and note application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/goph-notes/internal/crypto"
	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
	"github.com/and161185/goph-notes/internal/repository"
)

// TokenIssuer mints session tokens for an account.
type TokenIssuer interface {
	Issue(ownerID uuid.UUID) (model.Tokens, error)
}

// AccountService defines registration and login.
type AccountService interface {
	// Register creates an account and immediately issues a token for it.
	Register(ctx context.Context, fullName, email, password string) (model.Registration, error)
	// Login verifies the credential and issues a token.
	Login(ctx context.Context, email, password string) (model.Tokens, model.Profile, error)
	// Profile returns the redacted account for a verified identity.
	Profile(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

type AccountServiceImpl struct {
	accounts repository.AccountRepository
	tokens   TokenIssuer
	now      func() time.Time
}

// NewAccountService constructs AccountService with required dependencies.
func NewAccountService(accounts repository.AccountRepository, tokens TokenIssuer) *AccountServiceImpl {
	return &AccountServiceImpl{accounts: accounts, tokens: tokens, now: time.Now}
}

// Register validates input, stores a hashed credential and issues a token.
// A taken email is reported by the store's unique index, so concurrent sign-ups cannot both win.
func (s *AccountServiceImpl) Register(ctx context.Context, fullName, email, password string) (model.Registration, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	switch {
	case fullName == "":
		return model.Registration{}, errs.Invalid("Full name is required")
	case email == "":
		return model.Registration{}, errs.Invalid("Email is required")
	case password == "":
		return model.Registration{}, errs.Invalid("Password is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Registration{}, err
	}
	cred, err := pkgcrypto.NewCredential(password)
	if err != nil {
		return model.Registration{}, err
	}
	a := &model.Account{
		ID:        id,
		FullName:  fullName,
		Email:     email,
		PwdHash:   cred.Hash,
		Salt:      cred.Salt,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return model.Registration{}, storeErr(err)
	}

	tok, err := s.tokens.Issue(a.ID)
	if err != nil {
		return model.Registration{}, err
	}
	return model.Registration{Profile: a.Profile(), Tokens: tok}, nil
}

// Login authenticates by email and credential.
func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (model.Tokens, model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Tokens{}, model.Profile{}, errs.Invalid("Email is required")
	}
	if password == "" {
		return model.Tokens{}, model.Profile{}, errs.Invalid("Password is required")
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return model.Tokens{}, model.Profile{}, storeErr(err)
	}
	stored := pkgcrypto.Credential{Hash: a.PwdHash, Salt: a.Salt}
	if !stored.Verify(password) {
		return model.Tokens{}, model.Profile{}, errs.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(a.ID)
	if err != nil {
		return model.Tokens{}, model.Profile{}, err
	}
	return tok, a.Profile(), nil
}

// Profile resolves a verified identity to its account.
func (s *AccountServiceImpl) Profile(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if id == uuid.Nil {
		return model.Profile{}, errs.ErrUnauthorized
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return model.Profile{}, storeErr(err)
	}
	return a.Profile(), nil
}

// storeErr passes through conditions the repositories report on purpose and
// marks everything else as a store failure.
func storeErr(err error) error {
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrAlreadyExists) {
		return err
	}
	return fmt.Errorf("%w: %w", errs.ErrStore, err)
}
