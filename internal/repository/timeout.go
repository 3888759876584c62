package repository

import (
	"context"
	"time"

	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountsWithTimeout bounds every call on r by d. A non-positive d returns r unchanged.
func AccountsWithTimeout(r AccountRepository, d time.Duration) AccountRepository {
	if d <= 0 {
		return r
	}
	return timedAccounts{r: r, d: d}
}

// NotesWithTimeout bounds every call on r by d. A non-positive d returns r unchanged.
func NotesWithTimeout(r NoteRepository, d time.Duration) NoteRepository {
	if d <= 0 {
		return r
	}
	return timedNotes{r: r, d: d}
}

type timedAccounts struct {
	r AccountRepository
	d time.Duration
}

func (t timedAccounts) Create(ctx context.Context, a *model.Account) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Create(ctx, a)
}

func (t timedAccounts) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.GetByID(ctx, id)
}

func (t timedAccounts) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.GetByEmail(ctx, email)
}

type timedNotes struct {
	r NoteRepository
	d time.Duration
}

func (t timedNotes) Create(ctx context.Context, n *model.Note) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Create(ctx, n)
}

func (t timedNotes) Get(ctx context.Context, key model.NoteKey) (*model.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Get(ctx, key)
}

func (t timedNotes) Update(ctx context.Context, n *model.Note) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Update(ctx, n)
}

func (t timedNotes) Delete(ctx context.Context, key model.NoteKey) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Delete(ctx, key)
}

func (t timedNotes) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.ListByOwner(ctx, ownerID)
}

func (t timedNotes) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.SearchByOwner(ctx, ownerID, query)
}
