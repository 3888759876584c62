package service

import (
	"context"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
	"github.com/and161185/goph-notes/internal/repository"
)

type fakeAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*model.Account

	createErr error
	getErr    error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func newFakeAccounts() *fakeAccounts { return &fakeAccounts{byEmail: map[string]*model.Account{}} }

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	k := strings.ToLower(a.Email)
	if _, exists := f.byEmail[k]; exists {
		return errs.ErrAlreadyExists
	}
	c := *a
	f.byEmail[k] = &c
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

// fakeNotes keeps insertion order, which stands in for the store's natural order.
type fakeNotes struct {
	mu    sync.Mutex
	notes []model.Note

	err        error
	deleteMiss bool
}

var _ repository.NoteRepository = (*fakeNotes)(nil)

func (f *fakeNotes) Create(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, clone(*n))
	return nil
}

func (f *fakeNotes) index(key model.NoteKey) int {
	for i, n := range f.notes {
		if n.ID == key.ID && n.OwnerID == key.OwnerID {
			return i
		}
	}
	return -1
}

func (f *fakeNotes) Get(_ context.Context, key model.NoteKey) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i := f.index(key)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	n := clone(f.notes[i])
	return &n, nil
}

func (f *fakeNotes) Update(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	i := f.index(n.Key())
	if i < 0 {
		return errs.ErrNotFound
	}
	f.notes[i] = clone(*n)
	return nil
}

func (f *fakeNotes) Delete(_ context.Context, key model.NoteKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	i := f.index(key)
	if i < 0 || f.deleteMiss {
		return errs.ErrNotFound
	}
	f.notes = append(f.notes[:i], f.notes[i+1:]...)
	return nil
}

func (f *fakeNotes) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	return f.filter(func(n model.Note) bool { return n.OwnerID == ownerID })
}

func (f *fakeNotes) SearchByOwner(_ context.Context, ownerID uuid.UUID, q string) ([]model.Note, error) {
	lq := strings.ToLower(q)
	return f.filter(func(n model.Note) bool {
		return n.OwnerID == ownerID &&
			(strings.Contains(strings.ToLower(n.Title), lq) || strings.Contains(strings.ToLower(n.Content), lq))
	})
}

func (f *fakeNotes) filter(keep func(model.Note) bool) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Note
	for _, n := range f.notes {
		if keep(n) {
			out = append(out, clone(n))
		}
	}
	return out, nil
}

func clone(n model.Note) model.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(id uuid.UUID) (model.Tokens, error) {
	if f.err != nil {
		return model.Tokens{}, f.err
	}
	return model.Tokens{AccessToken: "tok-" + id.String()}, nil
}
