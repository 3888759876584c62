// Package memory implements the repositories in process memory.
// It backs the "memory" store driver and handler tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

// AccountRepo is a map-backed AccountRepository.
type AccountRepo struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.Account
	byEmail map[string]uuid.UUID
}

// NewAccountRepo returns an empty account store.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{byID: map[uuid.UUID]model.Account{}, byEmail: map[string]uuid.UUID{}}
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts the account unless the email is taken.
func (r *AccountRepo) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := emailKey(a.Email)
	if _, ok := r.byEmail[k]; ok {
		return errs.ErrAlreadyExists
	}
	if _, ok := r.byID[a.ID]; ok {
		return errs.ErrAlreadyExists
	}
	r.byID[a.ID] = *a
	r.byEmail[k] = a.ID
	return nil
}

// GetByID loads an account by ID.
func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

// GetByEmail loads an account by email, ignoring case.
func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	a := r.byID[id]
	return &a, nil
}

type noteRow struct {
	seq  uint64
	note model.Note
}

// NoteRepo is a map-backed NoteRepository keyed by model.NoteKey.
type NoteRepo struct {
	mu    sync.RWMutex
	seq   uint64
	notes map[model.NoteKey]noteRow
}

// NewNoteRepo returns an empty note store.
func NewNoteRepo() *NoteRepo { return &NoteRepo{notes: map[model.NoteKey]noteRow{}} }

func cloneNote(n model.Note) model.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

// Create inserts a note.
func (r *NoteRepo) Create(_ context.Context, n *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[n.Key()]; ok {
		return errs.ErrAlreadyExists
	}
	r.seq++
	r.notes[n.Key()] = noteRow{seq: r.seq, note: cloneNote(*n)}
	return nil
}

// Get returns the note addressed by key.
func (r *NoteRepo) Get(_ context.Context, key model.NoteKey) (*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.notes[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	n := cloneNote(row.note)
	return &n, nil
}

// Update replaces the mutable fields; creation time and owner are preserved.
func (r *NoteRepo) Update(_ context.Context, n *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.notes[n.Key()]
	if !ok {
		return errs.ErrNotFound
	}
	upd := cloneNote(*n)
	upd.CreatedAt = row.note.CreatedAt
	row.note = upd
	r.notes[n.Key()] = row
	return nil
}

// Delete removes the note addressed by key.
func (r *NoteRepo) Delete(_ context.Context, key model.NoteKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[key]; !ok {
		return errs.ErrNotFound
	}
	delete(r.notes, key)
	return nil
}

// ListByOwner returns owned notes, pinned first, then in insertion order.
func (r *NoteRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	rows := r.collect(ownerID, func(model.Note) bool { return true })
	slices.SortStableFunc(rows, func(a, b noteRow) int {
		if a.note.IsPinned != b.note.IsPinned {
			if a.note.IsPinned {
				return -1
			}
			return 1
		}
		return compareSeq(a, b)
	})
	return notesOf(rows), nil
}

// SearchByOwner returns owned notes whose title or content contains query, ignoring case.
func (r *NoteRepo) SearchByOwner(_ context.Context, ownerID uuid.UUID, query string) ([]model.Note, error) {
	q := strings.ToLower(query)
	rows := r.collect(ownerID, func(n model.Note) bool {
		return strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q)
	})
	slices.SortFunc(rows, compareSeq)
	return notesOf(rows), nil
}

func (r *NoteRepo) collect(ownerID uuid.UUID, keep func(model.Note) bool) []noteRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rows []noteRow
	for k, row := range r.notes {
		if k.OwnerID == ownerID && keep(row.note) {
			rows = append(rows, row)
		}
	}
	return rows
}

func compareSeq(a, b noteRow) int {
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

func notesOf(rows []noteRow) []model.Note {
	out := make([]model.Note, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneNote(row.note))
	}
	return out
}
