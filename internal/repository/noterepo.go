package repository

import (
	"context"

	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NoteRepository is the Note Store. Single-note access always goes through model.NoteKey.
type NoteRepository interface {
	// Create inserts a new note.
	Create(ctx context.Context, n *model.Note) error
	// Get returns the note addressed by key or errs.ErrNotFound.
	Get(ctx context.Context, key model.NoteKey) (*model.Note, error)
	// Update overwrites the mutable fields of the note addressed by n.Key().
	Update(ctx context.Context, n *model.Note) error
	// Delete removes the note addressed by key or returns errs.ErrNotFound.
	Delete(ctx context.Context, key model.NoteKey) error
	// ListByOwner returns all notes of the owner, pinned first, then in insertion order.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	// SearchByOwner returns owned notes whose title or content contains query, case-insensitively.
	SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error)
}
