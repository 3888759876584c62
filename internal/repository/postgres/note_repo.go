package postgres

import (
	"context"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

const noteColumns = `id, owner_id, title, content, tags, is_pinned, created_at, updated_at`

// Create inserts a note row.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (` + noteColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q,
		n.ID, n.OwnerID, n.Title, n.Content, tagsOrEmpty(n.Tags), n.IsPinned, n.CreatedAt, n.UpdatedAt)
	return err
}

// Get returns a single note by its compound key.
func (r *NoteRepo) Get(ctx context.Context, key model.NoteKey) (*model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes WHERE id=$1 AND owner_id=$2`
	n, err := scanNote(r.db.Pool.QueryRow(ctx, q, key.ID, key.OwnerID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

// Update writes the mutable fields of the note; owner_id is never updated.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	const q = `
UPDATE notes
SET title=$3, content=$4, tags=$5, is_pinned=$6, updated_at=$7
WHERE id=$1 AND owner_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q,
		n.ID, n.OwnerID, n.Title, n.Content, tagsOrEmpty(n.Tags), n.IsPinned, n.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the note by its compound key.
func (r *NoteRepo) Delete(ctx context.Context, key model.NoteKey) error {
	const q = `DELETE FROM notes WHERE id=$1 AND owner_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, key.ID, key.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByOwner returns every note of the owner, pinned first.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes
WHERE owner_id=$1
ORDER BY is_pinned DESC, created_at ASC, id ASC`
	return r.queryNotes(ctx, q, ownerID)
}

// SearchByOwner matches query as a literal, case-insensitive substring of title or content.
func (r *NoteRepo) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes
WHERE owner_id=$1
  AND (strpos(lower(title), lower($2)) > 0 OR strpos(lower(content), lower($2)) > 0)
ORDER BY created_at ASC, id ASC`
	return r.queryNotes(ctx, q, ownerID, query)
}

func (r *NoteRepo) queryNotes(ctx context.Context, q string, args ...any) ([]model.Note, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNote(row scanner) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.Tags, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	n.Tags = tagsOrEmpty(n.Tags)
	return n, err
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
