package service

import (
	"context"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
	"github.com/and161185/goph-notes/internal/repository"
)

// NoteService defines ownership-scoped note operations.
type NoteService interface {
	// Create stores a new note for the owner.
	Create(ctx context.Context, ownerID uuid.UUID, in model.NewNote) (*model.Note, error)
	// Update applies the supplied fields of a partial edit.
	Update(ctx context.Context, key model.NoteKey, upd model.NoteUpdate) (*model.Note, error)
	// SetPinned sets the pin flag to the given value.
	SetPinned(ctx context.Context, key model.NoteKey, pinned bool) (*model.Note, error)
	// Remove deletes an owned note.
	Remove(ctx context.Context, key model.NoteKey) error
	// ListAll returns every owned note, pinned first.
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	// Search returns owned notes whose title or content contains the query.
	Search(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error)
}

type NoteServiceImpl struct {
	repo repository.NoteRepository
	now  func() time.Time
}

// NewNoteService constructs NoteService.
func NewNoteService(repo repository.NoteRepository) *NoteServiceImpl {
	return &NoteServiceImpl{repo: repo, now: time.Now}
}

func (s *NoteServiceImpl) stamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }

// Create validates title and content; tags default to empty.
func (s *NoteServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in model.NewNote) (*model.Note, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if in.Title == "" {
		return nil, errs.Invalid("The title is required")
	}
	if in.Content == "" {
		return nil, errs.Invalid("The content is required")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := s.stamp()
	n := &model.Note{
		ID:        id,
		OwnerID:   ownerID,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}

// Update applies a partial edit. Rules:
// - at least one field must be present
// - a present title or content must be a non-empty string
// - null tags clear the list
// - a present isPinned is applied even when false
func (s *NoteServiceImpl) Update(ctx context.Context, key model.NoteKey, upd model.NoteUpdate) (*model.Note, error) {
	if key.OwnerID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if upd.Empty() {
		return nil, errs.Invalid("No changes provided")
	}
	if upd.Title.Set && (upd.Title.Null || upd.Title.Value == "") {
		return nil, errs.Invalid("The title is required")
	}
	if upd.Content.Set && (upd.Content.Null || upd.Content.Value == "") {
		return nil, errs.Invalid("The content is required")
	}
	if upd.IsPinned.Set && upd.IsPinned.Null {
		return nil, errs.Invalid("isPinned must be a boolean")
	}

	n, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if upd.Title.Set {
		n.Title = upd.Title.Value
	}
	if upd.Content.Set {
		n.Content = upd.Content.Value
	}
	if upd.Tags.Set {
		n.Tags = upd.Tags.Value
		if upd.Tags.Null || n.Tags == nil {
			n.Tags = []string{}
		}
	}
	if upd.IsPinned.Set {
		n.IsPinned = upd.IsPinned.Value
	}
	return s.save(ctx, n)
}

// SetPinned unconditionally sets the pin flag.
func (s *NoteServiceImpl) SetPinned(ctx context.Context, key model.NoteKey, pinned bool) (*model.Note, error) {
	if key.OwnerID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	n, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	n.IsPinned = pinned
	return s.save(ctx, n)
}

// Remove checks the note exists for the owner, then deletes it.
func (s *NoteServiceImpl) Remove(ctx context.Context, key model.NoteKey) error {
	if key.OwnerID == uuid.Nil {
		return errs.ErrUnauthorized
	}
	if _, err := s.load(ctx, key); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return storeErr(err)
	}
	return nil
}

// ListAll returns owned notes with pinned notes first; store order is kept otherwise.
func (s *NoteServiceImpl) ListAll(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	slices.SortStableFunc(notes, func(a, b model.Note) int {
		switch {
		case a.IsPinned == b.IsPinned:
			return 0
		case a.IsPinned:
			return -1
		default:
			return 1
		}
	})
	return notes, nil
}

// Search matches the query as a literal, case-insensitive substring of title or content.
// Results keep creation order; pin-first ordering is not applied.
func (s *NoteServiceImpl) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if query == "" {
		return nil, errs.Invalid("Search query is required")
	}
	notes, err := s.repo.SearchByOwner(ctx, ownerID, query)
	if err != nil {
		return nil, storeErr(err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

// load fetches by compound key; a key without an id cannot address anything.
func (s *NoteServiceImpl) load(ctx context.Context, key model.NoteKey) (*model.Note, error) {
	if !key.Valid() {
		return nil, errs.ErrNotFound
	}
	n, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}

func (s *NoteServiceImpl) save(ctx context.Context, n *model.Note) (*model.Note, error) {
	n.UpdatedAt = s.stamp()
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}
