package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

func newNotes() (*NoteServiceImpl, *fakeNotes) {
	repo := &fakeNotes{}
	return NewNoteService(repo), repo
}

func mustCreate(t *testing.T, s *NoteServiceImpl, owner uuid.UUID, title, content string) *model.Note {
	t.Helper()
	n, err := s.Create(context.Background(), owner, model.NewNote{Title: title, Content: content})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return n
}

func TestNotes_Create(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())

	n := mustCreate(t, s, owner, "T", "C")
	if n.OwnerID != owner || n.IsPinned || n.Tags == nil || len(n.Tags) != 0 {
		t.Fatalf("unexpected note: %+v", n)
	}
	if n.CreatedAt.IsZero() || !n.CreatedAt.Equal(n.UpdatedAt) {
		t.Fatalf("timestamps not set: %+v", n)
	}

	if _, err := s.Create(context.Background(), owner, model.NewNote{Content: "C"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation on empty title, got %v", err)
	}
	if _, err := s.Create(context.Background(), owner, model.NewNote{Title: "T"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation on empty content, got %v", err)
	}
	if _, err := s.Create(context.Background(), uuid.Nil, model.NewNote{Title: "T", Content: "C"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestNotes_Create_StoreFailure(t *testing.T) {
	t.Parallel()
	s, repo := newNotes()
	repo.err = errors.New("down")
	_, err := s.Create(context.Background(), uuid.Must(uuid.NewV4()), model.NewNote{Title: "T", Content: "C"})
	if !errors.Is(err, errs.ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
}

func TestNotes_Update_Partial(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	n := mustCreate(t, s, owner, "T", "C")
	if _, err := s.SetPinned(context.Background(), n.Key(), true); err != nil {
		t.Fatalf("SetPinned: %v", err)
	}

	got, err := s.Update(context.Background(), n.Key(), model.NoteUpdate{Tags: model.Some([]string{"x", "y"})})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "T" || got.Content != "C" || !got.IsPinned {
		t.Fatalf("tags-only update touched other fields: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "x" {
		t.Fatalf("tags not applied: %v", got.Tags)
	}

	got, err = s.Update(context.Background(), n.Key(), model.NoteUpdate{IsPinned: model.Some(false)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.IsPinned {
		t.Fatalf("explicit isPinned=false must take effect")
	}

	got, err = s.Update(context.Background(), n.Key(), model.NoteUpdate{Tags: model.Null[[]string]()})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("null tags must clear: %v", got.Tags)
	}
}

func TestNotes_Update_Rejects(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	n := mustCreate(t, s, owner, "T", "C")

	bad := map[string]model.NoteUpdate{
		"empty":        {},
		"empty title":  {Title: model.Some("")},
		"null title":   {Title: model.Null[string]()},
		"null content": {Content: model.Null[string]()},
		"null pin":     {IsPinned: model.Null[bool]()},
	}
	for name, upd := range bad {
		if _, err := s.Update(context.Background(), n.Key(), upd); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%s: want validation, got %v", name, err)
		}
	}

	var ve *errs.ValidationError
	_, err := s.Update(context.Background(), n.Key(), model.NoteUpdate{})
	if !errors.As(err, &ve) || ve.Message != "No changes provided" {
		t.Fatalf("want 'No changes provided', got %v", err)
	}
}

func TestNotes_OwnershipScoped(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	n := mustCreate(t, s, alice, "T", "C")
	foreign := model.NoteKey{OwnerID: bob, ID: n.ID}

	if _, err := s.Update(context.Background(), foreign, model.NoteUpdate{Title: model.Some("X")}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("update foreign: %v", err)
	}
	if _, err := s.SetPinned(context.Background(), foreign, true); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("pin foreign: %v", err)
	}
	if err := s.Remove(context.Background(), foreign); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("remove foreign: %v", err)
	}
	list, err := s.ListAll(context.Background(), bob)
	if err != nil || len(list) != 0 {
		t.Fatalf("bob sees %d notes, err %v", len(list), err)
	}
	if _, err := s.SetPinned(context.Background(), model.NoteKey{OwnerID: alice}, true); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("nil id: %v", err)
	}

	list, _ = s.ListAll(context.Background(), alice)
	if len(list) != 1 || list[0].Title != "T" || list[0].IsPinned {
		t.Fatalf("alice's note was modified: %+v", list)
	}
}

func TestNotes_SetPinned(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	n := mustCreate(t, s, owner, "T", "C")
	s.now = func() time.Time { return n.CreatedAt.Add(time.Minute) }

	got, err := s.SetPinned(context.Background(), n.Key(), true)
	if err != nil || !got.IsPinned {
		t.Fatalf("pin: %+v %v", got, err)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updatedAt not bumped")
	}
	got, err = s.SetPinned(context.Background(), n.Key(), false)
	if err != nil || got.IsPinned {
		t.Fatalf("unpin: %+v %v", got, err)
	}
}

func TestNotes_Remove_Twice(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	n := mustCreate(t, s, owner, "T", "C")

	if err := s.Remove(context.Background(), n.Key()); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := s.Remove(context.Background(), n.Key()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second remove: want ErrNotFound, got %v", err)
	}
}

func TestNotes_Remove_VanishedBetweenCheckAndDelete(t *testing.T) {
	t.Parallel()
	s, repo := newNotes()
	n := mustCreate(t, s, uuid.Must(uuid.NewV4()), "T", "C")
	repo.deleteMiss = true

	if err := s.Remove(context.Background(), n.Key()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNotes_ListAll_PinnedFirstStable(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	a := mustCreate(t, s, owner, "a", "c")
	b := mustCreate(t, s, owner, "b", "c")
	c := mustCreate(t, s, owner, "c", "c")
	d := mustCreate(t, s, owner, "d", "c")
	for _, n := range []*model.Note{b, d} {
		if _, err := s.SetPinned(context.Background(), n.Key(), true); err != nil {
			t.Fatalf("pin: %v", err)
		}
	}

	list, err := s.ListAll(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []uuid.UUID{b.ID, d.ID, a.ID, c.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: want %s got %s", i, id, list[i].Title)
		}
	}
}

func TestNotes_ListAll_Empty(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	list, err := s.ListAll(context.Background(), uuid.Must(uuid.NewV4()))
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("want empty non-nil list, got %v %v", list, err)
	}
}

func TestNotes_Search(t *testing.T) {
	t.Parallel()
	s, _ := newNotes()
	owner := uuid.Must(uuid.NewV4())
	mustCreate(t, s, owner, "Shopping", "milk and eggs")
	mustCreate(t, s, owner, "Work", "Meeting at noon")
	mustCreate(t, s, uuid.Must(uuid.NewV4()), "Meeting", "other owner")

	got, err := s.Search(context.Background(), owner, "MEET")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Work" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	got, err = s.Search(context.Background(), owner, "zzz")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil result, got %v %v", got, err)
	}

	var ve *errs.ValidationError
	if _, err := s.Search(context.Background(), owner, ""); !errors.As(err, &ve) || ve.Message != "Search query is required" {
		t.Fatalf("want query validation, got %v", err)
	}
}
