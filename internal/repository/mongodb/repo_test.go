package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func dbOf(mt *mtest.T) *DB { return &DB{Client: mt.Client, Database: mt.DB} }

func accountBSON(a *model.Account) bson.D {
	return bson.D{
		{Key: "_id", Value: a.ID.String()},
		{Key: "full_name", Value: a.FullName},
		{Key: "email", Value: a.Email},
		{Key: "email_lower", Value: normEmail(a.Email)},
		{Key: "pwd_hash", Value: a.PwdHash},
		{Key: "salt", Value: a.Salt},
		{Key: "created_at", Value: a.CreatedAt},
	}
}

func noteBSON(n model.Note) bson.D {
	return bson.D{
		{Key: "_id", Value: n.ID.String()},
		{Key: "owner_id", Value: n.OwnerID.String()},
		{Key: "title", Value: n.Title},
		{Key: "content", Value: n.Content},
		{Key: "tags", Value: bson.A{}},
		{Key: "is_pinned", Value: n.IsPinned},
		{Key: "created_at", Value: n.CreatedAt},
		{Key: "updated_at", Value: n.UpdatedAt},
	}
}

func sampleAccount() *model.Account {
	return &model.Account{
		ID:        uuid.Must(uuid.NewV4()),
		FullName:  "Ann",
		Email:     "Ann@Example.com",
		PwdHash:   []byte("h"),
		Salt:      []byte("s"),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func sampleNote(owner uuid.UUID, title string, pinned bool) model.Note {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return model.Note{
		ID:        uuid.Must(uuid.NewV4()),
		OwnerID:   owner,
		Title:     title,
		Content:   "body",
		Tags:      []string{},
		IsPinned:  pinned,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAccountRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("create ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, NewAccountRepo(dbOf(mt)).Create(ctx, sampleAccount()))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		err := NewAccountRepo(dbOf(mt)).Create(ctx, sampleAccount())
		require.ErrorIs(mt, err, errs.ErrAlreadyExists)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		a := sampleAccount()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.accounts", mtest.FirstBatch, accountBSON(a)))
		got, err := NewAccountRepo(dbOf(mt)).GetByEmail(ctx, " ANN@example.com ")
		require.NoError(mt, err)
		require.Equal(mt, a.ID, got.ID)
		require.Equal(mt, a.Email, got.Email)
		require.Equal(mt, a.PwdHash, got.PwdHash)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.accounts", mtest.FirstBatch))
		_, err := NewAccountRepo(dbOf(mt)).GetByID(ctx, uuid.Must(uuid.NewV4()))
		require.ErrorIs(mt, err, errs.ErrNotFound)
	})
}

func TestNoteRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		n := sampleNote(owner, "t", false)
		n.Tags = nil
		require.NoError(mt, NewNoteRepo(dbOf(mt)).Create(ctx, &n))
	})

	mt.Run("get", func(mt *mtest.T) {
		n := sampleNote(owner, "t", true)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notes", mtest.FirstBatch, noteBSON(n)))
		got, err := NewNoteRepo(dbOf(mt)).Get(ctx, n.Key())
		require.NoError(mt, err)
		require.Equal(mt, n.ID, got.ID)
		require.Equal(mt, owner, got.OwnerID)
		require.True(mt, got.IsPinned)
		require.NotNil(mt, got.Tags)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notes", mtest.FirstBatch))
		_, err := NewNoteRepo(dbOf(mt)).Get(ctx, model.NoteKey{OwnerID: owner, ID: uuid.Must(uuid.NewV4())})
		require.ErrorIs(mt, err, errs.ErrNotFound)
	})

	mt.Run("update", func(mt *mtest.T) {
		n := sampleNote(owner, "t", false)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(mt, NewNoteRepo(dbOf(mt)).Update(ctx, &n))
	})

	mt.Run("update foreign", func(mt *mtest.T) {
		n := sampleNote(owner, "t", false)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		require.ErrorIs(mt, NewNoteRepo(dbOf(mt)).Update(ctx, &n), errs.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		key := model.NoteKey{OwnerID: owner, ID: uuid.Must(uuid.NewV4())}
		require.NoError(mt, NewNoteRepo(dbOf(mt)).Delete(ctx, key))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		key := model.NoteKey{OwnerID: owner, ID: uuid.Must(uuid.NewV4())}
		require.ErrorIs(mt, NewNoteRepo(dbOf(mt)).Delete(ctx, key), errs.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		a := sampleNote(owner, "a", true)
		b := sampleNote(owner, "b", false)
		first := mtest.CreateCursorResponse(1, "test.notes", mtest.FirstBatch, noteBSON(a), noteBSON(b))
		end := mtest.CreateCursorResponse(0, "test.notes", mtest.NextBatch)
		mt.AddMockResponses(first, end)
		got, err := NewNoteRepo(dbOf(mt)).ListByOwner(ctx, owner)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		require.Equal(mt, "a", got[0].Title)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notes", mtest.FirstBatch))
		got, err := NewNoteRepo(dbOf(mt)).ListByOwner(ctx, owner)
		require.NoError(mt, err)
		require.NotNil(mt, got)
		require.Empty(mt, got)
	})

	mt.Run("search", func(mt *mtest.T) {
		a := sampleNote(owner, "Meeting", false)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notes", mtest.FirstBatch, noteBSON(a)))
		got, err := NewNoteRepo(dbOf(mt)).SearchByOwner(ctx, owner, "meet")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
	})
}

func TestSearchFilter_QuotesPattern(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	f := searchFilter(owner, "a.b*")
	require.Equal(t, owner.String(), f[0].Value)
	or := f[1].Value.(bson.A)
	title := or[0].(bson.D)[0].Value.(primitive.Regex)
	require.Equal(t, `a\.b\*`, title.Pattern)
	require.Equal(t, "i", title.Options)
}

func TestKeyFilter_IncludesOwner(t *testing.T) {
	key := model.NoteKey{OwnerID: uuid.Must(uuid.NewV4()), ID: uuid.Must(uuid.NewV4())}
	f := keyFilter(key)
	require.Len(t, f, 2)
	require.Equal(t, "owner_id", f[1].Key)
	require.Equal(t, key.OwnerID.String(), f[1].Value)
}

func TestEnsureIndexes(t *testing.T) {
	mt := newMock(t)
	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		require.NoError(mt, dbOf(mt).EnsureIndexes(context.Background()))
	})
}
