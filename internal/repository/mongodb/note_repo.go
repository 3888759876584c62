package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

type noteDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Tags      []string  `bson:"tags"`
	IsPinned  bool      `bson:"is_pinned"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toNoteDoc(n *model.Note) noteDoc {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteDoc{
		ID:        n.ID.String(),
		OwnerID:   n.OwnerID.String(),
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		IsPinned:  n.IsPinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (d noteDoc) model() (model.Note, error) {
	id, err := uuid.FromString(d.ID)
	if err != nil {
		return model.Note{}, err
	}
	owner, err := uuid.FromString(d.OwnerID)
	if err != nil {
		return model.Note{}, err
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Note{
		ID:        id,
		OwnerID:   owner,
		Title:     d.Title,
		Content:   d.Content,
		Tags:      tags,
		IsPinned:  d.IsPinned,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// keyFilter is the only filter used for single-note access.
func keyFilter(key model.NoteKey) bson.D {
	return bson.D{
		{Key: "_id", Value: key.ID.String()},
		{Key: "owner_id", Value: key.OwnerID.String()},
	}
}

// searchFilter matches q literally, case-insensitively, anywhere in title or content.
func searchFilter(ownerID uuid.UUID, q string) bson.D {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return bson.D{
		{Key: "owner_id", Value: ownerID.String()},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "content", Value: pattern}},
		}},
	}
}

// NoteRepo implements NoteRepository on a MongoDB collection.
type NoteRepo struct{ coll *mongo.Collection }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{coll: db.Database.Collection(NotesCollection)}
}

// Create inserts a note document.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	_, err := r.coll.InsertOne(ctx, toNoteDoc(n))
	return err
}

// Get returns a single note by its compound key.
func (r *NoteRepo) Get(ctx context.Context, key model.NoteKey) (*model.Note, error) {
	var doc noteDoc
	if err := r.coll.FindOne(ctx, keyFilter(key)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	n, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update writes the mutable fields; owner_id is part of the filter and never set.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	doc := toNoteDoc(n)
	set := bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "content", Value: doc.Content},
		{Key: "tags", Value: doc.Tags},
		{Key: "is_pinned", Value: doc.IsPinned},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}
	res, err := r.coll.UpdateOne(ctx, keyFilter(n.Key()), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the note by its compound key.
func (r *NoteRepo) Delete(ctx context.Context, key model.NoteKey) error {
	res, err := r.coll.DeleteOne(ctx, keyFilter(key))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByOwner returns every note of the owner, pinned first.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_pinned", Value: -1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	return r.find(ctx, bson.D{{Key: "owner_id", Value: ownerID.String()}}, opts)
}

// SearchByOwner returns owned notes whose title or content contains query.
func (r *NoteRepo) SearchByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]model.Note, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	return r.find(ctx, searchFilter(ownerID, query), opts)
}

func (r *NoteRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]model.Note, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []noteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Note, 0, len(docs))
	for _, d := range docs {
		n, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
