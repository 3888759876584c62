package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

type accountDoc struct {
	ID         string    `bson:"_id"`
	FullName   string    `bson:"full_name"`
	Email      string    `bson:"email"`
	EmailLower string    `bson:"email_lower"`
	PwdHash    []byte    `bson:"pwd_hash"`
	Salt       []byte    `bson:"salt"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d accountDoc) model() (*model.Account, error) {
	id, err := uuid.FromString(d.ID)
	if err != nil {
		return nil, err
	}
	return &model.Account{
		ID:        id,
		FullName:  d.FullName,
		Email:     d.Email,
		PwdHash:   d.PwdHash,
		Salt:      d.Salt,
		CreatedAt: d.CreatedAt,
	}, nil
}

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// AccountRepo implements AccountRepository on a MongoDB collection.
type AccountRepo struct{ coll *mongo.Collection }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{coll: db.Database.Collection(AccountsCollection)}
}

// Create inserts a new account document.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	doc := accountDoc{
		ID:         a.ID.String(),
		FullName:   a.FullName,
		Email:      a.Email,
		EmailLower: normEmail(a.Email),
		PwdHash:    a.PwdHash,
		Salt:       a.Salt,
		CreatedAt:  a.CreatedAt,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID loads an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// GetByEmail loads an account by email, ignoring case.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "email_lower", Value: normEmail(email)}})
}

func (r *AccountRepo) findOne(ctx context.Context, filter bson.D) (*model.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return doc.model()
}
