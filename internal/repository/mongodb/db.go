// Package mongodb contains MongoDB implementations of repository interfaces.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	AccountsCollection = "accounts"
	NotesCollection    = "notes"
)

// DB bundles the client and the database used by repositories.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &DB{Client: client, Database: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// The unique email index is what makes duplicate registration impossible.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Database.Collection(AccountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_lower", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_lower_unique"),
	})
	if err != nil {
		return fmt.Errorf("accounts index: %w", err)
	}
	_, err = db.Database.Collection(NotesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "is_pinned", Value: -1},
			{Key: "created_at", Value: 1},
		},
		Options: options.Index().SetName("notes_owner_pinned_idx"),
	})
	if err != nil {
		return fmt.Errorf("notes index: %w", err)
	}
	return nil
}

// Ping reports whether the primary is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	if db.Client == nil {
		return nil
	}
	return db.Client.Disconnect(ctx)
}
