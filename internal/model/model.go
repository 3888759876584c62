// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Account represents a registered user. The credential is never stored in plaintext.
type Account struct {
	ID        uuid.UUID // PK
	FullName  string
	Email     string // unique (case-insensitive)
	PwdHash   []byte // Argon2id(password, Salt)
	Salt      []byte // per-account salt
	CreatedAt time.Time
}

// Profile is the redacted view of an account returned to clients.
type Profile struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	CreatedAt time.Time
}

// Profile strips credential material from the account.
func (a Account) Profile() Profile {
	return Profile{ID: a.ID, FullName: a.FullName, Email: a.Email, CreatedAt: a.CreatedAt}
}

// Registration is the result of a successful sign-up.
type Registration struct {
	Profile Profile
	Tokens  Tokens
}

// Note is a short text note owned by exactly one account.
type Note struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID // immutable after creation
	Title     string
	Content   string
	Tags      []string // never nil once persisted
	IsPinned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteKey is the compound key every note lookup goes through.
// A note id alone never addresses a note.
type NoteKey struct {
	OwnerID uuid.UUID
	ID      uuid.UUID
}

// Key returns the compound key of the note.
func (n Note) Key() NoteKey { return NoteKey{OwnerID: n.OwnerID, ID: n.ID} }

// Valid reports whether both halves of the key are set.
func (k NoteKey) Valid() bool { return k.OwnerID != uuid.Nil && k.ID != uuid.Nil }

// NewNote is a create intent.
type NewNote struct {
	Title   string
	Content string
	Tags    []string
}

// NoteUpdate is a partial edit. Absent fields are left untouched.
type NoteUpdate struct {
	Title    Optional[string]   `json:"title"`
	Content  Optional[string]   `json:"content"`
	Tags     Optional[[]string] `json:"tags"`
	IsPinned Optional[bool]     `json:"isPinned"`
}

// Empty reports whether no field was supplied at all.
func (u NoteUpdate) Empty() bool {
	return !u.Title.Set && !u.Content.Set && !u.Tags.Set && !u.IsPinned.Set
}
