// Package convert maps domain models to the JSON shapes of the HTTP API.
package convert

import (
	"time"

	"github.com/and161185/goph-notes/internal/model"
)

// Note is the wire shape of a note.
type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	IsPinned  bool      `json:"isPinned"`
	UserID    string    `json:"userId"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
}

// User is the redacted wire shape of an account.
type User struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedOn time.Time `json:"createdOn"`
}

// ToNote converts a domain note. Tags are never encoded as null.
func ToNote(n model.Note) Note {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return Note{
		ID:        n.ID.String(),
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		IsPinned:  n.IsPinned,
		UserID:    n.OwnerID.String(),
		CreatedOn: n.CreatedAt,
		UpdatedOn: n.UpdatedAt,
	}
}

// ToNotes converts a slice, returning an empty (non-nil) slice for no notes.
func ToNotes(ns []model.Note) []Note {
	out := make([]Note, 0, len(ns))
	for _, n := range ns {
		out = append(out, ToNote(n))
	}
	return out
}

// ToUser converts a profile.
func ToUser(p model.Profile) User {
	return User{
		ID:        p.ID.String(),
		FullName:  p.FullName,
		Email:     p.Email,
		CreatedOn: p.CreatedAt,
	}
}
