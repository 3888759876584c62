// Package client is a Go client for the notes HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/goph-notes/internal/convert"
	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the shared error sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return errs.ErrValidation
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	}
	if e.Status >= 500 {
		return errs.ErrStore
	}
	return nil
}

type envelope struct {
	Error       bool           `json:"error"`
	Message     string         `json:"message"`
	AccessToken string         `json:"accessToken"`
	Email       string         `json:"email"`
	User        *convert.User  `json:"user"`
	Note        *convert.Note  `json:"note"`
	Notes       []convert.Note `json:"notes"`
}

// Client talks to one server. It is safe for concurrent use once configured.
type Client struct {
	base  string
	http  *http.Client
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sets the bearer token sent on authenticated calls.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New returns a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (convert.User, error) {
	var env envelope
	err := c.do(ctx, http.MethodPost, "/create-account", map[string]string{
		"fullName": fullName, "email": email, "password": password,
	}, &env)
	if err != nil {
		return convert.User{}, err
	}
	c.token = env.AccessToken
	if env.User == nil {
		return convert.User{}, fmt.Errorf("create-account: missing user in response")
	}
	return *env.User, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env envelope
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &env)
	if err != nil {
		return "", err
	}
	c.token = env.AccessToken
	return env.AccessToken, nil
}

// Me returns the profile of the token's account.
func (c *Client) Me(ctx context.Context) (convert.User, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/get-user", nil, &env); err != nil {
		return convert.User{}, err
	}
	if env.User == nil {
		return convert.User{}, fmt.Errorf("get-user: missing user in response")
	}
	return *env.User, nil
}

// AddNote creates a note.
func (c *Client) AddNote(ctx context.Context, in model.NewNote) (convert.Note, error) {
	body := map[string]any{"title": in.Title, "content": in.Content}
	if in.Tags != nil {
		body["tags"] = in.Tags
	}
	return c.noteCall(ctx, http.MethodPost, "/add-note", body)
}

// EditNote sends only the fields present in upd.
func (c *Client) EditNote(ctx context.Context, id string, upd model.NoteUpdate) (convert.Note, error) {
	body := map[string]any{}
	if upd.Title.Set {
		body["title"] = upd.Title
	}
	if upd.Content.Set {
		body["content"] = upd.Content
	}
	if upd.Tags.Set {
		body["tags"] = upd.Tags
	}
	if upd.IsPinned.Set {
		body["isPinned"] = upd.IsPinned
	}
	return c.noteCall(ctx, http.MethodPut, "/edit-note/"+url.PathEscape(id), body)
}

// PinNote sets the pin flag.
func (c *Client) PinNote(ctx context.Context, id string, pinned bool) (convert.Note, error) {
	return c.noteCall(ctx, http.MethodPut, "/update-note-pinned/"+url.PathEscape(id), map[string]bool{"isPinned": pinned})
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/delete-note/"+url.PathEscape(id), nil, nil)
}

// ListNotes returns all notes, pinned first.
func (c *Client) ListNotes(ctx context.Context) ([]convert.Note, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/get-all-notes", nil, &env); err != nil {
		return nil, err
	}
	return env.Notes, nil
}

// SearchNotes returns notes whose title or content contains query.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]convert.Note, error) {
	var env envelope
	path := "/search-notes?" + url.Values{"query": {query}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Notes, nil
}

func (c *Client) noteCall(ctx context.Context, method, path string, body any) (convert.Note, error) {
	var env envelope
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return convert.Note{}, err
	}
	if env.Note == nil {
		return convert.Note{}, fmt.Errorf("%s %s: missing note in response", method, path)
	}
	return *env.Note, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out *envelope) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 || env.Error {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil {
		*out = env
	}
	return nil
}
