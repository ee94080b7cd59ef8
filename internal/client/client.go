// Package client talks to the notes HTTP API. A *Client satisfies
// workspace.Store, so a sidebar session can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/service"
)

// APIError is a non-2xx response. It unwraps to the matching service or
// auth sentinel so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 15 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Login opens a session and keeps its token for later calls. It must not
// race with other calls on c.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, false); err != nil {
		return model.User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u, true)
	return u, err
}

type items[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var resp items[model.Note]
	err := c.do(ctx, http.MethodGet, "/notes", nil, nil, &resp, true)
	return resp.Items, err
}

func (c *Client) ListTrash(ctx context.Context) ([]model.Note, error) {
	var resp items[model.Note]
	err := c.do(ctx, http.MethodGet, "/trash", nil, nil, &resp, true)
	return resp.Items, err
}

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var resp items[model.Tag]
	err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &resp, true)
	return resp.Items, err
}

func (c *Client) CreateNote(ctx context.Context, in service.CreateNoteInput) (model.Note, error) {
	var n model.Note
	err := c.do(ctx, http.MethodPost, "/notes", nil, in, &n, false)
	return n, err
}

func (c *Client) UpdateNote(ctx context.Context, id string, p model.NotePatch) (model.Note, error) {
	var n model.Note
	err := c.do(ctx, http.MethodPatch, "/notes/"+url.PathEscape(id), nil, p, &n, false)
	return n, err
}

func (c *Client) PurgeNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trash", url.Values{"id": {id}}, nil, nil, false)
}

func (c *Client) EmptyTrash(ctx context.Context) (int64, error) {
	var resp struct {
		Purged int64 `json:"purged"`
	}
	err := c.do(ctx, http.MethodDelete, "/trash", nil, nil, &resp, false)
	return resp.Purged, err
}

func (c *Client) CreateTag(ctx context.Context, name, color string) (model.Tag, error) {
	var t model.Tag
	body := map[string]string{"name": name, "color": color}
	err := c.do(ctx, http.MethodPost, "/tags", nil, body, &t, false)
	return t, err
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil, nil, false)
}

// do sends one JSON request. read selects whether a server failure maps to
// ErrRetrieval or ErrStorage.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any, read bool) error {
	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if read {
			return fmt.Errorf("%s %s: %w: %w", method, path, service.ErrRetrieval, err)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, service.ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp, read)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, read bool) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	e := &APIError{Status: resp.StatusCode, Message: body.Error}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e.kind = service.ErrUnauthorized
		if strings.Contains(e.Message, auth.ErrInvalidCredentials.Error()) {
			e.kind = auth.ErrInvalidCredentials
		}
	case http.StatusBadRequest:
		e.kind = service.ErrValidation
	case http.StatusNotFound:
		e.kind = service.ErrNotFound
	case http.StatusConflict:
		e.kind = conflictKind(e.Message)
	default:
		e.kind = service.ErrStorage
		if read {
			e.kind = service.ErrRetrieval
		}
	}
	return e
}

func conflictKind(msg string) error {
	for _, err := range []error{service.ErrNotTrashed, service.ErrNoteTrashed, auth.ErrAlreadyExists} {
		if strings.Contains(msg, err.Error()) {
			return err
		}
	}
	return errors.New(msg)
}
