// Package client is a programmatic client for the photofolio REST API. It
// performs the same flows as the web frontend: register/login with a
// persisted session, profile reads and updates, and photo CRUD including
// multipart uploads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"photofolio/internal/models"
)

// Client calls the photofolio API, carrying the session's bearer token on
// protected routes.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
	session Session
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:8080")
// and loads any previously persisted session.
func New(baseURL string, store SessionStore) (*Client, error) {
	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		session: session,
	}, nil
}

// Session returns the current session state.
func (c *Client) Session() Session {
	return c.session
}

// APIError is a non-success API response.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Errors, "; "))
	}
	return e.Message
}

// envelope mirrors the server's response shape, including the listing and
// auth extras.
type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	Errors      []string        `json:"errors"`
	Token       string          `json:"token"`
	Count       int             `json:"count"`
	Total       int             `json:"total"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		if !c.session.Valid() {
			return nil, fmt.Errorf("not logged in")
		}
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return &env, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, authed bool) (*envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", authed)
}

// Register creates an account and starts a persisted session.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return models.User{}, err
	}
	return c.startSession(env)
}

// Login authenticates and starts a persisted session.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return models.User{}, err
	}
	return c.startSession(env)
}

func (c *Client) startSession(env *envelope) (models.User, error) {
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	c.session = Session{Token: env.Token, User: user}
	if err := c.store.Save(c.session); err != nil {
		return models.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return user, nil
}

// Logout clears the session in memory and in the store.
func (c *Client) Logout() error {
	c.session = Session{}
	return c.store.Clear()
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, "", true)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ProfileUpdate is a partial profile update; nil fields are not sent.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// UpdateProfile applies a partial update to the user's own profile and
// refreshes the persisted session user.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (models.User, error) {
	env, err := c.doJSON(ctx, http.MethodPut, "/api/users/profile", update, true)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return models.User{}, err
	}
	c.session.User = user
	if err := c.store.Save(c.session); err != nil {
		return models.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return user, nil
}

// ListOptions filters and paginates a photo listing.
type ListOptions struct {
	Category string
	Page     int
	Limit    int
}

// PhotoList is one page of photos plus the pagination totals.
type PhotoList struct {
	Photos      []models.Photo
	Count       int
	Total       int
	TotalPages  int
	CurrentPage int
}

// Photos lists the user's photos.
func (c *Client) Photos(ctx context.Context, opts ListOptions) (PhotoList, error) {
	q := url.Values{}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/api/photos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.do(ctx, http.MethodGet, path, nil, "", true)
	if err != nil {
		return PhotoList{}, err
	}

	var photos []models.Photo
	if err := json.Unmarshal(env.Data, &photos); err != nil {
		return PhotoList{}, err
	}
	return PhotoList{
		Photos:      photos,
		Count:       env.Count,
		Total:       env.Total,
		TotalPages:  env.TotalPages,
		CurrentPage: env.CurrentPage,
	}, nil
}

// Photo fetches a single photo by ID.
func (c *Client) Photo(ctx context.Context, id string) (models.Photo, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/photos/"+id, nil, "", true)
	if err != nil {
		return models.Photo{}, err
	}
	var photo models.Photo
	if err := json.Unmarshal(env.Data, &photo); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

// PhotoFields are the metadata fields sent with a photo create or update.
// Tags is a comma-delimited string, as the form contract expects.
type PhotoFields struct {
	Title       string
	Description string
	Category    string
	Tags        string
	ImageURL    string
}

// CreatePhoto uploads a new photo. imagePath is a local file to upload; leave
// it empty to reference fields.ImageURL instead.
func (c *Client) CreatePhoto(ctx context.Context, fields PhotoFields, imagePath string) (models.Photo, error) {
	body, contentType, err := photoForm(fields, imagePath)
	if err != nil {
		return models.Photo{}, err
	}
	env, err := c.do(ctx, http.MethodPost, "/api/photos", body, contentType, true)
	if err != nil {
		return models.Photo{}, err
	}
	var photo models.Photo
	if err := json.Unmarshal(env.Data, &photo); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

// UpdatePhoto updates an existing photo. Empty fields are not sent; a
// non-empty imagePath uploads a replacement file.
func (c *Client) UpdatePhoto(ctx context.Context, id string, fields PhotoFields, imagePath string) (models.Photo, error) {
	body, contentType, err := photoForm(fields, imagePath)
	if err != nil {
		return models.Photo{}, err
	}
	env, err := c.do(ctx, http.MethodPut, "/api/photos/"+id, body, contentType, true)
	if err != nil {
		return models.Photo{}, err
	}
	var photo models.Photo
	if err := json.Unmarshal(env.Data, &photo); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

// DeletePhoto deletes a photo by ID.
func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/photos/"+id, nil, "", true)
	return err
}

// photoForm builds the multipart body for photo create/update requests.
func photoForm(fields PhotoFields, imagePath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	values := map[string]string{
		"title":       fields.Title,
		"description": fields.Description,
		"category":    fields.Category,
		"tags":        fields.Tags,
		"imageUrl":    fields.ImageURL,
	}
	for key, value := range values {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if imagePath != "" {
		f, err := os.Open(imagePath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()

		part, err := w.CreateFormFile("image", filepath.Base(imagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
