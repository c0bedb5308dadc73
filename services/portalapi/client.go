// Package portalapi is the HTTP client of the portal API used by terminal clients.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
)

// ErrConnection replaces transport failures and unreadable answers on write operations.
var ErrConnection = errors.New("connection error with the server")

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

var (
	_ post.Source           = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

// New returns a client of the API at baseURL; token, when set, supplies the bearer token of each request.
func New(baseURL string, token func() string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a failure reported by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends req and decodes the JSON answer into dest, whatever the status.
func (c *Client) do(req *http.Request, dest interface{}) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, errors.Wrapf(err, "decoding %s %s (status %d)", req.Method, req.URL.Path, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// sendEnvelope performs an envelope endpoint call; success:false becomes an *APIError with the server message.
func (c *Client) sendEnvelope(req *http.Request, data interface{}) error {
	var env envelope
	status, err := c.do(req, &env)
	if err != nil {
		if status >= http.StatusBadRequest {
			return &APIError{Status: status, Message: http.StatusText(status)}
		}
		return ErrConnection
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = ErrConnection.Error()
		}
		return &APIError{Status: status, Message: msg}
	}
	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return ErrConnection
		}
	}
	return nil
}

// FetchPosts returns every post, newest first.
func (c *Client) FetchPosts(ctx context.Context) ([]post.Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/posts", nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Data []post.Post `json:"data"`
	}
	status, err := c.do(req, &body)
	if err != nil {
		return nil, errors.Wrap(err, "fetching posts")
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Message: fmt.Sprintf("fetching posts: %s", http.StatusText(status))}
	}
	if body.Data == nil {
		body.Data = []post.Post{}
	}
	return body.Data, nil
}

// DeletePost deletes a post; the error carries the server message unless it answered success.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/posts/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	return c.sendEnvelope(req, nil)
}

// Login exchanges credentials for the user record, carrying its token.
func (c *Client) Login(ctx context.Context, mail, password string) (user.Profile, error) {
	payload, err := json.Marshal(map[string]string{"mail": mail, "password": password})
	if err != nil {
		return user.Profile{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/users/login", bytes.NewReader(payload))
	if err != nil {
		return user.Profile{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var data struct {
		Token string       `json:"token"`
		User  user.Profile `json:"user"`
	}
	if err := c.sendEnvelope(req, &data); err != nil {
		return user.Profile{}, err
	}
	if data.Token == "" || data.User.ID == 0 {
		return user.Profile{}, ErrConnection
	}
	data.User.Token = data.Token
	return data.User, nil
}

// Media is a file attached to a new post.
type Media struct {
	Filename string
	Content  io.Reader
}

// CreatePost publishes a post as the authenticated user.
func (c *Client) CreatePost(ctx context.Context, content, postURL string, media *Media) (post.Post, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("content", content)
	if postURL != "" {
		_ = mw.WriteField("postUrl", postURL)
	}
	if media != nil {
		fw, err := mw.CreateFormFile("mediaFile", media.Filename)
		if err != nil {
			return post.Post{}, err
		}
		if _, err := io.Copy(fw, media.Content); err != nil {
			return post.Post{}, errors.Wrap(err, "reading media")
		}
	}
	if err := mw.Close(); err != nil {
		return post.Post{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/posts", &buf)
	if err != nil {
		return post.Post{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var p post.Post
	if err := c.sendEnvelope(req, &p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

// Upload sends a file to the admin upload endpoint and returns its public URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var body struct {
		URL     string `json:"url"`
		Message string `json:"message"`
	}
	status, err := c.do(req, &body)
	if err != nil {
		return "", ErrConnection
	}
	if status != http.StatusOK || body.URL == "" {
		msg := body.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return "", &APIError{Status: status, Message: msg}
	}
	return body.URL, nil
}
