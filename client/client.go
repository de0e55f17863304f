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

	"blog/account"
	"blog/api"
	"blog/constants"
	"blog/posts"
	"blog/storage"
)

var ErrRequestFailed = errors.New("request failed")

// Client talks to the blog API at Addr. The auth token and the signed-in user
// live in Store, so they survive restarts the way browser local storage does.
type Client struct {
	http.Client
	Addr  string
	Store storage.Store
}

func New(addr string, store storage.Store) *Client {
	return &Client{
		Client: http.Client{Timeout: constants.CLIENT_TIMEOUT},
		Addr:   strings.TrimSuffix(addr, "/"),
		Store:  store,
	}
}

func (c *Client) Token(ctx context.Context) (string, error) {
	return storage.GetString(ctx, c.Store, constants.KEY_AUTH_TOKEN, "")
}

// CurrentUser returns the user saved by the last successful Login, or nil.
// Holding a token is all it takes to count as signed in.
func (c *Client) CurrentUser(ctx context.Context) (*account.User, error) {
	token, err := c.Token(ctx)
	if err != nil || token == "" {
		return nil, err
	}

	var user account.User
	found, err := storage.GetJSON(ctx, c.Store, constants.KEY_CURRENT_USER, &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*account.User, error) {
	var resp api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", api.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, failure(resp.Message, "Login failed")
	}

	if err := storage.SetString(ctx, c.Store, constants.KEY_AUTH_TOKEN, resp.Token); err != nil {
		return nil, err
	}
	user := account.User{Username: username, Name: username}
	if resp.User != nil {
		user = *resp.User
	}
	if err := storage.SetJSON(ctx, c.Store, constants.KEY_CURRENT_USER, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout only forgets the token; the server has nothing to tear down.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Store.Delete(ctx, constants.KEY_AUTH_TOKEN); err != nil {
		return err
	}
	return c.Store.Delete(ctx, constants.KEY_CURRENT_USER)
}

func (c *Client) Verify(ctx context.Context) (*account.User, error) {
	var resp api.VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil {
		return nil, failure(resp.Message, "Session could not be verified")
	}
	return resp.User, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]posts.Post, error) {
	var resp api.PostsResponse
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failure(resp.Message, "Failed to load posts")
	}
	return resp.Posts, nil
}

func (c *Client) CreatePost(ctx context.Context, req api.PostRequest) (*posts.Post, error) {
	var resp api.PostResponse
	if err := c.do(ctx, http.MethodPost, "/api/posts", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Post == nil {
		return nil, failure(resp.Message, "Failed to create post")
	}
	return resp.Post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, req api.PostRequest) (*posts.Post, error) {
	var resp api.PostResponse
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Post == nil {
		return nil, failure(resp.Message, "Failed to update post")
	}
	return resp.Post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return failure(resp.Message, "Failed to delete post")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s returned %d with an unreadable body: %v", ErrRequestFailed, method, path, resp.StatusCode, err)
	}
	return nil
}

func failure(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return fmt.Errorf("%w: %s", ErrRequestFailed, message)
}
