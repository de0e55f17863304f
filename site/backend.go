package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog/account"
	"blog/api"
	"blog/client"
	"blog/demo"
	"blog/posts"
)

// Backend is whatever the page talks to for posts and auth: the real API
// through a client, or the demo API.
type Backend interface {
	CurrentUser(ctx context.Context) (*account.User, error)
	Login(ctx context.Context, username, password string) (*account.User, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (*account.User, error)
	ListPosts(ctx context.Context) ([]posts.Post, error)
	CreatePost(ctx context.Context, req api.PostRequest) (*posts.Post, error)
	UpdatePost(ctx context.Context, id string, req api.PostRequest) (*posts.Post, error)
	DeletePost(ctx context.Context, id string) error
}

var _ Backend = (*client.Client)(nil)

// demoBackend turns demo results into the error style the client uses.
type demoBackend struct {
	api *demo.API
}

var _ Backend = demoBackend{}

func (d demoBackend) CurrentUser(ctx context.Context) (*account.User, error) {
	return d.api.CurrentUser(), nil
}

func (d demoBackend) Login(ctx context.Context, username, password string) (*account.User, error) {
	res := d.api.Login(ctx, username, password)
	if err := resultError(res); err != nil {
		return nil, err
	}
	data, ok := res.Data.(demo.LoginData)
	if !ok {
		return nil, fmt.Errorf("unexpected login data %T", res.Data)
	}
	return &data.User, nil
}

func (d demoBackend) Logout(ctx context.Context) error {
	return resultError(d.api.Logout(ctx))
}

func (d demoBackend) Verify(ctx context.Context) (*account.User, error) {
	res := d.api.Verify(ctx)
	if err := resultError(res); err != nil {
		return nil, err
	}
	user, ok := res.Data.(account.User)
	if !ok {
		return nil, fmt.Errorf("unexpected verify data %T", res.Data)
	}
	return &user, nil
}

func (d demoBackend) ListPosts(ctx context.Context) ([]posts.Post, error) {
	res := d.api.ListPosts(ctx)
	if err := resultError(res); err != nil {
		return nil, err
	}
	list, ok := res.Data.([]posts.Post)
	if !ok {
		return nil, fmt.Errorf("unexpected posts data %T", res.Data)
	}
	return list, nil
}

func (d demoBackend) CreatePost(ctx context.Context, req api.PostRequest) (*posts.Post, error) {
	return postResult(d.api.CreatePost(ctx, req))
}

func (d demoBackend) UpdatePost(ctx context.Context, id string, req api.PostRequest) (*posts.Post, error) {
	return postResult(d.api.UpdatePost(ctx, id, req))
}

func (d demoBackend) DeletePost(ctx context.Context, id string) error {
	return resultError(d.api.DeletePost(ctx, id))
}

func postResult(res demo.Result) (*posts.Post, error) {
	if err := resultError(res); err != nil {
		return nil, err
	}
	p, ok := res.Data.(posts.Post)
	if !ok {
		return nil, fmt.Errorf("unexpected post data %T", res.Data)
	}
	return &p, nil
}

func resultError(res demo.Result) error {
	if res.Success {
		return nil
	}
	msg := res.Message
	if msg == "" {
		msg = "Request failed"
	}
	return errors.New(msg)
}

// userMessage is the part of err worth showing in a banner.
func userMessage(err error) string {
	return strings.TrimPrefix(err.Error(), client.ErrRequestFailed.Error()+": ")
}
