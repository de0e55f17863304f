// Package demo stands in for the blog API when there is no server to talk to.
// All state lives in the key-value store and every call is slowed down to feel
// like a network round trip.
package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blog/account"
	"blog/api"
	"blog/constants"
	"blog/posts"
	"blog/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is what every demo call resolves to. Failures are reported through
// Success and Message, never as Go errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// LoginData is the Data of a successful Login.
type LoginData struct {
	Token string       `json:"token"`
	User  account.User `json:"user"`
}

type API struct {
	store    storage.Store
	verifier *account.Verifier
	latency  time.Duration
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	posts    []posts.Post
	loggedIn bool
	user     *account.User
}

type Option func(*API)

func WithLatency(d time.Duration) Option {
	return func(a *API) {
		a.latency = d
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New loads the demo state from store, seeding the static posts the first time.
func New(ctx context.Context, store storage.Store, verifier *account.Verifier, opts ...Option) (*API, error) {
	a := &API{
		store:    store,
		verifier: verifier,
		latency:  constants.DEFAULT_DEMO_LATENCY,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload re-reads the state from the store, as a page load would.
func (a *API) Reload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var list []posts.Post
	found, err := storage.GetJSON(ctx, a.store, constants.KEY_DEMO_POSTS, &list)
	if err != nil {
		return fmt.Errorf("failed to load demo posts: %w", err)
	}
	if !found {
		list = posts.Static()
		if err := storage.SetJSON(ctx, a.store, constants.KEY_DEMO_POSTS, list); err != nil {
			return fmt.Errorf("failed to seed demo posts: %w", err)
		}
	}

	var loggedIn bool
	if _, err := storage.GetJSON(ctx, a.store, constants.KEY_DEMO_LOGGED_IN, &loggedIn); err != nil {
		return fmt.Errorf("failed to load demo login flag: %w", err)
	}

	var user *account.User
	var stored account.User
	found, err = storage.GetJSON(ctx, a.store, constants.KEY_DEMO_USER, &stored)
	if err != nil {
		return fmt.Errorf("failed to load demo user: %w", err)
	}
	if found {
		user = &stored
	}

	a.posts = list
	a.loggedIn = loggedIn
	a.user = user
	return nil
}

// CurrentUser reports the signed-in user without any artificial delay.
func (a *API) CurrentUser() *account.User {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loggedIn {
		return nil
	}
	if a.user == nil {
		u := a.verifier.User()
		return &u
	}
	u := *a.user
	return &u
}

func (a *API) Login(ctx context.Context, username, password string) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	if !a.verifier.Check(username, password) {
		return Result{Success: false, Message: "Invalid credentials"}
	}

	token, err := account.NewToken()
	if err != nil {
		a.logger.Errorw("failed to generate demo token", "error", err)
		return Result{Success: false, Message: "Error signing in"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	user := a.verifier.User()
	if err := a.saveSession(ctx, true, &user); err != nil {
		return a.storageFailure("login", err)
	}
	a.loggedIn = true
	a.user = &user

	return Result{Success: true, Message: "Login successful", Data: LoginData{Token: token, User: user}}
}

func (a *API) Logout(ctx context.Context) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.saveSession(ctx, false, nil); err != nil {
		return a.storageFailure("logout", err)
	}
	a.loggedIn = false
	a.user = nil
	return Result{Success: true, Message: "Logged out"}
}

func (a *API) Verify(ctx context.Context) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	user := a.CurrentUser()
	if user == nil {
		return Result{Success: false, Message: "Not authenticated"}
	}
	return Result{Success: true, Data: *user}
}

func (a *API) ListPosts(ctx context.Context) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	list := make([]posts.Post, len(a.posts))
	copy(list, a.posts)
	return Result{Success: true, Data: list}
}

func (a *API) CreatePost(ctx context.Context, req api.PostRequest) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loggedIn {
		return Result{Success: false, Message: "Please login first"}
	}

	author := a.verifier.User().Name
	if a.user != nil {
		author = a.user.Name
	}

	post := posts.Post{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  posts.DeriveExcerpt(req.Content),
		Author:   author,
		Date:     time.Now().UTC(),
		Tags:     tagsOrEmpty(req.Tags),
		Category: req.Category,
	}

	updated := posts.Prepend(a.posts, post)
	if err := storage.SetJSON(ctx, a.store, constants.KEY_DEMO_POSTS, updated); err != nil {
		return a.storageFailure("create post", err)
	}
	a.posts = updated

	return Result{Success: true, Message: "Post created successfully", Data: post}
}

func (a *API) UpdatePost(ctx context.Context, id string, req api.PostRequest) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loggedIn {
		return Result{Success: false, Message: "Please login first"}
	}

	updated := make([]posts.Post, len(a.posts))
	copy(updated, a.posts)

	for i, p := range updated {
		if p.ID != id {
			continue
		}
		p.Title = req.Title
		p.Content = req.Content
		p.Excerpt = posts.DeriveExcerpt(req.Content)
		p.Tags = tagsOrEmpty(req.Tags)
		p.Category = req.Category
		updated[i] = p

		if err := storage.SetJSON(ctx, a.store, constants.KEY_DEMO_POSTS, updated); err != nil {
			return a.storageFailure("update post", err)
		}
		a.posts = updated
		return Result{Success: true, Message: "Post updated successfully", Data: p}
	}

	return Result{Success: false, Message: "Post not found"}
}

func (a *API) DeletePost(ctx context.Context, id string) Result {
	if err := a.wait(ctx); err != nil {
		return cancelled(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loggedIn {
		return Result{Success: false, Message: "Please login first"}
	}

	updated, removed := posts.RemoveByID(a.posts, id)
	if !removed {
		return Result{Success: false, Message: "Post not found"}
	}
	if err := storage.SetJSON(ctx, a.store, constants.KEY_DEMO_POSTS, updated); err != nil {
		return a.storageFailure("delete post", err)
	}
	a.posts = updated

	return Result{Success: true, Message: "Post deleted successfully"}
}

// saveSession persists a session without touching the in-memory one; callers
// hold a.mu and apply the same values once it succeeds.
func (a *API) saveSession(ctx context.Context, loggedIn bool, user *account.User) error {
	if err := storage.SetJSON(ctx, a.store, constants.KEY_DEMO_LOGGED_IN, loggedIn); err != nil {
		return err
	}
	if user == nil {
		return a.store.Delete(ctx, constants.KEY_DEMO_USER)
	}
	return storage.SetJSON(ctx, a.store, constants.KEY_DEMO_USER, user)
}

func (a *API) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(a.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *API) storageFailure(op string, err error) Result {
	a.logger.Errorw("demo storage failure", "op", op, "error", err)
	return Result{Success: false, Message: "Failed to " + op}
}

func cancelled(err error) Result {
	return Result{Success: false, Message: "Request cancelled: " + err.Error()}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
