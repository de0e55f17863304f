// Package site renders the blog front end. Every request decides, from the
// host it arrived on, whether to talk to the real API or to the demo API.
package site

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"blog/account"
	"blog/api"
	"blog/assets"
	"blog/client"
	"blog/config"
	"blog/constants"
	"blog/demo"
	"blog/logging"
	"blog/posts"
	"blog/storage"
	"blog/templates"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// State is everything one page render needs.
type State struct {
	Env     config.Environment
	Backend Backend
	User    *account.User
	Posts   []posts.Post
	Theme   string
	Editing *posts.Post
	Notice  templates.Notice
}

type Site struct {
	cfg    *config.Config
	store  storage.Store
	demo   *demo.API
	logger *zap.SugaredLogger

	mu        sync.Mutex
	editingID string
}

func New(cfg *config.Config, store storage.Store, demoAPI *demo.API, logger *zap.SugaredLogger) *Site {
	return &Site{
		cfg:    cfg,
		store:  store,
		demo:   demoAPI,
		logger: logger,
	}
}

func (s *Site) Routes(extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(logging.Middleware(s.logger))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.Recoverer)
	r.Use(extra...)

	r.Get("/", s.Home)
	r.Post("/login", s.Login)
	r.Post("/logout", s.Logout)
	r.Post("/theme", s.ToggleTheme)

	r.Route("/posts", func(r chi.Router) {
		r.Post("/", s.SavePost)
		r.Post("/cancel", s.CancelEdit)
		r.Get("/{id}/edit", s.EditPost)
		r.Post("/{id}/delete", s.DeletePost)
	})

	fileServer := http.FileServer(http.FS(assets.FS))
	r.Handle("/assets/*", http.StripPrefix("/assets", fileServer))

	return r
}

func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	state := s.loadState(r)
	renderPage(w, r, templates.HomePage(s.homeProps(state)))
}

func (s *Site) Login(w http.ResponseWriter, r *http.Request) {
	_, backend := s.backendFor(r)

	user, err := backend.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		redirectWithNotice(w, r, "error", "Login failed: "+userMessage(err))
		return
	}
	redirectWithNotice(w, r, "success", "Welcome, "+user.Name+"!")
}

func (s *Site) Logout(w http.ResponseWriter, r *http.Request) {
	_, backend := s.backendFor(r)

	s.setEditing("")
	if err := backend.Logout(r.Context()); err != nil {
		redirectWithNotice(w, r, "error", "Logout failed: "+userMessage(err))
		return
	}
	redirectWithNotice(w, r, "success", "Logged out")
}

func (s *Site) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	next := constants.THEME_DARK
	if s.theme(ctx) == constants.THEME_DARK {
		next = constants.THEME_LIGHT
	}
	if v := r.FormValue("theme"); v == constants.THEME_LIGHT || v == constants.THEME_DARK {
		next = v
	}

	if err := storage.SetString(ctx, s.store, constants.KEY_THEME, next); err != nil {
		logging.FromContext(ctx).Errorw("failed to save theme", "error", err)
		redirectWithNotice(w, r, "error", "Could not save theme")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SavePost creates a post, or updates the one being edited.
func (s *Site) SavePost(w http.ResponseWriter, r *http.Request) {
	_, backend := s.backendFor(r)

	req := api.PostRequest{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  r.FormValue("content"),
		Tags:     posts.ParseTags(r.FormValue("tags")),
		Category: strings.TrimSpace(r.FormValue("category")),
	}

	var err error
	message := "Post created"
	if id := s.editing(); id != "" {
		_, err = backend.UpdatePost(r.Context(), id, req)
		message = "Post updated"
	} else {
		_, err = backend.CreatePost(r.Context(), req)
	}
	if err != nil {
		redirectWithNotice(w, r, "error", "Failed to save post: "+userMessage(err))
		return
	}

	s.setEditing("")
	redirectWithNotice(w, r, "success", message)
}

func (s *Site) EditPost(w http.ResponseWriter, r *http.Request) {
	s.setEditing(chi.URLParam(r, "id"))
	http.Redirect(w, r, "/#post-form", http.StatusSeeOther)
}

func (s *Site) CancelEdit(w http.ResponseWriter, r *http.Request) {
	s.setEditing("")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Site) DeletePost(w http.ResponseWriter, r *http.Request) {
	_, backend := s.backendFor(r)
	id := chi.URLParam(r, "id")

	if err := backend.DeletePost(r.Context(), id); err != nil {
		redirectWithNotice(w, r, "error", "Failed to delete post: "+userMessage(err))
		return
	}

	s.mu.Lock()
	if s.editingID == id {
		s.editingID = ""
	}
	s.mu.Unlock()

	redirectWithNotice(w, r, "success", "Post deleted")
}

func (s *Site) backendFor(r *http.Request) (config.Environment, Backend) {
	env := s.cfg.DetectEnvironment(r.Host)
	if env.DemoMode {
		return env, demoBackend{api: s.demo}
	}
	return env, client.New(env.APIBaseURL, s.store)
}

func (s *Site) loadState(r *http.Request) State {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	env, backend := s.backendFor(r)

	query := r.URL.Query()
	state := State{
		Env:     env,
		Backend: backend,
		Theme:   s.theme(ctx),
		Notice:  templates.Notice{Kind: query.Get("kind"), Message: query.Get("notice")},
	}

	if env.DemoMode {
		if err := s.demo.Reload(ctx); err != nil {
			logger.Errorw("failed to reload demo state", "error", err)
		}
	}

	user, err := backend.CurrentUser(ctx)
	if err != nil {
		logger.Warnw("failed to read current user", "error", err)
	}
	if user != nil {
		// A failed check keeps the stored login: the bundled API server has
		// no verify route, so it never succeeds there.
		verified, err := backend.Verify(ctx)
		if err != nil {
			logger.Infow("session not verified, keeping stored login", "env", env.Name, "error", err)
		} else {
			user = verified
		}
	}
	state.User = user

	list, err := backend.ListPosts(ctx)
	if err != nil {
		logger.Warnw("failed to load posts", "env", env.Name, "error", err)
		list = []posts.Post{}
		state.Notice = templates.Notice{Kind: "error", Message: "Failed to load posts: " + userMessage(err)}
	}
	state.Posts = list

	if id := s.editing(); id != "" {
		if p, ok := posts.FindByID(list, id); ok && user != nil {
			state.Editing = &p
		} else {
			s.setEditing("")
		}
	}

	return state
}

func (s *Site) homeProps(state State) templates.HomeProps {
	props := templates.HomeProps{
		Layout: templates.LayoutProps{
			Title:       constants.APP_NAME,
			SiteName:    constants.APP_NAME,
			Theme:       state.Theme,
			Environment: state.Env.Name,
			DemoMode:    state.Env.DemoMode,
		},
		Notice:   state.Notice,
		LoggedIn: state.User != nil,
		Posts:    postViews(state.Posts),
	}
	if state.User != nil {
		props.Layout.CurrentUser = state.User.Name
	}
	if p := state.Editing; p != nil {
		props.Form = templates.PostFormValues{
			EditingID: p.ID,
			Title:     p.Title,
			Content:   p.Content,
			Tags:      p.Tags,
			Category:  p.Category,
		}
	}
	return props
}

// theme falls back to light for anything unset or unknown.
func (s *Site) theme(ctx context.Context) string {
	theme, err := storage.GetString(ctx, s.store, constants.KEY_THEME, constants.THEME_LIGHT)
	if err != nil {
		s.logger.Warnw("failed to read theme", "error", err)
		return constants.THEME_LIGHT
	}
	if theme != constants.THEME_DARK {
		return constants.THEME_LIGHT
	}
	return theme
}

func (s *Site) editing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

func (s *Site) setEditing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = id
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, kind, message string) {
	q := url.Values{}
	q.Set("notice", message)
	q.Set("kind", kind)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
