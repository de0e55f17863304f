package server

import (
	"net/http"
	"time"

	"blog/account"
	"blog/api"
	"blog/logging"
	"blog/posts"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const (
	ServiceName = "Blog API"
	Version     = "1.0.0"
)

// Server is the blog API. It keeps no state between requests.
type Server struct {
	verifier *account.Verifier
	logger   *zap.SugaredLogger
}

func New(verifier *account.Verifier, logger *zap.SugaredLogger) *Server {
	return &Server{verifier: verifier, logger: logger}
}

// Routes builds the API router. extra middleware runs after the built-in chain.
func (s *Server) Routes(extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(CORSMiddleware.Handler)
	r.Use(logging.Middleware(s.logger))
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(100, time.Minute))
	for _, mw := range extra {
		r.Use(mw)
	}

	r.Post("/api/auth/login", s.Login)
	r.Get("/api/posts", s.ListPosts)

	r.NotFound(s.Describe)
	r.MethodNotAllowed(s.Describe)

	return r
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req api.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		logger.Warnw("malformed login body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, api.LoginResponse{Success: false, Message: "Invalid JSON"})
		return
	}

	if !s.verifier.Check(req.Username, req.Password) {
		logger.Infow("login rejected", "username", req.Username)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, api.LoginResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := account.NewToken()
	if err != nil {
		logger.Errorw("failed to generate token", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, api.LoginResponse{Success: false, Message: "Error signing in"})
		return
	}

	user := s.verifier.User()
	logger.Infow("login accepted", "username", user.Username)
	render.JSON(w, r, api.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    &user,
	})
}

func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.PostsResponse{Success: true, Posts: posts.Static()})
}

// Describe answers every unmatched path or method with the service descriptor
// and a 200.
func (s *Server) Describe(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.ServiceDescriptor{
		Service: ServiceName,
		Version: Version,
		Message: "Blog API is running",
		Endpoints: []string{
			"POST /api/auth/login",
			"GET /api/posts",
		},
	})
}
