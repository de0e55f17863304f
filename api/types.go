// Package api holds the JSON payloads exchanged between the blog API server and
// its clients.
package api

import (
	"blog/account"
	"blog/posts"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Token   string        `json:"token,omitempty"`
	User    *account.User `json:"user,omitempty"`
}

type PostsResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Posts   []posts.Post `json:"posts"`
}

// PostRequest is the body of create and update calls.
type PostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
}

type PostResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Post    *posts.Post `json:"post,omitempty"`
}

// StatusResponse is the generic {success, message} envelope.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type VerifyResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	User    *account.User `json:"user,omitempty"`
}

// ServiceDescriptor is returned for every request the server has no route for.
// It carries no success flag, so clients treat it as a failed call.
type ServiceDescriptor struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}
