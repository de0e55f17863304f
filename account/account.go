package account

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"blog/config"

	"golang.org/x/crypto/bcrypt"
)

// User is the public part of the account, safe to hand to clients.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Verifier checks login attempts against the single configured account.
type Verifier struct {
	username     string
	passwordHash []byte
	user         User
}

func NewVerifier(acc config.Account) (*Verifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash account password: %w", err)
	}

	name := acc.DisplayName
	if name == "" {
		name = acc.Username
	}

	return &Verifier{
		username:     acc.Username,
		passwordHash: hash,
		user:         User{Username: acc.Username, Name: name},
	}, nil
}

// Check reports whether username and password are exactly the configured pair.
func (v *Verifier) Check(username, password string) bool {
	if username != v.username {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil
}

func (v *Verifier) User() User {
	return v.user
}

// NewToken returns an opaque session token. Nothing ever validates it.
func NewToken() (string, error) {
	const tokenLength = 32
	tokenBytes := make([]byte, tokenLength)
	_, err := rand.Read(tokenBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
