package session

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single console login. It is a placeholder gate, not an
// authentication scheme.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt; overrides Password when set
}

// DefaultCredentials is the built-in console login.
var DefaultCredentials = Credentials{Username: "admin", Password: "password"}

func (c Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	var passOK bool
	if c.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	}
	return userOK && passOK && c.Username != ""
}

// HashPassword returns a bcrypt hash suitable for Credentials.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}
