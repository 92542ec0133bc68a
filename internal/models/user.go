package models

import "strings"

// Credentials is the stored sign-up record of a user. Password holds either a
// bcrypt hash or, for records written in plaintext mode, the raw password.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IsHashed reports whether the stored password is a bcrypt hash.
func (c Credentials) IsHashed() bool {
	return strings.HasPrefix(c.Password, "$2a$") ||
		strings.HasPrefix(c.Password, "$2b$") ||
		strings.HasPrefix(c.Password, "$2y$")
}
