// Package session defines the client session domain types and the
// credential store contract.
package session

// Role is the access level granted to an authenticated user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity half of a session.
type User struct {
	Name string `json:"username"`
	Role Role   `json:"role"`
}

// Session is the credential and identity held for the current login.
// A session is atomic: Token and User are committed together, and a
// session is never observed partially populated.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Anonymous returns the logged-out session.
func Anonymous() Session {
	return Session{}
}

// IsAuthenticated reports whether the session carries credentials.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Valid reports whether the session upholds the pairing invariant:
// a user identity is present iff a token is present.
func (s Session) Valid() bool {
	return (s.Token == "") == (s.User == nil)
}

// Epoch identifies one session lifetime. Caches scoped to an epoch are
// discarded once the epoch ends, so a late-arriving response can never
// write into a store that outlived its session.
type Epoch uint64
