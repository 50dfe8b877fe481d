// Package session owns the client-side authentication session: the bearer
// tokens, the current user record, and the derived authenticated/loading
// flags. The Manager is the sole gateway for acquiring a valid access
// token; every other component only reads its state.
package session

import (
	"strings"

	"github.com/jobtrackapp/go-jobtrack-client/internal/utils"
)

// Status is the session lifecycle state. A session starts Unknown, moves
// through Checking while the persisted tokens are verified, and settles
// on Authenticated or Anonymous. A failed authenticated request takes an
// Authenticated session through Refreshing and back to Authenticated (new
// access token) or Anonymous (tokens purged).
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusChecking      Status = "checking"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
	StatusRefreshing    Status = "refreshing"
)

// User is the backend's user record, passed through without
// interpretation. The optional fields are pointers rather than
// zero-value sentinels.
type User struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	DateJoined *string `json:"date_joined,omitempty"`
}

// DisplayName returns the user's full name, falling back to the username
// when no name fields are set.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(utils.Value(u.FirstName) + " " + utils.Value(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// Session is a point-in-time snapshot of the Manager's state.
// IsAuthenticated is true exactly when a user record and an in-memory
// access token are both held; Loading distinguishes "not yet verified"
// from "verified absent".
type Session struct {
	Status          Status
	User            *User
	IsAuthenticated bool
	Loading         bool
}

// Result is the outcome of a Login or Register call. Error carries the
// server-supplied message on credential rejection, or a generic network
// message on transport failure. Manager operations never panic and never
// return raw transport errors.
type Result struct {
	Success bool
	Error   string
}
