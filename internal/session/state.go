// Package session holds the authenticated-identity state and the pure
// transitions that move it between authenticated and unauthenticated.
package session

import "fintrack/internal/core"

// State is the current session record. IsAuthenticated is true exactly when
// both User and Token are set by a fulfilled login or validation.
type State struct {
	User            *core.User `json:"user"`
	Token           string     `json:"token,omitempty"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	Error           string     `json:"error,omitempty"`
}

// Action is a session transition.
type Action interface {
	apply(State) State
}

type (
	// LoginFulfilled sets the identity and clears any error.
	LoginFulfilled struct {
		User  core.User
		Token string
	}

	// LoginRejected drops the identity and records the failure message.
	LoginRejected struct {
		Message string
	}

	// LogoutFulfilled resets to the empty state.
	LogoutFulfilled struct{}

	// ValidateSessionFulfilled sets the identity. The error is left as is.
	ValidateSessionFulfilled struct {
		User  core.User
		Token string
	}

	// ValidateSessionRejected drops the identity. The error is left as is.
	ValidateSessionRejected struct{}

	// ClearError clears the error only.
	ClearError struct{}
)

func (a LoginFulfilled) apply(s State) State {
	u := a.User
	return State{User: &u, Token: a.Token, IsAuthenticated: true}
}

func (a LoginRejected) apply(State) State {
	return State{Error: a.Message}
}

func (LogoutFulfilled) apply(State) State {
	return State{}
}

func (a ValidateSessionFulfilled) apply(s State) State {
	u := a.User
	return State{User: &u, Token: a.Token, IsAuthenticated: true, Error: s.Error}
}

func (ValidateSessionRejected) apply(s State) State {
	return State{Error: s.Error}
}

func (ClearError) apply(s State) State {
	s.Error = ""
	return s
}

// Reduce returns the state that results from applying a to s. s is not
// modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}
